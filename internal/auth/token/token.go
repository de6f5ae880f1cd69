package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims carried by an issued bearer token. The subject is the account id;
// email is informational. A token is valid until exp passes or its signature
// stops verifying; there is no server-side revocation.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

type Issuer interface {
	Issue(subjectID, email string, ttl time.Duration) (token string, exp time.Time, err error)
	// Verify checks signature, algorithm and expiry. Any failure comes back
	// as ErrInvalidToken; claims from an unverified token are never returned.
	Verify(raw string) (Claims, error)
}
