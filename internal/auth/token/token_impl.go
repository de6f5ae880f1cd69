package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	customErrors "github.com/Miraines/MoonyAndStarry/account-service/internal/auth/errors"
)

type hmacIssuer struct {
	secret []byte
	issuer string
}

// New returns an HS256 Issuer. The secret is process-wide and fixed at
// startup; rotating it invalidates every previously issued token.
func New(secret, issuer string) Issuer {
	return &hmacIssuer{secret: []byte(secret), issuer: issuer}
}

func (h *hmacIssuer) Issue(subjectID, email string, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    h.issuer,
			ID:        uuid.NewString(),
		},
		Email: email,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.secret)
	if err != nil {
		return "", time.Time{}, customErrors.WrapInternal(err, "sign token")
	}

	return signed, claims.ExpiresAt.Time, nil
}

func (h *hmacIssuer) Verify(raw string) (Claims, error) {
	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, customErrors.ErrInvalidToken
		}
		return h.secret, nil
	})

	if err != nil || !token.Valid {
		return Claims{}, customErrors.ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return Claims{}, customErrors.ErrInvalidToken
	}

	return *claims, nil
}
