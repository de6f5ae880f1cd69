// Package password wraps argon2id hashing behind a small interface so the
// service layer never touches algorithm parameters directly.
package password

import (
	"github.com/alexedwards/argon2id"

	customErrors "github.com/Miraines/MoonyAndStarry/account-service/internal/auth/errors"
)

type Hasher interface {
	Hash(password string) (string, error)
	// Verify reports whether password matches hash. A malformed or truncated
	// hash is a non-match, never an error.
	Verify(password, hash string) bool
}

type argonHasher struct {
	pepper string
	params *argon2id.Params
}

// New returns an argon2id-backed Hasher. The pepper is appended to every
// password before hashing; rotating it invalidates all stored hashes.
func New(pepper string) Hasher {
	return &argonHasher{pepper: pepper, params: argon2id.DefaultParams}
}

func (h *argonHasher) Hash(password string) (string, error) {
	hash, err := argon2id.CreateHash(password+h.pepper, h.params)
	if err != nil {
		return "", customErrors.WrapInternal(err, "hash password")
	}
	return hash, nil
}

func (h *argonHasher) Verify(password, hash string) bool {
	ok, err := argon2id.ComparePasswordAndHash(password+h.pepper, hash)
	if err != nil {
		return false
	}
	return ok
}
