package repo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Miraines/MoonyAndStarry/account-service/internal/auth/model"
)

// AccountRepo is the persistence boundary for accounts. Implementations map
// store-level conditions onto the sentinel errors in internal/auth/errors:
// a duplicate email on Create is ErrAlreadyExists, a missing record on the
// getters is ErrNotFound.
type AccountRepo interface {
	Create(ctx context.Context, account model.Account) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (model.Account, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (model.Account, error)
}
