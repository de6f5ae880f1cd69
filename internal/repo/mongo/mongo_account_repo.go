package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	customErrors "github.com/Miraines/MoonyAndStarry/account-service/internal/auth/errors"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/auth/model"
)

type MongoAccountRepo struct {
	col *mongo.Collection
}

func NewMongoAccountRepo(db *mongo.Database) *MongoAccountRepo {
	return &MongoAccountRepo{col: db.Collection("users")}
}

// EnsureIndexes creates the unique index on email. The lookup-before-insert
// in the service is advisory only; this index is what actually enforces
// one account per normalized email under concurrent registrations.
func (r *MongoAccountRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return customErrors.WrapInternal(err, "create email index")
	}
	return nil
}

func (r *MongoAccountRepo) Create(ctx context.Context, account model.Account) (primitive.ObjectID, error) {
	res, err := r.col.InsertOne(ctx, account)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, customErrors.ErrAlreadyExists
		}
		return primitive.NilObjectID, customErrors.WrapInternal(err, "insert account")
	}

	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, customErrors.WrapInternal(
			errors.New("inserted id is not an ObjectID"), "insert account")
	}
	return id, nil
}

func (r *MongoAccountRepo) GetByEmail(ctx context.Context, email string) (model.Account, error) {
	var account model.Account
	err := r.col.FindOne(ctx, bson.D{{Key: "email", Value: email}}).Decode(&account)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return model.Account{}, customErrors.ErrNotFound
		}
		return model.Account{}, customErrors.WrapInternal(err, "find account by email")
	}
	return account, nil
}

func (r *MongoAccountRepo) GetByID(ctx context.Context, id primitive.ObjectID) (model.Account, error) {
	var account model.Account
	err := r.col.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&account)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return model.Account{}, customErrors.ErrNotFound
		}
		return model.Account{}, customErrors.WrapInternal(err, "find account by id")
	}
	return account, nil
}
