package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Account is one registered user. PasswordHash never leaves the service;
// the HTTP layer serializes accounts through dto.AccountResponse only.
type Account struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"password_hash"`
	Name         string             `bson:"name"`
	CreatedAt    time.Time          `bson:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at"`
}

// AuthResult is what Register and Login hand back: the account plus a
// freshly issued bearer token.
type AuthResult struct {
	Account Account
	Token   string
	TTL     time.Duration
}
