package dto

import (
	"time"

	"github.com/Miraines/MoonyAndStarry/account-service/internal/auth/model"
)

// AccountResponse is the public projection of an account. The password hash
// has no field here on purpose.
type AccountResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewAccountResponse(a model.Account) AccountResponse {
	return AccountResponse{
		ID:        a.ID.Hex(),
		Email:     a.Email,
		Name:      a.Name,
		CreatedAt: a.CreatedAt,
	}
}

type AuthResponse struct {
	Success bool            `json:"success"`
	User    AccountResponse `json:"user"`
	Token   string          `json:"token"`
}

type CheckEmailResponse struct {
	Exists bool   `json:"exists"`
	Email  string `json:"email"`
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
