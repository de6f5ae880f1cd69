package dto

type RegisterDTO struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Name     string `json:"name"     validate:"required"`

	// ClientIP is filled by the transport layer, never by the client body.
	ClientIP string `json:"-"`
}

type LoginDTO struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`

	ClientIP string `json:"-"`
}

type CheckEmailDTO struct {
	Email string `json:"email" validate:"required,email"`
}

type ForgotPasswordDTO struct {
	Email string `json:"email" validate:"required,email"`

	ClientIP string `json:"-"`
}
