package auth

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// RegisterRequest mirrors the users table constraints.
type RegisterRequest struct {
	Username string `validate:"required,max=64,printascii,excludesall=/ "`
	Password string `validate:"required,min=8,max=72"`
}

func ValidateRegister(req RegisterRequest) error {
	return validate.Struct(req)
}
