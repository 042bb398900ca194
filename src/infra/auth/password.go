package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"gussgame/src/core/domain"
	"gussgame/src/core/ports"
)

var _ ports.PasswordHasher = BcryptHasher{}

// BcryptHasher hashes passwords with bcrypt at the given cost.
type BcryptHasher struct {
	Cost int
}

func NewBcryptHasher() BcryptHasher {
	return BcryptHasher{Cost: 10}
}

func (h BcryptHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.Cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", domain.NewValidationError("password", "is too long")
	}
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func (h BcryptHasher) Compare(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
