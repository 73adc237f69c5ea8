package services

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrBadToken      = errors.New("invalid admin token")
	ErrAdminDisabled = errors.New("admin api disabled")
)

// AdminAuth verifies the X-Admin-Token header against a bcrypt hash.
type AdminAuth struct {
	Hash string
}

func (a *AdminAuth) Enabled() bool { return a != nil && a.Hash != "" }

func (a *AdminAuth) Check(token string) error {
	if !a.Enabled() {
		return ErrAdminDisabled
	}
	if token == "" || bcrypt.CompareHashAndPassword([]byte(a.Hash), []byte(token)) != nil {
		return ErrBadToken
	}
	return nil
}

// HashToken produces the value to put in ADMIN_TOKEN_HASH.
func HashToken(token string) (string, error) {
	if token == "" {
		return "", errors.New("empty token")
	}
	h, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}
