package auth

import (
	"crypto/subtle"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

const (
	bcryptCost        = 12
	minPasswordLength = 8
)

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	if len(password) < minPasswordLength {
		return "", ErrPasswordTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword compares a password with its hash
func CheckPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// Authenticator checks the credentials of the single back-office operator account
type Authenticator struct {
	username     string
	passwordHash string
}

func NewAuthenticator(username, passwordHash string) *Authenticator {
	return &Authenticator{username: username, passwordHash: passwordHash}
}

// Authenticate returns the operator role for valid credentials
func (a *Authenticator) Authenticate(username, password string) (string, error) {
	// the hash is always checked so a wrong username costs the same as a wrong password
	passwordOK := CheckPassword(password, a.passwordHash)
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	if !passwordOK || !userOK {
		return "", ErrInvalidCredentials
	}
	return RoleOperator, nil
}
