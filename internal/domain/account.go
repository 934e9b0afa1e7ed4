package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for Account
var (
	ErrEmptyAccountID      = errors.New("account ID cannot be empty")
	ErrEmptyUsername       = errors.New("username cannot be empty")
	ErrEmptyHashedPassword = errors.New("hashed password cannot be empty")
)

// Account is a registered user of the task board. Accounts own tasks and
// comments; every read is scoped to a single account ID.
type Account struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	HashedPassword string    `json:"hashed_password"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewAccount creates an Account with a fresh ID. The caller hashes the
// password before calling.
func NewAccount(username, firstName, lastName, hashedPassword string) (*Account, error) {
	now := time.Now().UTC()
	account := &Account{
		ID:             uuid.NewString(),
		Username:       username,
		FirstName:      firstName,
		LastName:       lastName,
		HashedPassword: hashedPassword,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := account.Validate(); err != nil {
		return nil, err
	}

	return account, nil
}

// Validate checks if the Account has valid data.
func (a *Account) Validate() error {
	if a.ID == "" {
		return ErrEmptyAccountID
	}
	if a.Username == "" {
		return ErrEmptyUsername
	}
	if a.HashedPassword == "" {
		return ErrEmptyHashedPassword
	}
	return nil
}
