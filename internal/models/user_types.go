package models

import (
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Role is the closed set of account roles. Keeping this a named type (instead
// of free-form strings in handlers) lets an invalid role be rejected at the
// edge and switched over exhaustively.
type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
	RoleAdmin  Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleBuyer, RoleSeller, RoleAdmin:
		return true
	}
	return false
}

// User maps the 'users' table. Profile fields use pointers so that NULL
// columns stay out of JSON responses.
type User struct {
	ID           int64  `json:"id" db:"id"`
	Username     string `json:"username" db:"username"`
	Email        string `json:"email" db:"email"`
	PasswordHash string `json:"-" db:"password"`
	Role         Role   `json:"role" db:"role"`

	FirstName *string `json:"firstName,omitempty" db:"first_name"`
	LastName  *string `json:"lastName,omitempty" db:"last_name"`
	Phone     *string `json:"phone,omitempty" db:"phone"`
	Address   *string `json:"address,omitempty" db:"address"`
	City      *string `json:"city,omitempty" db:"city"`
	State     *string `json:"state,omitempty" db:"state"`
	ZipCode   *string `json:"zipCode,omitempty" db:"zip_code"`
	Country   *string `json:"country,omitempty" db:"country"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// Password wraps a plaintext/hash pair so handlers never touch bcrypt directly.
type Password struct {
	Plaintext *string
	Hash      string
}

func (p *Password) Set(plaintextPassword string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintextPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	p.Hash = string(hash)
	p.Plaintext = &plaintextPassword
	return nil
}

func (p *Password) Matches(plaintextPassword string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(p.Hash), []byte(plaintextPassword))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
