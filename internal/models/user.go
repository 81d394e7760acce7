package models

import (
	"errors"
	"strings"
	"time"
)

type User struct {
	ID           int64     `json:"id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

func (u *User) Validate() error {
	if strings.TrimSpace(u.FirstName) == "" {
		return errors.New("first name required")
	}
	if strings.TrimSpace(u.LastName) == "" {
		return errors.New("last name required")
	}
	if !strings.Contains(u.Email, "@") {
		return errors.New("invalid email")
	}
	return nil
}
