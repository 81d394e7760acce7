package models

import (
	"errors"
	"strings"
	"time"
)

// Profile is the public persona of a user. Username is the public lookup
// key and must stay unique across all profiles; UserID is unique so a user
// can hold at most one profile. Photo holds an opaque upload-store key and
// is empty when no photo was ever supplied.
type Profile struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Photo     string    `json:"-"`
	Country   string    `json:"country"`
	Bio       string    `json:"bio"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *Profile) Validate() error {
	if strings.TrimSpace(p.Username) == "" {
		return errors.New("username required")
	}
	if p.UserID <= 0 {
		return errors.New("profile must belong to a user")
	}
	return nil
}
