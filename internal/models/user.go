package models

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// NullString wraps sql.NullString to provide proper JSON marshaling
type NullString struct {
	sql.NullString
}

// MarshalJSON implements json.Marshaler
func (ns NullString) MarshalJSON() ([]byte, error) {
	if ns.Valid {
		return json.Marshal(ns.String)
	}
	return json.Marshal(nil)
}

// UnmarshalJSON implements json.Unmarshaler
func (ns *NullString) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s != nil {
		ns.Valid = true
		ns.String = *s
	} else {
		ns.Valid = false
	}
	return nil
}

// User represents an authenticated principal
type User struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	Email        string     `json:"email" db:"email"`
	Name         string     `json:"name" db:"name"`
	PasswordHash string     `json:"-" db:"password_hash"`
	Phone        NullString `json:"phone" db:"phone"`
	ImageURL     NullString `json:"image_url" db:"image_url"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// UserProfile is the subset of User embedded in route and ride responses
type UserProfile struct {
	ID       uuid.UUID  `json:"id" db:"id"`
	Email    string     `json:"email" db:"email"`
	Name     string     `json:"name" db:"name"`
	Phone    NullString `json:"phone" db:"phone"`
	ImageURL NullString `json:"image_url" db:"image_url"`
}

// Profile returns the public projection of the user
func (u *User) Profile() UserProfile {
	return UserProfile{
		ID:       u.ID,
		Email:    u.Email,
		Name:     u.Name,
		Phone:    u.Phone,
		ImageURL: u.ImageURL,
	}
}
