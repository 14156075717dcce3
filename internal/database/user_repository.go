package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/prevozi/carpool-backend/internal/models"
)

// UserRepository handles user database operations
type UserRepository struct {
	db DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

// CreateUser creates a new user
func (r *UserRepository) CreateUser(email, name, passwordHash string) (*models.User, error) {
	user := &models.User{
		ID:           uuid.New(),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		Name:         name,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	query := `
		INSERT INTO users (id, email, name, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.Exec(
		query,
		user.ID,
		user.Email,
		user.Name,
		user.PasswordHash,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// GetUserByEmail retrieves a user by email
func (r *UserRepository) GetUserByEmail(email string) (*models.User, error) {
	var user models.User

	query := `
		SELECT id, email, name, password_hash, phone, image_url, created_at, updated_at
		FROM users
		WHERE email = $1
	`

	err := r.db.Get(&user, query, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return &user, nil
}

// GetUserByID retrieves a user by ID
func (r *UserRepository) GetUserByID(id uuid.UUID) (*models.User, error) {
	var user models.User

	query := `
		SELECT id, email, name, password_hash, phone, image_url, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	err := r.db.Get(&user, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return &user, nil
}

// UpdateProfile updates the mutable profile fields. Nil arguments leave
// the current value untouched.
func (r *UserRepository) UpdateProfile(id uuid.UUID, name, phone, imageURL *string) (*models.User, error) {
	query := `
		UPDATE users
		SET name      = COALESCE($2, name),
		    phone     = COALESCE($3, phone),
		    image_url = COALESCE($4, image_url),
		    updated_at = $5
		WHERE id = $1
	`

	result, err := r.db.Exec(query, id, name, phone, imageURL, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return nil, ErrUserNotFound
	}

	return r.GetUserByID(id)
}

// UpdatePhone persists a phone number collected lazily at signup or
// route creation time
func (r *UserRepository) UpdatePhone(id uuid.UUID, phone string) error {
	query := `UPDATE users SET phone = $2, updated_at = $3 WHERE id = $1`

	result, err := r.db.Exec(query, id, phone, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update phone: %w", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return ErrUserNotFound
	}

	return nil
}
