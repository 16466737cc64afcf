package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/classtrack/classtrack-api/internal/models"
	appErrors "github.com/classtrack/classtrack-api/pkg/errors"
)

// UserRepository provides database access for account records.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByUsername returns a user by username.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	const query = `SELECT id, username, password_hash, role, student_id, teacher_id, created_at FROM users WHERE username = $1 LIMIT 1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, username); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find user by username: %w", err)
	}
	return &user, nil
}

// FindByID returns a user by identifier.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	const query = `SELECT id, username, password_hash, role, student_id, teacher_id, created_at FROM users WHERE id = $1 LIMIT 1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return &user, nil
}

// ExistsByUsername is the advisory pre-check before registration. The
// unique constraint on username remains the authoritative guard.
func (r *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	const query = `SELECT 1 FROM users WHERE username = $1 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, username); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check username: %w", err)
	}
	return true, nil
}

// Create inserts a new user. A concurrent duplicate that slipped past the
// pre-check surfaces as ErrDuplicateUsername via the unique constraint.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO users (id, username, password_hash, role, student_id, teacher_id, created_at)
        VALUES (:id, :username, :password_hash, :role, :student_id, :teacher_id, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, user); err != nil {
		if isUniqueViolation(err, constraintUsersUsername) {
			return appErrors.ErrDuplicateUsername
		}
		if isForeignKeyViolation(err) {
			return appErrors.ErrForeignKey
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}
