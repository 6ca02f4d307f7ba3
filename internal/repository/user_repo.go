package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"launchhub/internal/apperrors"
	"launchhub/internal/model"
)

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// CreateUser inserts u and fills its ID and CreatedAt. A taken email is a
// validation error.
func (r *UserRepository) CreateUser(ctx context.Context, u *model.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	query := `
        INSERT INTO users (id, email, password_hash, role, created_at)
        VALUES ($1, $2, $3, $4, NOW())
        RETURNING created_at
    `
	err := r.db.QueryRow(ctx, query, u.ID, u.Email, u.PasswordHash, u.Role).Scan(&u.CreatedAt)
	if isUniqueViolation(err) {
		return apperrors.NewValidationError("email", "duplicate", "email already registered")
	}
	return apperrors.Persistence("create user", err)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `
        SELECT id, email, password_hash, role, created_at
        FROM users
        WHERE email = $1
    `
	var u model.User
	err := r.db.QueryRow(ctx, query, email).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if err != nil {
		return nil, notFound("find user", err)
	}
	return &u, nil
}
