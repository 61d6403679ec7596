package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"thumbgen/internal/domain"
	"thumbgen/internal/infra"
	"thumbgen/internal/sqlinline"
)

// UserRepositoryPG implements domain.UserRepository backed by PostgreSQL.
type UserRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewUserRepository creates a new UserRepositoryPG.
func NewUserRepository(sql infra.SQLExecutor) *UserRepositoryPG {
	return &UserRepositoryPG{sql: sql}
}

// Create inserts a user. A duplicate email yields domain.ErrUserExists.
func (r *UserRepositoryPG) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QInsertUser, user.Name, user.Email, user.PasswordHash)
	created, err := scanUser(row)
	if err != nil {
		if infra.IsUniqueViolation(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("%w: insert user: %v", domain.ErrPersistence, err)
	}
	return created, nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepositoryPG) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	u, err := scanUser(r.sql.QueryRow(ctx, sqlinline.QSelectUserByEmail, domain.NormalizeEmail(email)))
	if err != nil {
		return nil, classify("get user by email", err)
	}
	return u, nil
}

// GetByID fetches a user by UUID.
func (r *UserRepositoryPG) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if !validUUID(id) {
		return nil, domain.ErrNotFound
	}
	u, err := scanUser(r.sql.QueryRow(ctx, sqlinline.QSelectUserByID, id))
	if err != nil {
		return nil, classify("get user", err)
	}
	return u, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

var _ domain.UserRepository = (*UserRepositoryPG)(nil)
