package repo

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"thumbgen/internal/domain"
)

func TestUserCreateDuplicateEmail(t *testing.T) {
	dup := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})
	repo := NewUserRepository(&scriptedExecutor{rowErr: dup})

	_, err := repo.Create(context.Background(), &domain.User{Name: "Ana", Email: "ana@example.com", PasswordHash: "x"})
	if !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("Create() error = %v, want ErrUserExists", err)
	}
}

func TestUserCreateReturnsRow(t *testing.T) {
	exec := &scriptedExecutor{row: [][]any{{ownerID, "Ana", "ana@example.com", "hash", created, created}}}
	repo := NewUserRepository(exec)

	u, err := repo.Create(context.Background(), &domain.User{Name: "Ana", Email: "ana@example.com", PasswordHash: "hash"})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if u.ID != ownerID || u.PasswordHash != "hash" {
		t.Fatalf("Create() = %+v", u)
	}
}

func TestUserGetByEmailNormalizes(t *testing.T) {
	exec := &scriptedExecutor{}
	repo := NewUserRepository(exec)

	_, err := repo.GetByEmail(context.Background(), "  Ana@Example.COM ")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("GetByEmail() error = %v, want ErrNotFound", err)
	}
	if got := exec.calls[0].args[0]; got != "ana@example.com" {
		t.Fatalf("email arg = %q, want ana@example.com", got)
	}
}

func TestUserGetByIDMalformed(t *testing.T) {
	exec := &scriptedExecutor{}
	repo := NewUserRepository(exec)
	if _, err := repo.GetByID(context.Background(), "42"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("GetByID() error = %v, want ErrNotFound", err)
	}
	if len(exec.calls) != 0 {
		t.Fatalf("malformed id reached the database")
	}
}
