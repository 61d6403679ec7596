// Package auth registers users and checks their credentials.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"thumbgen/internal/domain"
)

// PasswordCost is the bcrypt work factor for new passwords.
const PasswordCost = 10

// maxPasswordBytes is the bcrypt input limit. The validator's max tag counts
// runes, so multibyte passwords are checked separately.
const maxPasswordBytes = 72

type RegisterInput struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type Service struct {
	users    domain.UserRepository
	validate *validator.Validate
	logger   zerolog.Logger
}

func NewService(users domain.UserRepository, logger zerolog.Logger) *Service {
	return &Service{
		users:    users,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
}

// Register creates an account. The email is stored lowercased.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = domain.NormalizeEmail(in.Email)
	if err := s.validate.Struct(in); err != nil {
		return nil, describe(err)
	}
	if len(in.Password) > maxPasswordBytes {
		return nil, errPasswordTooLong
	}

	if _, err := s.users.GetByEmail(ctx, in.Email); err == nil {
		return nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), PasswordCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, errPasswordTooLong
	} else if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, &domain.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hash),
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("user_id", user.ID).Msg("user registered")
	return user, nil
}

// Login returns the user when the password matches. Unknown emails and wrong
// passwords fail the same way.
func (s *Service) Login(ctx context.Context, in LoginInput) (*domain.User, error) {
	in.Email = domain.NormalizeEmail(in.Email)
	if err := s.validate.Struct(in); err != nil {
		return nil, describe(err)
	}

	user, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}

// Verify reloads the user behind a session.
func (s *Service) Verify(ctx context.Context, userID string) (*domain.User, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domain.ErrNotFound
	}
	return s.users.GetByID(ctx, userID)
}

var errPasswordTooLong = domain.NewValidationError(fmt.Sprintf("password must be at most %d bytes", maxPasswordBytes))

func describe(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return domain.NewValidationError("Invalid request")
	}
	fe := verrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return domain.NewValidationError(fmt.Sprintf("%s is required", field))
	case "email":
		return domain.NewValidationError("Invalid email address")
	case "min":
		return domain.NewValidationError(fmt.Sprintf("%s must be at least %s characters", field, fe.Param()))
	case "max":
		return domain.NewValidationError(fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
	default:
		return domain.NewValidationError(fmt.Sprintf("%s is invalid", field))
	}
}
