package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"mdblog/internal/auth"
	"mdblog/internal/model"
	"mdblog/internal/repository"
)

const (
	MaxNameLength     = 50
	MinPasswordLength = 8
	// MaxPasswordBytes is the longest input bcrypt accepts.
	MaxPasswordBytes = 72
)

// RegisterInput is the registration form.
type RegisterInput struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
}

// UserService defines account use cases.
type UserService interface {
	// Register validates the form, rejects taken emails and stores a bcrypt hash of the password.
	Register(ctx context.Context, in RegisterInput) (*model.User, error)

	// Authenticate returns ErrInvalidCredentials for an unknown email or a wrong password.
	Authenticate(ctx context.Context, email, password string) (*model.User, error)

	Get(ctx context.Context, id string) (*model.User, error)
}

type userService struct {
	repo  repository.UserRepository
	hash  func(string) (string, error)
	check func(hash, password string) (bool, error)
}

// NewUserService constructs a new UserService.
func NewUserService(repo repository.UserRepository) UserService {
	return &userService{repo: repo, hash: auth.HashPassword, check: auth.CheckPassword}
}

func (s *userService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)

	verr := &ValidationError{}
	switch {
	case name == "":
		verr.Add("name", "name is required")
	case utf8.RuneCountInString(name) > MaxNameLength:
		verr.Add("name", fmt.Sprintf("name must be at most %d characters", MaxNameLength))
	}
	if !validEmail(email) {
		verr.Add("email", "enter a valid email address")
	}
	switch {
	case utf8.RuneCountInString(in.Password) < MinPasswordLength:
		verr.Add("password", fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	case len(in.Password) > MaxPasswordBytes:
		verr.Add("password", fmt.Sprintf("password must be at most %d bytes", MaxPasswordBytes))
	}
	if in.Password != in.ConfirmPassword {
		verr.Add("confirm_password", "passwords do not match")
	}
	if !verr.empty() {
		return nil, verr
	}

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, fieldError("email", "this email address is already registered")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	hash, err := s.hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user, err := s.repo.Create(ctx, &model.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fieldError("email", "this email address is already registered")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (s *userService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := s.check(user.PasswordHash, password)
	if err != nil {
		return nil, fmt.Errorf("check password: %w", err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *userService) Get(ctx context.Context, id string) (*model.User, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// validEmail accepts a bare address only, not the "Name <addr>" form.
func validEmail(email string) bool {
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}
