package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"mdblog/internal/auth"
	"mdblog/internal/model"
	"mdblog/internal/repository"
	repoMocks "mdblog/internal/repository/mocks"
)

func newTestUserService(repo repository.UserRepository) *userService {
	svc := NewUserService(repo).(*userService)
	svc.hash = func(pw string) (string, error) { return "hashed:" + pw, nil }
	svc.check = func(hash, pw string) (bool, error) { return hash == "hashed:"+pw, nil }
	return svc
}

func TestUserService_Register(t *testing.T) {
	ctx := context.Background()
	valid := RegisterInput{Name: " Test User ", Email: " Test@Example.com ", Password: "password123", ConfirmPassword: "password123"}

	tests := []struct {
		name       string
		in         RegisterInput
		setup      func(m *repoMocks.MockUserRepository)
		wantFields []string
		wantErrMsg string
	}{
		{
			name: "happy path",
			in:   valid,
			setup: func(m *repoMocks.MockUserRepository) {
				m.On("FindByEmail", ctx, "test@example.com").Return(nil, sql.ErrNoRows)
				m.On("Create", ctx, mock.MatchedBy(func(u *model.User) bool {
					return u.ID != "" && u.Name == "Test User" && u.Email == "test@example.com" && u.PasswordHash == "hashed:password123"
				})).
					Return(&model.User{ID: userID, Name: "Test User", Email: "test@example.com"}, nil)
			},
		},
		{
			name:       "every field invalid",
			in:         RegisterInput{Name: "", Email: "nope", Password: "short", ConfirmPassword: "other"},
			wantFields: []string{"name", "email", "password", "confirm_password"},
		},
		{
			name:       "name too long",
			in:         RegisterInput{Name: strings.Repeat("a", MaxNameLength+1), Email: "a@b.co", Password: "password123", ConfirmPassword: "password123"},
			wantFields: []string{"name"},
		},
		{
			name:       "password over the bcrypt limit",
			in:         RegisterInput{Name: "A", Email: "a@b.co", Password: strings.Repeat("p", 80), ConfirmPassword: strings.Repeat("p", 80)},
			wantFields: []string{"password"},
		},
		{
			name:       "multibyte password over the bcrypt limit",
			in:         RegisterInput{Name: "A", Email: "a@b.co", Password: strings.Repeat("パ", 25), ConfirmPassword: strings.Repeat("パ", 25)},
			wantFields: []string{"password"},
		},
		{
			name:       "display name address rejected",
			in:         RegisterInput{Name: "A", Email: "A <a@b.co>", Password: "password123", ConfirmPassword: "password123"},
			wantFields: []string{"email"},
		},
		{
			name: "email taken",
			in:   valid,
			setup: func(m *repoMocks.MockUserRepository) {
				m.On("FindByEmail", ctx, "test@example.com").Return(&model.User{ID: otherID}, nil)
			},
			wantFields: []string{"email"},
		},
		{
			name: "email taken concurrently",
			in:   valid,
			setup: func(m *repoMocks.MockUserRepository) {
				m.On("FindByEmail", ctx, "test@example.com").Return(nil, sql.ErrNoRows)
				m.On("Create", ctx, mock.Anything).Return(nil, repository.ErrDuplicate)
			},
			wantFields: []string{"email"},
		},
		{
			name: "lookup failure",
			in:   valid,
			setup: func(m *repoMocks.MockUserRepository) {
				m.On("FindByEmail", ctx, "test@example.com").Return(nil, errors.New("db down"))
			},
			wantErrMsg: "db down",
		},
		{
			name: "create failure",
			in:   valid,
			setup: func(m *repoMocks.MockUserRepository) {
				m.On("FindByEmail", ctx, "test@example.com").Return(nil, sql.ErrNoRows)
				m.On("Create", ctx, mock.Anything).Return(nil, errors.New("db down"))
			},
			wantErrMsg: "create user: db down",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mRepo := new(repoMocks.MockUserRepository)
			if tt.setup != nil {
				tt.setup(mRepo)
			}

			u, err := newTestUserService(mRepo).Register(ctx, tt.in)

			switch {
			case len(tt.wantFields) > 0:
				var verr *ValidationError
				require.ErrorAs(t, err, &verr)
				for _, f := range tt.wantFields {
					assert.Contains(t, verr.Fields, f)
				}
				assert.Len(t, verr.Fields, len(tt.wantFields))
			case tt.wantErrMsg != "":
				assert.EqualError(t, err, tt.wantErrMsg)
			default:
				require.NoError(t, err)
				assert.Equal(t, userID, u.ID)
			}
			mRepo.AssertExpectations(t)
		})
	}
}

func TestUserService_Authenticate(t *testing.T) {
	ctx := context.Background()
	stored := &model.User{ID: userID, Email: "test@example.com", PasswordHash: "hashed:password123"}

	tests := []struct {
		name     string
		email    string
		password string
		setup    func(m *repoMocks.MockUserRepository)
		wantErr  error
	}{
		{
			name: "ok", email: "TEST@example.com", password: "password123",
			setup: func(m *repoMocks.MockUserRepository) {
				m.On("FindByEmail", ctx, "test@example.com").Return(stored, nil)
			},
		},
		{
			name: "wrong password", email: "test@example.com", password: "nope",
			setup: func(m *repoMocks.MockUserRepository) {
				m.On("FindByEmail", ctx, "test@example.com").Return(stored, nil)
			},
			wantErr: ErrInvalidCredentials,
		},
		{
			name: "unknown email", email: "who@example.com", password: "password123",
			setup: func(m *repoMocks.MockUserRepository) {
				m.On("FindByEmail", ctx, "who@example.com").Return(nil, sql.ErrNoRows)
			},
			wantErr: ErrInvalidCredentials,
		},
		{name: "blank", email: " ", password: "", wantErr: ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mRepo := new(repoMocks.MockUserRepository)
			if tt.setup != nil {
				tt.setup(mRepo)
			}
			u, err := newTestUserService(mRepo).Authenticate(ctx, tt.email, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, userID, u.ID)
		})
	}
}

func TestUserService_BcryptRoundTrip(t *testing.T) {
	ctx := context.Background()
	hash, err := auth.HashPassword("password123")
	require.NoError(t, err)

	mRepo := new(repoMocks.MockUserRepository)
	mRepo.On("FindByEmail", ctx, "test@example.com").Return(&model.User{ID: userID, PasswordHash: hash}, nil)

	svc := NewUserService(mRepo)
	_, err = svc.Authenticate(ctx, "test@example.com", "password123")
	assert.NoError(t, err)
	_, err = svc.Authenticate(ctx, "test@example.com", "password124")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUserService_Get(t *testing.T) {
	ctx := context.Background()
	mRepo := new(repoMocks.MockUserRepository)
	mRepo.On("FindByID", ctx, userID).Return(&model.User{ID: userID}, nil)
	mRepo.On("FindByID", ctx, otherID).Return(nil, sql.ErrNoRows)
	svc := NewUserService(mRepo)

	u, err := svc.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, userID, u.ID)

	_, err = svc.Get(ctx, otherID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Get(ctx, "")
	assert.ErrorIs(t, err, ErrIDRequired)
}

func TestValidationError(t *testing.T) {
	v := &ValidationError{}
	v.Add("title", "title is required")
	v.Add(FormField, "something went wrong")
	assert.Equal(t, "validation failed: _form: something went wrong; title: title is required", v.Error())
}
