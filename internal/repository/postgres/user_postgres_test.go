package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mdblog/internal/model"
	"mdblog/internal/repository"
)

var userCols = []string{"id", "name", "email", "password_hash", "created_at", "updated_at"}

func TestUserPostgres_Create(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserPostgres(db)
	now := time.Now().UTC()
	user := &model.User{ID: "user-1", Name: "Test", Email: "test@example.com", PasswordHash: "hash", CreatedAt: now, UpdatedAt: now}

	t.Run("created", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO users").
			WithArgs(user.ID, user.Name, user.Email, user.PasswordHash, now, now).
			WillReturnRows(sqlmock.NewRows(userCols).AddRow(user.ID, user.Name, user.Email, user.PasswordHash, now, now))

		got, err := repo.Create(context.Background(), user)
		require.NoError(t, err)
		assert.Equal(t, "test@example.com", got.Email)
	})

	t.Run("duplicate email", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO users").
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

		got, err := repo.Create(context.Background(), user)
		assert.ErrorIs(t, err, repository.ErrDuplicate)
		assert.Nil(t, got)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserPostgres_Find(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserPostgres(db)
	now := time.Now()

	mock.ExpectQuery("SELECT (.+) FROM users WHERE email = ").
		WithArgs("test@example.com").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow("user-1", "Test", "test@example.com", "hash", now, now))
	mock.ExpectQuery("SELECT (.+) FROM users WHERE id = ").
		WithArgs("nobody").
		WillReturnError(sql.ErrNoRows)

	u, err := repo.FindByEmail(context.Background(), "test@example.com")
	require.NoError(t, err)
	assert.Equal(t, "hash", u.PasswordHash)

	_, err = repo.FindByID(context.Background(), "nobody")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.True(t, IsUniqueViolation(fmt.Errorf("wrapped: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, IsUniqueViolation(sql.ErrNoRows))
}
