package repository

import (
	"context"
	"testing"
	"time"

	"tasktrack/internal/common"
	"tasktrack/internal/domain/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPgUserRepository(db)

	now := time.Now()
	mock.ExpectQuery("INSERT INTO users").
		WithArgs("user-1", "Ann", "ann@x.com", "hashed").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	user := &model.User{ID: "user-1", Name: "Ann", Email: "ann@x.com", HashedPassword: "hashed"}
	require.NoError(t, repo.Create(context.Background(), user))
	assert.Equal(t, now, user.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Create_UniqueViolationIsConflict(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPgUserRepository(db)

	mock.ExpectQuery("INSERT INTO users").
		WithArgs("user-2", "Ann Again", "ann@x.com", "hashed").
		WillReturnError(&pgconn.PgError{Code: "23505"})

	user := &model.User{ID: "user-2", Name: "Ann Again", Email: "ann@x.com", HashedPassword: "hashed"}
	err := repo.Create(context.Background(), user)
	require.ErrorIs(t, err, common.ErrConflict)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindByEmail_NoRowsIsNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPgUserRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE email = \\$1").
		WithArgs("nobody@x.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "hashed_password", "created_at", "updated_at"}))

	_, err := repo.FindByEmail(context.Background(), "nobody@x.com")
	require.ErrorIs(t, err, common.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
