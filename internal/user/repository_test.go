package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()

	email := "john@example.com"
	password := "hashed_password"

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery(`INSERT INTO users \(email, password, role\) VALUES \(\$1, \$2, \$3\)`).
			WithArgs(email, password, "customer").
			WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password", "role", "created_at"}).
				AddRow(1, email, password, "customer", time.Now()))

		u, err := repo.Create(ctx, email, password, RoleCustomer)
		require.NoError(t, err)
		assert.Equal(t, uint(1), u.ID)
		assert.Equal(t, email, u.Email)
		assert.Equal(t, RoleCustomer, u.Role)
	})

	t.Run("Duplicate email", func(t *testing.T) {
		mock.ExpectQuery(`INSERT INTO users`).
			WillReturnError(&pq.Error{Code: pq.ErrorCode(PgUniqueViolation)})

		_, err := repo.Create(ctx, email, password, RoleCustomer)
		assert.ErrorIs(t, err, ErrEmailExists)
	})

	t.Run("DBError", func(t *testing.T) {
		mock.ExpectQuery(`INSERT INTO users`).
			WillReturnError(errors.New("db error"))

		_, err := repo.Create(ctx, email, password, RoleCustomer)
		assert.EqualError(t, err, "db error")
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_FindByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()

	t.Run("Found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT id, email, password, role, created_at FROM users WHERE email = \$1`).
			WithArgs("john@example.com").
			WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password", "role", "created_at"}).
				AddRow(3, "john@example.com", "hash", "admin", time.Now()))

		u, err := repo.FindByEmail(ctx, "john@example.com")
		require.NoError(t, err)
		require.NotNil(t, u)
		assert.Equal(t, uint(3), u.ID)
		assert.Equal(t, RoleAdmin, u.Role)
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery(`SELECT id, email`).
			WithArgs("ghost@example.com").
			WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password", "role", "created_at"}))

		u, err := repo.FindByEmail(ctx, "ghost@example.com")
		assert.NoError(t, err)
		assert.Nil(t, u)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
