package persistence

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/atelier/backend/internal/domain/shared"
	"github.com/atelier/backend/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockDatabase creates a Database backed by sqlmock with the postgres dialect
func newMockDatabase(t *testing.T) (*Database, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
		DisableAutomaticPing:   true,
	})
	require.NoError(t, err)

	return &Database{DB: gormDB}, mock, mockDB
}

// newTestDB opens an in-memory sqlite database with the full schema
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := NewDatabase(&config.DatabaseConfig{Driver: "sqlite", Path: ":memory:"}, zap.NewNop(), "silent")
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate())
	t.Cleanup(func() { _ = db.Close() })
	return db.DB
}

// stringArg matches a driver value rendered as the given string
type stringArg string

func (a stringArg) Match(v driver.Value) bool {
	s, ok := v.(string)
	return ok && s == string(a)
}

func TestGormProjectRepository_AdjustBudgetSpent_SQL(t *testing.T) {
	t.Run("issues a relative update", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		projectID := uuid.New()
		mock.ExpectExec(`UPDATE "projects" SET "budget_spent"=budget_spent \+ \$1,"updated_at"=\$2 WHERE id = \$3`).
			WithArgs(stringArg("-12.5"), sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		repo := NewGormProjectRepository(db.DB)
		err := repo.AdjustBudgetSpent(t.Context(), projectID, decimal.RequireFromString("-12.50"))
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("zero delta issues no statement", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		repo := NewGormProjectRepository(db.DB)
		require.NoError(t, repo.AdjustBudgetSpent(t.Context(), uuid.New(), decimal.Zero))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing project is not found", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		mock.ExpectExec(`UPDATE "projects" SET "budget_spent"=budget_spent \+ \$1`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		repo := NewGormProjectRepository(db.DB)
		err := repo.AdjustBudgetSpent(t.Context(), uuid.New(), decimal.NewFromInt(5))
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDatabase_Ping(t *testing.T) {
	t.Run("successful ping", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		mock.ExpectPing()

		assert.NoError(t, db.Ping())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failed ping", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		mock.ExpectPing().WillReturnError(errors.New("connection refused"))

		assert.ErrorContains(t, db.Ping(), "connection refused")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDatabase_Stats(t *testing.T) {
	db, _, mockDB := newMockDatabase(t)
	defer mockDB.Close()

	stats, err := db.Stats()
	assert.NoError(t, err)
	assert.Equal(t, stats.OpenConnections, stats.InUse+stats.Idle)
}

func TestNewDatabase_SQLite(t *testing.T) {
	gdb := newTestDB(t)
	assert.Equal(t, "sqlite", gdb.Dialector.Name())
	assert.False(t, isPostgres(gdb))

	var fk int
	require.NoError(t, gdb.Raw("PRAGMA foreign_keys").Scan(&fk).Error)
	assert.Equal(t, 1, fk)
}

func TestTranslateError(t *testing.T) {
	tests := []struct {
		name string
		in   error
		code string
	}{
		{"record not found", gorm.ErrRecordNotFound, shared.CodeNotFound},
		{"duplicated key", gorm.ErrDuplicatedKey, shared.CodeAlreadyExists},
		{"foreign key", gorm.ErrForeignKeyViolated, shared.CodeConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := translateError(tt.in, "Thing")
			var de *shared.DomainError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, tt.code, de.Code)
		})
	}

	assert.NoError(t, translateError(nil, "Thing"))
	plain := errors.New("boom")
	assert.Same(t, plain, translateError(plain, "Thing"))
}
