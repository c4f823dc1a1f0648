package gorm

import (
	"database/sql/driver"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var fixedNow = time.Date(2025, 3, 10, 17, 0, 0, 0, time.UTC)

// newMockDB wraps sqlmock with GORM the same way the server opens Postgres
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gormDB, err := gorm.Open(
		postgres.New(postgres.Config{
			Conn:                 db,
			PreferSimpleProtocol: true,
		}),
		&gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		},
	)
	require.NoError(t, err)

	return gormDB, mock
}

var applicationColumns = []string{
	"id", "user_id", "company_name", "position", "location", "applied_date",
	"last_contacted_at", "current_status", "contact_name", "contact_email",
	"notes", "created_at", "updated_at",
}

func applicationRow(id, userID int64, status string) []driver.Value {
	applied := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	return []driver.Value{
		id, userID, "Acme", "Engineer", "Remote", applied,
		nil, status, "", "", "", applied, applied,
	}
}

var auditColumns = []string{"id", "application_id", "previous_status", "new_status", "changed_at", "changed_by"}
