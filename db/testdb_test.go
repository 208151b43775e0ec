package db

import (
	"context"
	"testing"
	"time"

	"equiplend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestRepo opens an in-memory sqlite database with the full schema.
// Single connection, or every pooled conn would see its own database.
func newTestRepo(t *testing.T) *Repo {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, Migrate(conn))
	return NewRepo(conn)
}

func seedStudent(t *testing.T, r *Repo, no string) *models.Student {
	t.Helper()
	s := &models.Student{ID: uuid.NewString(), StudentNo: no, Name: "Student " + no}
	require.NoError(t, r.CreateStudent(context.Background(), s))
	return s
}

func seedEquipment(t *testing.T, r *Repo, code string) *models.Equipment {
	t.Helper()
	e := &models.Equipment{ID: uuid.NewString(), Code: code, Name: "Item " + code}
	require.NoError(t, r.CreateEquipment(context.Background(), e))
	return e
}

var baseTime = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
