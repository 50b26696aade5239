package audit

import (
	"errors"
	"testing"

	"restoran-admin/internal/database/dbtest"
	"restoran-admin/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestWriteLog(t *testing.T) {
	db := dbtest.New(t)

	err := WriteLog(db, LogOptions{
		UserID:     3,
		EntityType: "recipe",
		EntityID:   9,
		Action:     models.AuditActionCreate,
		After:      map[string]any{"name": "Mercimek"},
	})
	require.NoError(t, err)

	var log models.AuditLog
	require.NoError(t, db.First(&log).Error)
	assert.Equal(t, "null", log.BeforeData)
	assert.JSONEq(t, `{"name":"Mercimek"}`, log.AfterData)
}

func TestWriteLogRollsBackWithTransaction(t *testing.T) {
	db := dbtest.New(t)

	boom := errors.New("boom")
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := WriteLog(tx, LogOptions{UserID: 1, EntityType: "recipe", EntityID: 1, Action: models.AuditActionUpdate}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	var count int64
	require.NoError(t, db.Model(&models.AuditLog{}).Count(&count).Error)
	assert.Zero(t, count)
}
