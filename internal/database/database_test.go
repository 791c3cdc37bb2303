package database_test

import (
	"testing"

	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/database/dbtest"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestAssignUUID_SingleAndBatch(t *testing.T) {
	db := dbtest.New(t)

	user := models.User{Name: "Ada", Email: "ada@example.com", Password: "x", IsActive: true}
	require.NoError(t, db.Create(&user).Error)
	assert.NotEqual(t, uuid.Nil, user.ID)

	keep := uuid.New()
	users := []models.User{
		{ID: keep, Name: "Bo", Email: "bo@example.com", Password: "x"},
		{Name: "Cy", Email: "cy@example.com", Password: "x"},
	}
	require.NoError(t, db.Create(&users).Error)
	assert.Equal(t, keep, users[0].ID, "explicit ids are preserved")
	assert.NotEqual(t, uuid.Nil, users[1].ID)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.Equal(t, int64(3), count)
}

func TestUniqueViolationIsTranslated(t *testing.T) {
	db := dbtest.New(t)

	require.NoError(t, db.Create(&models.User{Name: "Ada", Email: "ada@example.com", Password: "x"}).Error)
	err := db.Create(&models.User{Name: "Ada Two", Email: "ada@example.com", Password: "x"}).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}
