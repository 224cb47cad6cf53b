package repository

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tidianesow/medical-e-academy/internal/database"
	"github.com/tidianesow/medical-e-academy/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func seedUser(t *testing.T, db *gorm.DB, name, role string) models.User {
	t.Helper()
	user := models.User{Name: name, Email: strings.ToLower(name) + "@example.com", Password: "hash", Role: role}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func seedExercise(t *testing.T, db *gorm.DB, title string, ownerID uint) models.Exercise {
	t.Helper()
	exercise := models.Exercise{
		Title:         title,
		StudyID:       "1.2.840.113619." + title,
		Question:      "What do you see?",
		CorrectAnswer: "A fracture of the left femur",
		CreatedBy:     ownerID,
	}
	require.NoError(t, db.Create(&exercise).Error)
	return exercise
}
