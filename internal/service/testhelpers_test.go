package service

import (
	"fmt"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tidianesow/medical-e-academy/internal/database"
	"github.com/tidianesow/medical-e-academy/internal/models"
)

func setupServiceDB(t *testing.T) *gorm.DB {
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

func newValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

func createUser(t *testing.T, db *gorm.DB, name, role string) models.User {
	t.Helper()
	user := models.User{
		Name:     name,
		Email:    strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@example.com",
		Password: "hash",
		Role:     role,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func createExercise(t *testing.T, db *gorm.DB, teacherID uint, title, answer string) models.Exercise {
	t.Helper()
	exercise := models.Exercise{
		Title:         title,
		StudyID:       "1.2.840.113619." + title,
		Question:      "What does the image show?",
		CorrectAnswer: answer,
		CreatedBy:     teacherID,
	}
	require.NoError(t, db.Create(&exercise).Error)
	return exercise
}

func createSubmission(t *testing.T, db *gorm.DB, exerciseID, userID uint, grade int) models.Submission {
	t.Helper()
	submission := models.Submission{
		ExerciseID: exerciseID,
		UserID:     userID,
		Answer:     "answer",
		Grade:      grade,
		Feedback:   "auto",
	}
	require.NoError(t, db.Create(&submission).Error)
	return submission
}
