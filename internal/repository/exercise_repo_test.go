package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/tidianesow/medical-e-academy/internal/models"
)

func TestExerciseRepositoryCorrectAnswerLookup(t *testing.T) {
	db := setupTestDB(t)
	repo := NewExerciseRepository(db)
	ctx := context.Background()

	teacher := seedUser(t, db, "Teacher", models.RoleTeacher)
	exercise := seedExercise(t, db, "pelvis", teacher.ID)

	answer, err := repo.GetCorrectAnswer(ctx, exercise.ID)
	require.NoError(t, err)
	require.Equal(t, exercise.CorrectAnswer, answer)

	_, err = repo.GetCorrectAnswer(ctx, exercise.ID+100)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestExerciseRepositoryOwnershipGuards(t *testing.T) {
	db := setupTestDB(t)
	repo := NewExerciseRepository(db)
	ctx := context.Background()

	owner := seedUser(t, db, "Owner", models.RoleTeacher)
	intruder := seedUser(t, db, "Intruder", models.RoleTeacher)
	student := seedUser(t, db, "Student", models.RoleStudent)
	exercise := seedExercise(t, db, "spine", owner.ID)
	require.NoError(t, db.Create(&models.Submission{ExerciseID: exercise.ID, UserID: student.ID, Answer: "x", Grade: 10}).Error)

	err := repo.UpdateOwned(ctx, &models.Exercise{ID: exercise.ID, CreatedBy: intruder.ID, Title: "hijack"})
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = repo.DeleteOwned(ctx, exercise.ID, intruder.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var submissions int64
	require.NoError(t, db.Model(&models.Submission{}).Count(&submissions).Error)
	require.Equal(t, int64(1), submissions, "submissions must survive a refused delete")

	mine, err := repo.List(ctx, &owner.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)

	removed, err := repo.DeleteOwned(ctx, exercise.ID, owner.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), removed)

	all, err := repo.List(ctx, nil)
	require.NoError(t, err)
	require.Empty(t, all)
}
