package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/tidianesow/medical-e-academy/internal/dto"
	"github.com/tidianesow/medical-e-academy/internal/models"
	"github.com/tidianesow/medical-e-academy/internal/repository"
)

func TestExerciseServiceLifecycle(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewExerciseService(repository.NewExerciseRepository(db), newValidator(), zerolog.Nop())
	ctx := context.Background()

	owner := createUser(t, db, "Dr Ndiaye", models.RoleTeacher)
	other := createUser(t, db, "Dr Fall", models.RoleTeacher)
	student := createUser(t, db, "Khady Diop", models.RoleStudent)

	created, err := svc.Create(ctx, owner.ID, dto.ExerciseRequest{
		Title:         "<b>Chest X-ray</b>",
		StudyID:       "1.2.3",
		Question:      "Describe the finding",
		CorrectAnswer: "  Right lower lobe pneumonia ",
	})
	require.NoError(t, err)
	require.Equal(t, "Chest X-ray", created.Title)
	require.Equal(t, "Right lower lobe pneumonia", created.CorrectAnswer)
	require.Equal(t, owner.ID, created.CreatedBy)

	_, err = svc.Update(ctx, other.ID, created.ID, dto.ExerciseRequest{Title: "t", StudyID: "s", Question: "q", CorrectAnswer: "a"})
	require.ErrorIs(t, err, ErrExerciseNotFound)

	updated, err := svc.Update(ctx, owner.ID, created.ID, dto.ExerciseRequest{Title: "Chest CT", StudyID: "1.2.4", Question: "q", CorrectAnswer: "a"})
	require.NoError(t, err)
	require.Equal(t, "Chest CT", updated.Title)

	mine, err := svc.List(ctx, &owner.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	theirs, err := svc.List(ctx, &other.ID)
	require.NoError(t, err)
	require.Empty(t, theirs)

	createSubmission(t, db, created.ID, student.ID, 40)

	require.ErrorIs(t, svc.Delete(ctx, other.ID, created.ID), ErrExerciseNotFound)
	require.NoError(t, svc.Delete(ctx, owner.ID, created.ID))
	require.ErrorIs(t, svc.Delete(ctx, owner.ID, created.ID), ErrExerciseNotFound)

	var remaining int64
	require.NoError(t, db.Model(&models.Submission{}).Where("exercise_id = ?", created.ID).Count(&remaining).Error)
	require.Zero(t, remaining)

	all, err := svc.List(ctx, nil)
	require.NoError(t, err)
	require.Empty(t, all)
}

func TestExerciseServiceRequiresAllFields(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewExerciseService(repository.NewExerciseRepository(db), newValidator(), zerolog.Nop())

	_, err := svc.Create(context.Background(), 1, dto.ExerciseRequest{Title: "T", StudyID: "S", Question: "Q"})
	require.Error(t, err)

	_, err = svc.Create(context.Background(), 1, dto.ExerciseRequest{Title: "<script></script>", StudyID: "S", Question: "Q", CorrectAnswer: "A"})
	require.Error(t, err)
}
