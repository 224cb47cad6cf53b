package dto

import (
	"time"

	"github.com/tidianesow/medical-e-academy/internal/models"
)

// ExerciseRequest is used to create or replace an exercise.
type ExerciseRequest struct {
	Title         string `json:"title" validate:"required"`
	StudyID       string `json:"study_id" validate:"required"`
	Question      string `json:"question" validate:"required"`
	CorrectAnswer string `json:"correct_answer" validate:"required"`
}

// ExerciseResponse represents an exercise to API consumers.
type ExerciseResponse struct {
	ID            uint      `json:"id"`
	Title         string    `json:"title"`
	StudyID       string    `json:"study_id"`
	Question      string    `json:"question"`
	CorrectAnswer string    `json:"correct_answer"`
	CreatedBy     uint      `json:"created_by"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewExerciseResponse builds a response DTO from a model.
func NewExerciseResponse(exercise models.Exercise) ExerciseResponse {
	return ExerciseResponse{
		ID:            exercise.ID,
		Title:         exercise.Title,
		StudyID:       exercise.StudyID,
		Question:      exercise.Question,
		CorrectAnswer: exercise.CorrectAnswer,
		CreatedBy:     exercise.CreatedBy,
		CreatedAt:     exercise.CreatedAt,
		UpdatedAt:     exercise.UpdatedAt,
	}
}

// NewExerciseResponseSlice converts a slice of exercises.
func NewExerciseResponseSlice(exercises []models.Exercise) []ExerciseResponse {
	responses := make([]ExerciseResponse, 0, len(exercises))
	for _, exercise := range exercises {
		responses = append(responses, NewExerciseResponse(exercise))
	}
	return responses
}
