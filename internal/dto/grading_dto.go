package dto

// GradeSubmitRequest is the payload of a persisted grading call.
type GradeSubmitRequest struct {
	ExerciseID uint   `json:"exercise_id" validate:"required,gt=0"`
	UserID     uint   `json:"user_id" validate:"required,gt=0"`
	Answer     string `json:"answer" validate:"required"`
}

// GradeEvaluateRequest is the payload of a preview grading call.
type GradeEvaluateRequest struct {
	ExerciseID uint   `json:"exercise_id" validate:"required,gt=0"`
	Answer     string `json:"answer" validate:"required"`
}

// GradeResponse is the grade and feedback computed for an answer.
type GradeResponse struct {
	Grade    int    `json:"grade"`
	Feedback string `json:"feedback"`
}
