package dto

import (
	"math"
	"time"

	"github.com/tidianesow/medical-e-academy/internal/repository"
)

// FeedbackUpdateRequest overwrites the feedback of a graded submission.
type FeedbackUpdateRequest struct {
	Feedback string `json:"feedback" validate:"required"`
}

// SubmissionResponse describes a submission with its exercise title.
type SubmissionResponse struct {
	ID          uint      `json:"id"`
	ExerciseID  uint      `json:"exercise_id"`
	UserID      uint      `json:"user_id"`
	Answer      string    `json:"answer"`
	Grade       int       `json:"grade"`
	Feedback    string    `json:"feedback"`
	SubmittedAt time.Time `json:"submitted_at"`
	Title       string    `json:"title"`
	StudentName string    `json:"student_name,omitempty"`
}

// ProgressPoint is one graded submission on the student's timeline.
type ProgressPoint struct {
	ID          uint      `json:"id"`
	ExerciseID  uint      `json:"exercise_id"`
	Grade       int       `json:"grade"`
	SubmittedAt time.Time `json:"submitted_at"`
	Title       string    `json:"title"`
}

// ExerciseAverage is the student's average grade on one exercise.
type ExerciseAverage struct {
	ID           uint    `json:"id"`
	Title        string  `json:"title"`
	AverageGrade float64 `json:"average_grade"`
}

// StudentProgressResponse feeds the student progress charts.
type StudentProgressResponse struct {
	Submissions   []ProgressPoint   `json:"submissions"`
	AverageGrades []ExerciseAverage `json:"averageGrades"`
}

// ExerciseStatistic aggregates submissions on one exercise.
type ExerciseStatistic struct {
	ID              uint    `json:"id"`
	Title           string  `json:"title"`
	SubmissionCount int64   `json:"submission_count"`
	AverageGrade    float64 `json:"average_grade"`
}

// TopStudent is a student ranked by average grade.
type TopStudent struct {
	ID              uint    `json:"id"`
	StudentName     string  `json:"student_name"`
	AverageGrade    float64 `json:"average_grade"`
	SubmissionCount int64   `json:"submission_count"`
}

// TeacherStatisticsResponse is the teacher's dashboard payload.
type TeacherStatisticsResponse struct {
	ExerciseStats []ExerciseStatistic `json:"exerciseStats"`
	TopStudents   []TopStudent        `json:"topStudents"`
}

// RoundGrade rounds an average grade to two decimals.
func RoundGrade(value float64) float64 {
	return math.Round(value*100) / 100
}

// NewSubmissionResponseSlice converts repository rows.
func NewSubmissionResponseSlice(rows []repository.SubmissionRow) []SubmissionResponse {
	responses := make([]SubmissionResponse, 0, len(rows))
	for _, row := range rows {
		responses = append(responses, SubmissionResponse{
			ID:          row.ID,
			ExerciseID:  row.ExerciseID,
			UserID:      row.UserID,
			Answer:      row.Answer,
			Grade:       row.Grade,
			Feedback:    row.Feedback,
			SubmittedAt: row.SubmittedAt,
			Title:       row.Title,
			StudentName: row.StudentName,
		})
	}
	return responses
}

// NewStudentProgressResponse assembles both progress series.
func NewStudentProgressResponse(points []repository.ProgressPoint, averages []repository.ExerciseAverage) StudentProgressResponse {
	response := StudentProgressResponse{
		Submissions:   make([]ProgressPoint, 0, len(points)),
		AverageGrades: make([]ExerciseAverage, 0, len(averages)),
	}
	for _, point := range points {
		response.Submissions = append(response.Submissions, ProgressPoint(point))
	}
	for _, average := range averages {
		response.AverageGrades = append(response.AverageGrades, ExerciseAverage{
			ID:           average.ID,
			Title:        average.Title,
			AverageGrade: RoundGrade(average.AverageGrade),
		})
	}
	return response
}

// NewTeacherStatisticsResponse assembles the teacher dashboard.
func NewTeacherStatisticsResponse(stats []repository.ExerciseStat, students []repository.StudentStat) TeacherStatisticsResponse {
	response := TeacherStatisticsResponse{
		ExerciseStats: make([]ExerciseStatistic, 0, len(stats)),
		TopStudents:   make([]TopStudent, 0, len(students)),
	}
	for _, stat := range stats {
		response.ExerciseStats = append(response.ExerciseStats, ExerciseStatistic{
			ID:              stat.ID,
			Title:           stat.Title,
			SubmissionCount: stat.SubmissionCount,
			AverageGrade:    RoundGrade(stat.AverageGrade),
		})
	}
	for _, student := range students {
		response.TopStudents = append(response.TopStudents, TopStudent{
			ID:              student.ID,
			StudentName:     student.StudentName,
			AverageGrade:    RoundGrade(student.AverageGrade),
			SubmissionCount: student.SubmissionCount,
		})
	}
	return response
}
