package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tidianesow/medical-e-academy/internal/models"
)

// ExerciseGrade is one distinct (exercise, grade) pair from a user's history.
type ExerciseGrade struct {
	ExerciseID uint
	Grade      int
}

// SubmissionRow is a submission joined with its exercise title and author name.
type SubmissionRow struct {
	ID          uint
	ExerciseID  uint
	UserID      uint
	Answer      string
	Grade       int
	Feedback    string
	SubmittedAt time.Time
	Title       string
	StudentName string
}

// ProgressPoint is one entry of a student's grade timeline.
type ProgressPoint struct {
	ID          uint
	ExerciseID  uint
	Grade       int
	SubmittedAt time.Time
	Title       string
}

// ExerciseAverage is a student's average grade on one exercise.
type ExerciseAverage struct {
	ID           uint
	Title        string
	AverageGrade float64
}

// ExerciseStat aggregates submissions for one of a teacher's exercises.
type ExerciseStat struct {
	ID              uint
	Title           string
	SubmissionCount int64
	AverageGrade    float64
}

// StudentStat aggregates a student's submissions on a teacher's exercises.
type StudentStat struct {
	ID              uint
	StudentName     string
	AverageGrade    float64
	SubmissionCount int64
}

// SubmissionRepository defines data operations for graded submissions.
type SubmissionRepository interface {
	Create(ctx context.Context, submission *models.Submission) error
	ListGradesByUser(ctx context.Context, userID uint) ([]ExerciseGrade, error)
	ListByTeacher(ctx context.Context, teacherID uint) ([]SubmissionRow, error)
	ListByUser(ctx context.Context, userID uint) ([]SubmissionRow, error)
	GetOwnedByTeacher(ctx context.Context, id, teacherID uint) (models.Submission, error)
	Delete(ctx context.Context, id uint) error
	UpdateFeedback(ctx context.Context, id uint, feedback string) error
	ListTimeline(ctx context.Context, userID uint) ([]ProgressPoint, error)
	AverageGradesByExercise(ctx context.Context, userID uint) ([]ExerciseAverage, error)
	ExerciseStats(ctx context.Context, teacherID uint) ([]ExerciseStat, error)
	TopStudents(ctx context.Context, teacherID uint, limit int) ([]StudentStat, error)
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository instantiates the repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

const submissionRowColumns = "submissions.id, submissions.exercise_id, submissions.user_id, submissions.answer, " +
	"submissions.grade, submissions.feedback, submissions.submitted_at, exercises.title"

func (r *submissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

func (r *submissionRepository) ListGradesByUser(ctx context.Context, userID uint) ([]ExerciseGrade, error) {
	var grades []ExerciseGrade
	err := r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Distinct("exercise_id", "grade").
		Where("user_id = ?", userID).
		Scan(&grades).Error
	if err != nil {
		return nil, err
	}
	return grades, nil
}

func (r *submissionRepository) ListByTeacher(ctx context.Context, teacherID uint) ([]SubmissionRow, error) {
	var rows []SubmissionRow
	err := r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Select(submissionRowColumns+", users.name AS student_name").
		Joins("JOIN exercises ON exercises.id = submissions.exercise_id").
		Joins("JOIN users ON users.id = submissions.user_id").
		Where("exercises.created_by = ?", teacherID).
		Order("submissions.submitted_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *submissionRepository) ListByUser(ctx context.Context, userID uint) ([]SubmissionRow, error) {
	var rows []SubmissionRow
	err := r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Select(submissionRowColumns).
		Joins("JOIN exercises ON exercises.id = submissions.exercise_id").
		Where("submissions.user_id = ?", userID).
		Order("submissions.submitted_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// GetOwnedByTeacher returns gorm.ErrRecordNotFound unless the submission
// answers one of the teacher's exercises.
func (r *submissionRepository) GetOwnedByTeacher(ctx context.Context, id, teacherID uint) (models.Submission, error) {
	var submission models.Submission
	err := r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Select("submissions.*").
		Joins("JOIN exercises ON exercises.id = submissions.exercise_id").
		Where("submissions.id = ? AND exercises.created_by = ?", id, teacherID).
		First(&submission).Error
	if err != nil {
		return models.Submission{}, err
	}
	return submission, nil
}

func (r *submissionRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Submission{}, id).Error
}

func (r *submissionRepository) UpdateFeedback(ctx context.Context, id uint, feedback string) error {
	return r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("id = ?", id).
		Update("feedback", feedback).Error
}

func (r *submissionRepository) ListTimeline(ctx context.Context, userID uint) ([]ProgressPoint, error) {
	var points []ProgressPoint
	err := r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Select("submissions.id, submissions.exercise_id, submissions.grade, submissions.submitted_at, exercises.title").
		Joins("JOIN exercises ON exercises.id = submissions.exercise_id").
		Where("submissions.user_id = ?", userID).
		Order("submissions.submitted_at ASC, submissions.id ASC").
		Scan(&points).Error
	if err != nil {
		return nil, err
	}
	return points, nil
}

func (r *submissionRepository) AverageGradesByExercise(ctx context.Context, userID uint) ([]ExerciseAverage, error) {
	var averages []ExerciseAverage
	err := r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Select("exercises.id, exercises.title, AVG(submissions.grade) AS average_grade").
		Joins("JOIN exercises ON exercises.id = submissions.exercise_id").
		Where("submissions.user_id = ?", userID).
		Group("exercises.id, exercises.title").
		Order("exercises.id ASC").
		Scan(&averages).Error
	if err != nil {
		return nil, err
	}
	return averages, nil
}

func (r *submissionRepository) ExerciseStats(ctx context.Context, teacherID uint) ([]ExerciseStat, error) {
	var stats []ExerciseStat
	err := r.db.WithContext(ctx).
		Model(&models.Exercise{}).
		Select("exercises.id, exercises.title, COUNT(submissions.id) AS submission_count, COALESCE(AVG(submissions.grade), 0) AS average_grade").
		Joins("LEFT JOIN submissions ON submissions.exercise_id = exercises.id").
		Where("exercises.created_by = ?", teacherID).
		Group("exercises.id, exercises.title").
		Order("exercises.id ASC").
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func (r *submissionRepository) TopStudents(ctx context.Context, teacherID uint, limit int) ([]StudentStat, error) {
	if limit <= 0 {
		limit = 3
	}

	var students []StudentStat
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Select("users.id, users.name AS student_name, AVG(submissions.grade) AS average_grade, COUNT(submissions.id) AS submission_count").
		Joins("JOIN submissions ON submissions.user_id = users.id").
		Joins("JOIN exercises ON exercises.id = submissions.exercise_id").
		Where("exercises.created_by = ?", teacherID).
		Group("users.id, users.name").
		Order("average_grade DESC").
		Limit(limit).
		Scan(&students).Error
	if err != nil {
		return nil, err
	}
	return students, nil
}
