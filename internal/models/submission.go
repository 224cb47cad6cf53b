package models

import "time"

// Submission is a graded student answer. Grade and Feedback are written once
// by the grading pipeline; a teacher may later overwrite Feedback.
type Submission struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ExerciseID  uint      `gorm:"index;not null" json:"exercise_id"`
	UserID      uint      `gorm:"index;not null" json:"user_id"`
	Answer      string    `gorm:"type:text;not null" json:"answer"`
	Grade       int       `gorm:"not null" json:"grade"`
	Feedback    string    `gorm:"type:text" json:"feedback"`
	SubmittedAt time.Time `gorm:"autoCreateTime" json:"submitted_at"`
}

// HighScoreGrade is the minimum grade counted as a high score.
const HighScoreGrade = 90

// IsHighScore reports whether the submission reached the high score tier.
func (s Submission) IsHighScore() bool {
	return s.Grade >= HighScoreGrade
}
