package models

import "time"

// Exercise is a question attached to a DICOM study. CorrectAnswer is the
// reference text student answers are graded against.
type Exercise struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Title         string    `gorm:"size:255;not null" json:"title"`
	StudyID       string    `gorm:"size:255;not null" json:"study_id"`
	Question      string    `gorm:"type:text;not null" json:"question"`
	CorrectAnswer string    `gorm:"type:text;not null" json:"correct_answer"`
	CreatedBy     uint      `gorm:"index;not null" json:"created_by"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// IsOwnedBy reports whether the exercise was created by the given teacher.
func (e Exercise) IsOwnedBy(userID uint) bool {
	return userID != 0 && e.CreatedBy == userID
}
