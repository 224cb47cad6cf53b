package models

import "time"

// BadgeCriteria is the stable key naming a badge-award rule.
type BadgeCriteria string

const (
	// BadgeCriteriaCompleteFiveExercises is earned after answering five distinct exercises.
	BadgeCriteriaCompleteFiveExercises BadgeCriteria = "complete_5_exercises"
	// BadgeCriteriaHighScoreThreeExercises is earned after three high-score results.
	BadgeCriteriaHighScoreThreeExercises BadgeCriteria = "high_score_3_exercises"
)

// Badge is a catalog entry. Rows are seeded at startup, not created by grading.
type Badge struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	Name        string        `gorm:"size:255;not null" json:"name"`
	Description string        `gorm:"type:text" json:"description"`
	Criteria    BadgeCriteria `gorm:"size:64;uniqueIndex;not null" json:"criteria"`
}

// UserBadge records that a user holds a badge. The unique index on
// (user_id, badge_id) is what keeps concurrent awards from duplicating rows.
type UserBadge struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_user_badges_user_badge" json:"user_id"`
	BadgeID   uint      `gorm:"not null;uniqueIndex:idx_user_badges_user_badge" json:"badge_id"`
	AwardedAt time.Time `gorm:"autoCreateTime" json:"awarded_at"`
}

// DefaultBadgeCatalog lists the badges the evaluator knows how to award.
func DefaultBadgeCatalog() []Badge {
	return []Badge{
		{
			Name:        "Completed 5 exercises",
			Description: "Answered five different exercises.",
			Criteria:    BadgeCriteriaCompleteFiveExercises,
		},
		{
			Name:        "Diagnosis expert",
			Description: "Scored 90 or more on three exercises.",
			Criteria:    BadgeCriteriaHighScoreThreeExercises,
		},
	}
}
