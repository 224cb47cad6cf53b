package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tidianesow/medical-e-academy/internal/models"
)

// ErrBadgeAlreadyAwarded is returned when the user already holds the badge.
var ErrBadgeAlreadyAwarded = errors.New("badge already awarded")

// ErrBadgeNotInCatalog is returned when no catalog row carries the criteria key.
var ErrBadgeNotInCatalog = errors.New("badge not in catalog")

// UserBadgeRow is a held badge joined with its catalog entry.
type UserBadgeRow struct {
	ID          uint
	Name        string
	Description string
	Criteria    models.BadgeCriteria
	AwardedAt   time.Time
}

// BadgeRepository persists the badge catalog and user awards.
type BadgeRepository interface {
	HasBadge(ctx context.Context, userID uint, criteria models.BadgeCriteria) (bool, error)
	AwardBadge(ctx context.Context, userID uint, criteria models.BadgeCriteria) error
	ListByUser(ctx context.Context, userID uint) ([]UserBadgeRow, error)
	UpsertCatalog(ctx context.Context, badges []models.Badge) error
}

type badgeRepository struct {
	db *gorm.DB
}

// NewBadgeRepository constructs a badge repository.
func NewBadgeRepository(db *gorm.DB) BadgeRepository {
	return &badgeRepository{db: db}
}

func (r *badgeRepository) HasBadge(ctx context.Context, userID uint, criteria models.BadgeCriteria) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.UserBadge{}).
		Joins("JOIN badges ON badges.id = user_badges.badge_id").
		Where("user_badges.user_id = ? AND badges.criteria = ?", userID, criteria).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// AwardBadge inserts the award or does nothing when it already exists.
// A skipped insert is reported as ErrBadgeAlreadyAwarded.
func (r *badgeRepository) AwardBadge(ctx context.Context, userID uint, criteria models.BadgeCriteria) error {
	var badge models.Badge
	if err := r.db.WithContext(ctx).Where("criteria = ?", criteria).First(&badge).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBadgeNotInCatalog
		}
		return err
	}

	award := models.UserBadge{UserID: userID, BadgeID: badge.ID}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "badge_id"}},
			DoNothing: true,
		}).
		Create(&award)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBadgeAlreadyAwarded
	}
	return nil
}

func (r *badgeRepository) ListByUser(ctx context.Context, userID uint) ([]UserBadgeRow, error) {
	var rows []UserBadgeRow
	err := r.db.WithContext(ctx).
		Model(&models.UserBadge{}).
		Select("badges.id, badges.name, badges.description, badges.criteria, user_badges.awarded_at").
		Joins("JOIN badges ON badges.id = user_badges.badge_id").
		Where("user_badges.user_id = ?", userID).
		Order("user_badges.awarded_at ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// UpsertCatalog inserts catalog rows keyed by criteria, refreshing names and descriptions.
func (r *badgeRepository) UpsertCatalog(ctx context.Context, badges []models.Badge) error {
	if len(badges) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "criteria"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "description"}),
		}).
		Create(&badges).Error
}
