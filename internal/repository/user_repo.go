package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/tidianesow/medical-e-academy/internal/models"
)

// UserRepository persists platform accounts.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (models.User, error)
	GetByID(ctx context.Context, id uint) (models.User, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository constructs a user repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&user).Error
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}
