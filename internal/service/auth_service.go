package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/tidianesow/medical-e-academy/internal/dto"
	"github.com/tidianesow/medical-e-academy/internal/models"
	"github.com/tidianesow/medical-e-academy/internal/repository"
)

var (
	// ErrEmailTaken indicates an account already uses the email address.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials hides whether the email or the password was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// AuthService registers accounts and issues bearer tokens.
type AuthService interface {
	Register(ctx context.Context, payload dto.RegisterRequest) (dto.UserResponse, error)
	Login(ctx context.Context, payload dto.LoginRequest) (dto.LoginResponse, error)
}

type authService struct {
	users     repository.UserRepository
	validator *validator.Validate
	secret    []byte
	ttl       time.Duration
	logger    zerolog.Logger
	now       func() time.Time
}

// NewAuthService constructs the auth service. Tokens are signed with HS256.
func NewAuthService(users repository.UserRepository, validate *validator.Validate, secret string, ttl time.Duration, logger zerolog.Logger) AuthService {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &authService{
		users:     users,
		validator: validate,
		secret:    []byte(secret),
		ttl:       ttl,
		logger:    logger.With().Str("component", "auth_service").Logger(),
		now:       time.Now,
	}
}

func (s *authService) Register(ctx context.Context, payload dto.RegisterRequest) (dto.UserResponse, error) {
	payload.Name = strings.TrimSpace(payload.Name)
	payload.Email = strings.ToLower(strings.TrimSpace(payload.Email))
	payload.Role = strings.ToLower(strings.TrimSpace(payload.Role))
	if err := s.validator.Struct(payload); err != nil {
		return dto.UserResponse{}, err
	}

	if _, err := s.users.GetByEmail(ctx, payload.Email); err == nil {
		return dto.UserResponse{}, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.UserResponse{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		return dto.UserResponse{}, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Name:     payload.Name,
		Email:    payload.Email,
		Password: string(hash),
		Role:     payload.Role,
	}
	if err := s.users.Create(ctx, &user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.UserResponse{}, ErrEmailTaken
		}
		return dto.UserResponse{}, err
	}

	s.logger.Info().Uint("user_id", user.ID).Str("role", user.Role).Msg("user registered")
	return dto.NewUserResponse(user), nil
}

func (s *authService) Login(ctx context.Context, payload dto.LoginRequest) (dto.LoginResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.LoginResponse{}, err
	}

	user, err := s.users.GetByEmail(ctx, payload.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.LoginResponse{}, ErrInvalidCredentials
		}
		return dto.LoginResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(payload.Password)); err != nil {
		return dto.LoginResponse{}, ErrInvalidCredentials
	}

	token, err := s.issueToken(user)
	if err != nil {
		return dto.LoginResponse{}, fmt.Errorf("sign token: %w", err)
	}

	return dto.LoginResponse{Token: token, User: dto.NewUserResponse(user)}, nil
}

func (s *authService) issueToken(user models.User) (string, error) {
	claims := jwt.MapClaims{
		"id":    user.ID,
		"email": user.Email,
		"role":  user.Role,
		"exp":   s.now().Add(s.ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}
