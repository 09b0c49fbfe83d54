package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Baaaki/campus-market/internal/apperrors"
	"github.com/Baaaki/campus-market/internal/models"
	"github.com/Baaaki/campus-market/internal/repository"
	"github.com/Baaaki/campus-market/internal/utils"
	"github.com/Baaaki/campus-market/internal/validation"
	"github.com/Baaaki/campus-market/pkg/logger"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var (
	ErrEmailAlreadyExists = &apperrors.CustomError{Err: apperrors.ErrConflict, Message: "email already exists"}
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// RegisterInput is validated with the institutional domain rule.
type RegisterInput struct {
	Name     string `json:"name" validate:"notblank,min=3,max=255"`
	Email    string `json:"email" validate:"required,email,max=255,institutional"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

type AuthService struct {
	userRepo      *repository.UserRepository
	validate      *validator.Validate
	jwtSecret     string
	jwtExpiration time.Duration
	environment   string
}

func NewAuthService(userRepo *repository.UserRepository, validate *validator.Validate, jwtSecret string, jwtExpiration time.Duration, environment string) *AuthService {
	return &AuthService{
		userRepo:      userRepo,
		validate:      validate,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
		environment:   environment,
	}
}

// IsProduction returns true if running in production environment
func (s *AuthService) IsProduction() bool {
	return s.environment == "production"
}

// TokenTTL is how long issued tokens (and their cookies) live
func (s *AuthService) TokenTTL() time.Duration {
	return s.jwtExpiration
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*models.User, string, error) {
	start := time.Now()

	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))

	logger.Log.Debug("Processing user registration",
		zap.String("email", input.Email),
	)

	// 1. Validate input
	if err := validation.Fields(s.validate.Struct(input)); err != nil {
		logger.Log.Warn("Registration validation failed",
			zap.String("email", input.Email),
			zap.Error(err),
		)
		return nil, "", err
	}

	// 2. Check if email already exists
	existingUser, err := s.userRepo.GetUserByEmail(ctx, input.Email)
	if err != nil {
		logger.Log.Error("Failed to check email existence",
			zap.String("email", input.Email),
			zap.Error(err),
		)
		return nil, "", err
	}
	if existingUser != nil {
		logger.Log.Warn("Email already exists",
			zap.String("email", input.Email),
		)
		return nil, "", ErrEmailAlreadyExists
	}

	// 3. Hash password (Argon2)
	hashStart := time.Now()
	hashedPassword, err := utils.HashPassword(input.Password)
	if err != nil {
		logger.Log.Error("Failed to hash password", zap.Error(err))
		return nil, "", err
	}
	hashDuration := time.Since(hashStart)

	// 4. Create user
	user := &models.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hashedPassword,
		Role:         models.RoleUser,
	}

	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		// Lost a race with a concurrent registration
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, "", ErrEmailAlreadyExists
		}
		logger.Log.Error("Failed to create user in database",
			zap.String("email", input.Email),
			zap.Error(err),
		)
		return nil, "", err
	}

	// 5. Generate JWT token
	token, err := utils.GenerateToken(user, s.jwtSecret, s.jwtExpiration)
	if err != nil {
		logger.Log.Error("Failed to generate JWT token",
			zap.Uint("user_id", user.ID),
			zap.Error(err),
		)
		return nil, "", err
	}

	logger.Log.Info("User registered successfully",
		zap.Uint("user_id", user.ID),
		zap.String("email", user.Email),
		zap.Duration("hash_duration", hashDuration),
		zap.Duration("total_duration", time.Since(start)),
	)

	return user, token, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	start := time.Now()
	email = strings.ToLower(strings.TrimSpace(email))

	logger.Log.Debug("Processing user login",
		zap.String("email", email),
	)

	// 1. Get user by email
	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		logger.Log.Error("Failed to get user by email",
			zap.String("email", email),
			zap.Error(err),
		)
		return nil, "", err
	}
	if user == nil {
		logger.Log.Warn("Login failed: user not found",
			zap.String("email", email),
		)
		return nil, "", ErrInvalidCredentials
	}

	// 2. Verify password
	valid, err := utils.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		logger.Log.Error("Failed to verify password",
			zap.Uint("user_id", user.ID),
			zap.Error(err),
		)
		return nil, "", err
	}
	if !valid {
		logger.Log.Warn("Login failed: invalid password",
			zap.Uint("user_id", user.ID),
		)
		return nil, "", ErrInvalidCredentials
	}

	// 3. Generate JWT token
	token, err := utils.GenerateToken(user, s.jwtSecret, s.jwtExpiration)
	if err != nil {
		logger.Log.Error("Failed to generate JWT token",
			zap.Uint("user_id", user.ID),
			zap.Error(err),
		)
		return nil, "", err
	}

	logger.Log.Info("User logged in successfully",
		zap.Uint("user_id", user.ID),
		zap.Duration("total_duration", time.Since(start)),
	)

	return user, token, nil
}

// GetUser returns the user or a not found error
func (s *AuthService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.userRepo.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.NotFound("user")
	}
	return user, nil
}

// UserPage is one page of the admin user listing
type UserPage struct {
	Data       []models.User         `json:"data"`
	Pagination repository.Pagination `json:"pagination"`
}

func (s *AuthService) ListUsers(ctx context.Context, page, size int) (*UserPage, error) {
	users, total, err := s.userRepo.ListUsers(ctx, page, size)
	if err != nil {
		logger.Log.Error("Failed to list users", zap.Error(err))
		return nil, err
	}

	if users == nil {
		users = []models.User{}
	}
	return &UserPage{
		Data:       users,
		Pagination: repository.NewPagination(total, page, size),
	}, nil
}
