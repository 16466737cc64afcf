package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/classtrack/classtrack-api/internal/models"
	appErrors "github.com/classtrack/classtrack-api/pkg/errors"
)

type authUserRepository interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	Create(ctx context.Context, user *models.User) error
}

type authStudentRepository interface {
	Exists(ctx context.Context, id string) (bool, error)
}

type authTeacherRepository interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// AuthConfig defines configuration for authentication flows.
type AuthConfig struct {
	TokenSecret string
	TokenExpiry time.Duration
	Issuer      string
}

// RegisterRequest is the payload for account creation. Student accounts
// must link an existing student; teacher accounts may link a teacher row
// later, so TeacherID is optional at registration time.
type RegisterRequest struct {
	Username  string          `json:"username" validate:"required,min=3"`
	Password  string          `json:"password" validate:"required,min=6"`
	Role      models.UserRole `json:"role" validate:"required,oneof=TEACHER STUDENT"`
	StudentID *string         `json:"student_id,omitempty"`
	TeacherID *string         `json:"teacher_id,omitempty"`
}

// AuthService provides registration and login use cases.
type AuthService struct {
	users     authUserRepository
	students  authStudentRepository
	teachers  authTeacherRepository
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(users authUserRepository, students authStudentRepository, teachers authTeacherRepository, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AuthService{users: users, students: students, teachers: teachers, validator: validate, logger: logger, config: config}
}

// Register creates a new account. The username pre-check gives a friendly
// error message; the unique constraint behind UserRepository.Create is the
// authoritative guard against concurrent duplicates.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*models.UserInfo, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid registration payload")
	}

	switch req.Role {
	case models.RoleStudent:
		if req.StudentID == nil || *req.StudentID == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "student role requires a student id")
		}
		exists, err := s.students.Exists(ctx, *req.StudentID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check student")
		}
		if !exists {
			return nil, appErrors.Clone(appErrors.ErrForeignKey, "student does not exist")
		}
		req.TeacherID = nil
	case models.RoleTeacher:
		// The teacher link is optional so that accounts can be created on an
		// empty database; when supplied it must reference an existing teacher.
		if req.TeacherID != nil && *req.TeacherID == "" {
			req.TeacherID = nil
		}
		if req.TeacherID != nil {
			exists, err := s.teachers.Exists(ctx, *req.TeacherID)
			if err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check teacher")
			}
			if !exists {
				return nil, appErrors.Clone(appErrors.ErrForeignKey, "teacher does not exist")
			}
		}
		req.StudentID = nil
	}

	taken, err := s.users.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check username")
	}
	if taken {
		return nil, appErrors.ErrDuplicateUsername
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	user := &models.User{
		Username:     req.Username,
		PasswordHash: string(passwordHash),
		Role:         req.Role,
		StudentID:    req.StudentID,
		TeacherID:    req.TeacherID,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, appErrors.ErrDuplicateUsername) {
			return nil, appErrors.ErrDuplicateUsername
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create user")
	}

	s.logger.Info("user registered", zap.String("username", user.Username), zap.String("role", string(user.Role)))

	return &models.UserInfo{
		ID:        user.ID,
		Username:  user.Username,
		Role:      user.Role,
		StudentID: user.StudentID,
		TeacherID: user.TeacherID,
	}, nil
}

// Login authenticates a user and returns an access token. Unknown username
// and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}

	user, err := s.users.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrInvalidCredentials
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, appErrors.ErrInvalidCredentials
	}

	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create access token")
	}

	return &models.LoginResponse{
		AccessToken: accessToken,
		ExpiresIn:   int64(s.config.TokenExpiry.Seconds()),
		IssuedAt:    time.Now().UTC(),
		User: models.UserInfo{
			ID:        user.ID,
			Username:  user.Username,
			Role:      user.Role,
			StudentID: user.StudentID,
			TeacherID: user.TeacherID,
		},
	}, nil
}

// ValidateToken parses and validates an access token returning the claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.TokenSecret), nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}

	return claims, nil
}

func (s *AuthService) generateAccessToken(user *models.User) (string, error) {
	issuedAt := time.Now().UTC()
	claims := &models.JWTClaims{
		UserID:    user.ID,
		Username:  user.Username,
		Role:      user.Role,
		StudentID: user.StudentID,
		TeacherID: user.TeacherID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.config.TokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.TokenSecret))
}
