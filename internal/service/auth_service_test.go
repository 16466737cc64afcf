package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/classtrack/classtrack-api/internal/models"
	appErrors "github.com/classtrack/classtrack-api/pkg/errors"
)

type mockUserRepo struct {
	userByUsername *models.User
	findErr        error
	usernameTaken  bool
	existsErr      error
	created        *models.User
	createErr      error
}

func (m *mockUserRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.userByUsername, nil
}

func (m *mockUserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	if m.existsErr != nil {
		return false, m.existsErr
	}
	return m.usernameTaken, nil
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	user.ID = "u1"
	m.created = user
	return nil
}

type mockExistsRepo struct {
	exists bool
	err    error
}

func (m *mockExistsRepo) Exists(ctx context.Context, id string) (bool, error) {
	return m.exists, m.err
}

func newAuthService(users *mockUserRepo, students, teachers *mockExistsRepo) *AuthService {
	return NewAuthService(users, students, teachers, validator.New(), zap.NewNop(), AuthConfig{
		TokenSecret: "secret",
		TokenExpiry: time.Hour,
		Issuer:      "classtrack",
	})
}

func TestRegisterStudentSuccess(t *testing.T) {
	users := &mockUserRepo{}
	svc := newAuthService(users, &mockExistsRepo{exists: true}, &mockExistsRepo{})

	studentID := "S-001"
	info, err := svc.Register(context.Background(), RegisterRequest{
		Username:  "jperez",
		Password:  "secret123",
		Role:      models.RoleStudent,
		StudentID: &studentID,
	})
	require.NoError(t, err)
	assert.Equal(t, "jperez", info.Username)
	assert.Equal(t, models.RoleStudent, info.Role)
	require.NotNil(t, info.StudentID)
	assert.Equal(t, "S-001", *info.StudentID)
	assert.Nil(t, info.TeacherID)

	require.NotNil(t, users.created)
	assert.NotEqual(t, "secret123", users.created.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(users.created.PasswordHash), []byte("secret123")))
}

func TestRegisterStudentUnknownLink(t *testing.T) {
	svc := newAuthService(&mockUserRepo{}, &mockExistsRepo{exists: false}, &mockExistsRepo{})

	studentID := "S-404"
	_, err := svc.Register(context.Background(), RegisterRequest{
		Username:  "ghost",
		Password:  "secret123",
		Role:      models.RoleStudent,
		StudentID: &studentID,
	})
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrForeignKey.Code, appErr.Code)
}

func TestRegisterTeacherWithoutLink(t *testing.T) {
	// Teacher accounts must be creatable on an empty database, so the
	// teacher link is optional and stored as NULL when absent.
	users := &mockUserRepo{}
	svc := newAuthService(users, &mockExistsRepo{}, &mockExistsRepo{exists: false})

	info, err := svc.Register(context.Background(), RegisterRequest{
		Username: "ana",
		Password: "secret123",
		Role:     models.RoleTeacher,
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleTeacher, info.Role)
	assert.Nil(t, info.TeacherID)
	assert.Nil(t, info.StudentID)
	require.NotNil(t, users.created)
	assert.Nil(t, users.created.TeacherID)
}

func TestRegisterTeacherWithLink(t *testing.T) {
	users := &mockUserRepo{}
	svc := newAuthService(users, &mockExistsRepo{}, &mockExistsRepo{exists: true})

	teacherID := "t1"
	info, err := svc.Register(context.Background(), RegisterRequest{
		Username:  "mgarcia",
		Password:  "secret123",
		Role:      models.RoleTeacher,
		TeacherID: &teacherID,
	})
	require.NoError(t, err)
	require.NotNil(t, info.TeacherID)
	assert.Equal(t, "t1", *info.TeacherID)
}

func TestRegisterTeacherUnknownLink(t *testing.T) {
	svc := newAuthService(&mockUserRepo{}, &mockExistsRepo{}, &mockExistsRepo{exists: false})

	teacherID := "t-404"
	_, err := svc.Register(context.Background(), RegisterRequest{
		Username:  "mgarcia",
		Password:  "secret123",
		Role:      models.RoleTeacher,
		TeacherID: &teacherID,
	})
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrForeignKey.Code, appErr.Code)
}

func TestRegisterDuplicateUsernamePrecheck(t *testing.T) {
	users := &mockUserRepo{usernameTaken: true}
	svc := newAuthService(users, &mockExistsRepo{exists: true}, &mockExistsRepo{})

	studentID := "S-001"
	_, err := svc.Register(context.Background(), RegisterRequest{
		Username:  "taken",
		Password:  "secret123",
		Role:      models.RoleStudent,
		StudentID: &studentID,
	})
	assert.ErrorIs(t, err, appErrors.ErrDuplicateUsername)
	assert.Nil(t, users.created)
}

func TestRegisterDuplicateUsernameRace(t *testing.T) {
	// The pre-check passes but the insert loses the race: the constraint
	// violation must surface as the same duplicate error.
	users := &mockUserRepo{createErr: appErrors.ErrDuplicateUsername}
	svc := newAuthService(users, &mockExistsRepo{exists: true}, &mockExistsRepo{})

	studentID := "S-001"
	_, err := svc.Register(context.Background(), RegisterRequest{
		Username:  "taken",
		Password:  "secret123",
		Role:      models.RoleStudent,
		StudentID: &studentID,
	})
	assert.ErrorIs(t, err, appErrors.ErrDuplicateUsername)
}

func TestRegisterInvalidRole(t *testing.T) {
	svc := newAuthService(&mockUserRepo{}, &mockExistsRepo{}, &mockExistsRepo{})

	_, err := svc.Register(context.Background(), RegisterRequest{
		Username: "admin",
		Password: "secret123",
		Role:     "ADMIN",
	})
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestLoginSuccess(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.DefaultCost)
	require.NoError(t, err)
	teacherID := "t1"
	users := &mockUserRepo{userByUsername: &models.User{
		ID:           "u1",
		Username:     "mgarcia",
		PasswordHash: string(hash),
		Role:         models.RoleTeacher,
		TeacherID:    &teacherID,
	}}
	svc := newAuthService(users, &mockExistsRepo{}, &mockExistsRepo{})

	res, err := svc.Login(context.Background(), models.LoginRequest{Username: "mgarcia", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, int64(3600), res.ExpiresIn)
	assert.Equal(t, models.RoleTeacher, res.User.Role)

	claims, err := svc.ValidateToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, models.RoleTeacher, claims.Role)
	require.NotNil(t, claims.TeacherID)
	assert.Equal(t, "t1", *claims.TeacherID)
}

func TestLoginUnknownUserAndWrongPasswordLookAlike(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.DefaultCost)
	require.NoError(t, err)

	unknown := newAuthService(&mockUserRepo{findErr: sql.ErrNoRows}, &mockExistsRepo{}, &mockExistsRepo{})
	_, errUnknown := unknown.Login(context.Background(), models.LoginRequest{Username: "ghost", Password: "secret123"})

	wrongPass := newAuthService(&mockUserRepo{userByUsername: &models.User{ID: "u1", Username: "mgarcia", PasswordHash: string(hash), Role: models.RoleTeacher}}, &mockExistsRepo{}, &mockExistsRepo{})
	_, errWrong := wrongPass.Login(context.Background(), models.LoginRequest{Username: "mgarcia", Password: "nope"})

	assert.ErrorIs(t, errUnknown, appErrors.ErrInvalidCredentials)
	assert.ErrorIs(t, errWrong, appErrors.ErrInvalidCredentials)
	assert.Equal(t, appErrors.FromError(errUnknown).Message, appErrors.FromError(errWrong).Message)
}

func TestValidateTokenRejectsTampered(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.DefaultCost)
	require.NoError(t, err)
	users := &mockUserRepo{userByUsername: &models.User{ID: "u1", Username: "mgarcia", PasswordHash: string(hash), Role: models.RoleTeacher}}
	svc := newAuthService(users, &mockExistsRepo{}, &mockExistsRepo{})

	res, err := svc.Login(context.Background(), models.LoginRequest{Username: "mgarcia", Password: "secret123"})
	require.NoError(t, err)

	_, err = svc.ValidateToken(res.AccessToken + "x")
	assert.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErr.Code)
}
