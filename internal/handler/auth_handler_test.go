package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/classtrack/classtrack-api/internal/models"
)

func newAuthRouter(user *models.User) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewAuthHandler(newTestAuthService(user))
	r := gin.New()
	r.POST("/auth/register", handler.Register)
	r.POST("/auth/login", handler.Login)
	return r
}

func TestAuthRegister(t *testing.T) {
	r := newAuthRouter(nil)

	body := `{"username":"jperez","password":"secret123","role":"STUDENT","student_id":"S-001"}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	var envelope struct {
		Data models.UserInfo `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "jperez", envelope.Data.Username)
	assert.Equal(t, models.RoleStudent, envelope.Data.Role)
}

func TestAuthRegisterMalformedPayload(t *testing.T) {
	r := newAuthRouter(nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthLogin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.DefaultCost)
	require.NoError(t, err)
	r := newAuthRouter(&models.User{ID: "u1", Username: "jperez", PasswordHash: string(hash), Role: models.RoleStudent})

	body := `{"username":"jperez","password":"secret123"}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope struct {
		Data models.LoginResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.NotEmpty(t, envelope.Data.AccessToken)
	assert.Equal(t, "jperez", envelope.Data.User.Username)
}

func TestAuthLoginWrongPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.DefaultCost)
	require.NoError(t, err)
	r := newAuthRouter(&models.User{ID: "u1", Username: "jperez", PasswordHash: string(hash), Role: models.RoleStudent})

	body := `{"username":"jperez","password":"wrong"}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
