package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTClaims carries the authenticated identity inside access tokens. The
// linked student/teacher id travels with the token so self-scoped queries
// never depend on client-supplied identifiers.
type JWTClaims struct {
	UserID    string   `json:"user_id"`
	Username  string   `json:"username"`
	Role      UserRole `json:"role"`
	StudentID *string  `json:"student_id,omitempty"`
	TeacherID *string  `json:"teacher_id,omitempty"`
	jwt.RegisteredClaims
}

// LoginRequest is the credential payload for authentication.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse returns the issued token and the account profile.
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresIn   int64     `json:"expires_in"`
	IssuedAt    time.Time `json:"issued_at"`
	User        UserInfo  `json:"user"`
}

// UserInfo is the public projection of a user account.
type UserInfo struct {
	ID        string   `json:"id"`
	Username  string   `json:"username"`
	Role      UserRole `json:"role"`
	StudentID *string  `json:"student_id,omitempty"`
	TeacherID *string  `json:"teacher_id,omitempty"`
}
