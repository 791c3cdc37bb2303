package dto

import (
	"time"

	"github.com/google/uuid"
)

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=150"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=128"`
	AgeGroup string `json:"age_group,omitempty" validate:"omitempty,oneof=young_kids teens adults"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type UpdateProfileRequest struct {
	Name             *string `json:"name,omitempty" validate:"omitempty,min=1,max=150"`
	AgeGroup         *string `json:"age_group,omitempty" validate:"omitempty,oneof=young_kids teens adults"`
	NativeLanguage   *string `json:"native_language,omitempty" validate:"omitempty,max=50"`
	TargetLanguage   *string `json:"target_language,omitempty" validate:"omitempty,max=50"`
	DailyGoalMinutes *int    `json:"daily_goal_minutes,omitempty" validate:"omitempty,min=5,max=240"`
	Avatar           *string `json:"avatar,omitempty" validate:"omitempty,max=255"`
	Bio              *string `json:"bio,omitempty" validate:"omitempty,max=500"`
}

// AuthResponse is the envelope returned by register and login.
type AuthResponse struct {
	Message      string       `json:"message"`
	User         UserResponse `json:"user"`
	Token        string       `json:"token"`
	RefreshToken string       `json:"refresh_token"`
}

type UserResponse struct {
	ID          uuid.UUID        `json:"id"`
	Name        string           `json:"name"`
	Email       string           `json:"email"`
	Role        string           `json:"role"`
	IsActive    bool             `json:"is_active"`
	LastLoginAt *time.Time       `json:"last_login_at,omitempty"`
	Profile     *ProfileResponse `json:"profile,omitempty"`
}

type ProfileResponse struct {
	AgeGroup         string `json:"age_group"`
	NativeLanguage   string `json:"native_language"`
	TargetLanguage   string `json:"target_language"`
	DailyGoalMinutes int    `json:"daily_goal_minutes"`
	Avatar           string `json:"avatar"`
	Bio              string `json:"bio"`
}

// ErrorResponse is the error envelope. Errors carries field-level validation messages.
type ErrorResponse struct {
	Error   bool                `json:"error"`
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type HealthResponse struct {
	Status     string `json:"status"`
	Timestamp  string `json:"timestamp"`
	DB         string `json:"db"`
	Categories int    `json:"categories"`
}
