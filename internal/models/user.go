package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is the account record every other table points at.
type User struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string         `gorm:"size:150;not null" json:"name"`
	Email       string         `gorm:"not null;size:255;uniqueIndex" json:"email"`
	Password    string         `gorm:"not null" json:"-"`
	Role        string         `gorm:"size:20;default:'user'" json:"role"`
	IsActive    bool           `gorm:"not null;default:true" json:"is_active"`
	LastLoginAt *time.Time     `json:"last_login_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	Profile     *Profile       `gorm:"foreignKey:UserID" json:"profile,omitempty"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

const (
	AgeGroupYoungKids = "young_kids"
	AgeGroupTeens     = "teens"
	AgeGroupAdults    = "adults"
)

// Profile holds learner preferences. One row per user.
type Profile struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID           uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	AgeGroup         string    `gorm:"size:20;not null;default:'adults'" json:"age_group"`
	NativeLanguage   string    `gorm:"size:50" json:"native_language"`
	TargetLanguage   string    `gorm:"size:50;default:'en'" json:"target_language"`
	DailyGoalMinutes int       `gorm:"default:15" json:"daily_goal_minutes"`
	Avatar           string    `gorm:"size:255" json:"avatar"`
	Bio              string    `gorm:"size:500" json:"bio"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
