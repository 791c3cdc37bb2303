package dto

import "time"

type CreateAdminNotificationRequest struct {
	Title     string                 `json:"title" validate:"required,max=200"`
	Message   string                 `json:"message" validate:"required,max=2000"`
	Priority  string                 `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	ExpiresAt *time.Time             `json:"expires_at,omitempty"`
}

type UnreadCountResponse struct {
	Count int64 `json:"count"`
}

type SetActiveRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}
