package dto

import (
	"github.com/dimitrije/admin-dashboard-api/internal/models"
	"github.com/google/uuid"
)

// CreateNotificationRequest addresses the caller when UserID is omitted.
type CreateNotificationRequest struct {
	UserID  *uuid.UUID              `json:"user_id"`
	Title   string                  `json:"title" validate:"required,max=255"`
	Message string                  `json:"message" validate:"required,max=5000"`
	Type    models.NotificationType `json:"type" validate:"omitempty,oneof=info success warning error"`
}

type NotificationListResponse struct {
	Notifications []models.Notification `json:"notifications"`
	UnreadCount   int                   `json:"unread_count"`
}

type MarkAllReadResponse struct {
	Updated int `json:"updated"`
}
