package handlers

import (
	"github.com/dimitrije/admin-dashboard-api/internal/middleware"
	"github.com/dimitrije/admin-dashboard-api/internal/models"
	"github.com/dimitrije/admin-dashboard-api/internal/permissions"
	"github.com/dimitrije/admin-dashboard-api/pkg/dto"
	"github.com/m1z23r/drift/pkg/drift"
)

type NotificationHandler struct {
	notificationService NotificationServiceInterface
}

func NewNotificationHandler(notificationService NotificationServiceInterface) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

func (h *NotificationHandler) List(c *drift.Context) {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		c.Unauthorized("not authenticated")
		return
	}

	list, err := h.notificationService.ListByUser(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err, "failed to list notifications")
		return
	}

	unread := 0
	for _, n := range list {
		if !n.IsRead {
			unread++
		}
	}

	_ = c.JSON(200, dto.NotificationListResponse{Notifications: list, UnreadCount: unread})
}

// Create addresses the caller unless user_id names someone else, which
// takes canManageUsers.
func (h *NotificationHandler) Create(c *drift.Context) {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		c.Unauthorized("not authenticated")
		return
	}

	var req dto.CreateNotificationRequest
	if !bindAndValidate(c, &req) {
		return
	}

	recipient := user.ID
	if req.UserID != nil && *req.UserID != user.ID {
		if !permissions.HasPermission(user, permissions.ManageUsers) {
			c.Forbidden("insufficient permissions")
			return
		}
		recipient = *req.UserID
	}

	n, err := h.notificationService.Insert(c.Request.Context(), models.NewNotification{
		UserID:  recipient,
		Title:   req.Title,
		Message: req.Message,
		Type:    req.Type,
	})
	if err != nil {
		respondError(c, err, "failed to create notification")
		return
	}

	_ = c.JSON(201, n)
}

func (h *NotificationHandler) MarkAsRead(c *drift.Context) {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		c.Unauthorized("not authenticated")
		return
	}

	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	n, err := h.notificationService.MarkAsRead(c.Request.Context(), user.ID, id)
	if err != nil {
		respondError(c, err, "failed to mark notification as read")
		return
	}

	_ = c.JSON(200, n)
}

func (h *NotificationHandler) MarkAllAsRead(c *drift.Context) {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		c.Unauthorized("not authenticated")
		return
	}

	updated, err := h.notificationService.MarkAllAsRead(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err, "failed to mark notifications as read")
		return
	}

	_ = c.JSON(200, dto.MarkAllReadResponse{Updated: updated})
}

func (h *NotificationHandler) Delete(c *drift.Context) {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		c.Unauthorized("not authenticated")
		return
	}

	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.notificationService.Delete(c.Request.Context(), user, id); err != nil {
		respondError(c, err, "failed to delete notification")
		return
	}

	_ = c.JSON(200, map[string]string{"message": "notification deleted"})
}
