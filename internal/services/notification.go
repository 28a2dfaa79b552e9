package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dimitrije/admin-dashboard-api/internal/database"
	"github.com/dimitrije/admin-dashboard-api/internal/models"
	"github.com/dimitrije/admin-dashboard-api/internal/permissions"
	"github.com/dimitrije/admin-dashboard-api/internal/realtime"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const notificationColumns = `id, user_id, title, message, type, is_read, created_at`

// NotificationService persists notifications and publishes a change event
// after every successful write.
type NotificationService struct {
	db        *database.DB
	publisher realtime.Publisher
	logger    *zap.Logger
}

func NewNotificationService(db *database.DB, publisher realtime.Publisher, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{db: db, publisher: publisher, logger: logger}
}

func scanNotification(row pgx.Row) (*models.Notification, error) {
	var n models.Notification
	var kind string
	err := row.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &kind, &n.IsRead, &n.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	n.Type = models.NotificationType(kind)
	return &n, nil
}

func (s *NotificationService) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Notification, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT `+notificationColumns+`
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	notifications := []models.Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, *n)
	}
	return notifications, rows.Err()
}

func (s *NotificationService) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Notification, error) {
	return scanNotification(s.db.Pool.QueryRow(ctx, `
		SELECT `+notificationColumns+`
		FROM notifications
		WHERE id = $1 AND user_id = $2
	`, id, userID))
}

func (s *NotificationService) MarkAsRead(ctx context.Context, userID, id uuid.UUID) (*models.Notification, error) {
	n, err := scanNotification(s.db.Pool.QueryRow(ctx, `
		UPDATE notifications SET is_read = TRUE
		WHERE id = $1 AND user_id = $2
		RETURNING `+notificationColumns,
		id, userID))
	if err != nil {
		return nil, err
	}

	s.publish(ctx, realtime.KindUpdate, *n)
	return n, nil
}

// MarkAllAsRead flips every unread notification of userID and returns how
// many changed.
func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int, error) {
	rows, err := s.db.Pool.Query(ctx, `
		UPDATE notifications SET is_read = TRUE
		WHERE user_id = $1 AND is_read = FALSE
		RETURNING `+notificationColumns,
		userID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications as read: %w", err)
	}
	defer rows.Close()

	var updated []models.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return 0, err
		}
		updated = append(updated, *n)
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	for _, n := range updated {
		s.publish(ctx, realtime.KindUpdate, n)
	}
	return len(updated), nil
}

// Insert stores a new unread notification. An empty type defaults to info.
func (s *NotificationService) Insert(ctx context.Context, in models.NewNotification) (*models.Notification, error) {
	if in.Type == "" {
		in.Type = models.NotificationInfo
	}
	if !in.Type.Valid() {
		return nil, ErrInvalidType
	}

	n, err := scanNotification(s.db.Pool.QueryRow(ctx, `
		INSERT INTO notifications (user_id, title, message, type, is_read)
		VALUES ($1, $2, $3, $4, FALSE)
		RETURNING `+notificationColumns,
		in.UserID, in.Title, in.Message, string(in.Type)))
	if err != nil {
		return nil, fmt.Errorf("failed to insert notification: %w", err)
	}

	s.publish(ctx, realtime.KindInsert, *n)
	return n, nil
}

// Delete removes any user's notification on behalf of actor.
func (s *NotificationService) Delete(ctx context.Context, actor *models.User, id uuid.UUID) error {
	if !permissions.HasPermission(actor, permissions.DeleteNotifications) {
		return ErrForbidden
	}

	n, err := scanNotification(s.db.Pool.QueryRow(ctx, `
		DELETE FROM notifications WHERE id = $1
		RETURNING `+notificationColumns,
		id))
	if err != nil {
		return err
	}

	s.publish(ctx, realtime.KindDelete, *n)
	return nil
}

// publish failures are logged only: the write already happened.
func (s *NotificationService) publish(ctx context.Context, kind realtime.Kind, n models.Notification) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, realtime.Event{Kind: kind, Notification: n}); err != nil {
		s.logger.Warn("failed to publish notification change",
			zap.String("kind", string(kind)),
			zap.String("notification_id", n.ID.String()),
			zap.Error(err),
		)
	}
}
