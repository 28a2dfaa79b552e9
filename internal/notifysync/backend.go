package notifysync

import (
	"context"

	"github.com/dimitrije/admin-dashboard-api/internal/models"
	"github.com/dimitrije/admin-dashboard-api/internal/realtime"
	"github.com/google/uuid"
)

// NotificationRepository is the persistence side of the backend.
type NotificationRepository interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Notification, error)
	MarkAsRead(ctx context.Context, userID, id uuid.UUID) (*models.Notification, error)
	Insert(ctx context.Context, n models.NewNotification) (*models.Notification, error)
}

// Feed opens live change streams.
type Feed interface {
	Subscribe(userID uuid.UUID) *realtime.Subscription
}

// FeedBackend joins the notification repository with the realtime hub.
type FeedBackend struct {
	repo NotificationRepository
	feed Feed
}

func NewFeedBackend(repo NotificationRepository, feed Feed) *FeedBackend {
	return &FeedBackend{repo: repo, feed: feed}
}

func (b *FeedBackend) GetNotifications(ctx context.Context, userID uuid.UUID) ([]models.Notification, error) {
	return b.repo.ListByUser(ctx, userID)
}

func (b *FeedBackend) MarkAsRead(ctx context.Context, userID, id uuid.UUID) error {
	_, err := b.repo.MarkAsRead(ctx, userID, id)
	return err
}

func (b *FeedBackend) Insert(ctx context.Context, n models.NewNotification) error {
	_, err := b.repo.Insert(ctx, n)
	return err
}

func (b *FeedBackend) Subscribe(userID uuid.UUID) Subscription {
	return b.feed.Subscribe(userID)
}
