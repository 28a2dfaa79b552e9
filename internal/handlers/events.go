package handlers

import (
	"github.com/dimitrije/admin-dashboard-api/internal/middleware"
	"github.com/dimitrije/admin-dashboard-api/internal/notifysync"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	"go.uber.org/zap"
)

const snapshotEvent = "snapshot"

// EventsHandler streams the caller's notification list over SSE. Each
// connection owns a notifysync.Store, so the client receives the full
// reconciled list after the initial load and after every change.
type EventsHandler struct {
	repo   notifysync.NotificationRepository
	feed   FeedInterface
	logger *zap.Logger
}

func NewEventsHandler(repo notifysync.NotificationRepository, feed FeedInterface, logger *zap.Logger) *EventsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventsHandler{repo: repo, feed: feed, logger: logger}
}

func (h *EventsHandler) Stream(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	// Only the latest state matters, so one pending signal is enough.
	changed := make(chan struct{}, 1)
	store := notifysync.New(
		notifysync.NewFeedBackend(h.repo, h.feed),
		notifysync.WithLogger(h.logger),
		notifysync.WithOnChange(func(notifysync.Snapshot) {
			select {
			case changed <- struct{}{}:
			default:
			}
		}),
	)

	ctx := c.Request.Context()
	store.Start(ctx, userID)
	defer store.Stop()

	select {
	case <-changed:
	default:
	}

	sse := c.SSE()
	if err := sse.SendJSON(store.Snapshot(), snapshotEvent, ""); err != nil {
		return
	}

	for {
		select {
		case <-changed:
			if err := sse.SendJSON(store.Snapshot(), snapshotEvent, ""); err != nil {
				h.logger.Debug("sse client gone", zap.String("user_id", userID.String()), zap.Error(err))
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
