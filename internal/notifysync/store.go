// Package notifysync keeps one signed-in user's notification list consistent
// between an initial bulk load and the live change feed.
package notifysync

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/dimitrije/admin-dashboard-api/internal/models"
	"github.com/dimitrije/admin-dashboard-api/internal/realtime"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrNotSignedIn = errors.New("no signed-in user")

type State int

const (
	StateUninitialized State = iota
	StateLoading
	StateSynced
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateSynced:
		return "synced"
	}
	return "uninitialized"
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(text []byte) error {
	switch string(text) {
	case "uninitialized":
		*s = StateUninitialized
	case "loading":
		*s = StateLoading
	case "synced":
		*s = StateSynced
	default:
		return fmt.Errorf("unknown store state %q", text)
	}
	return nil
}

// Subscription is a live change stream for one user. Events must be closed
// by Cancel.
type Subscription interface {
	Events() <-chan realtime.Event
	Cancel()
}

// Backend is the remote side of the store.
type Backend interface {
	// GetNotifications returns userID's notifications, newest first.
	GetNotifications(ctx context.Context, userID uuid.UUID) ([]models.Notification, error)
	MarkAsRead(ctx context.Context, userID, id uuid.UUID) error
	Insert(ctx context.Context, n models.NewNotification) error
	Subscribe(userID uuid.UUID) Subscription
}

// Snapshot is the store's state at one point in time. Seq grows with every
// change.
type Snapshot struct {
	Seq           uint64                `json:"seq"`
	UserID        uuid.UUID             `json:"user_id"`
	State         State                 `json:"state"`
	Notifications []models.Notification `json:"notifications"`
	UnreadCount   int                   `json:"unread_count"`
}

type Option func(*Store)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithOnChange registers fn to be called after changes of the store.
// Snapshots reach fn in Seq order and one at a time. A snapshot already
// superseded by a delivered one is skipped, so the last call always carries
// the latest state. fn must not block for long or call back into the
// store's mutating methods.
func WithOnChange(fn func(Snapshot)) Option {
	return func(s *Store) {
		s.onChange = fn
	}
}

type Store struct {
	backend  Backend
	logger   *zap.Logger
	onChange func(Snapshot)

	mu            sync.Mutex
	seq           uint64
	state         State
	userID        uuid.UUID
	generation    uint64
	notifications []models.Notification
	sub           Subscription
	loopDone      chan struct{}

	emitMu  sync.Mutex
	emitted uint64
}

func New(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start signs userID in. Any previous session is torn down first, then the
// live subscription is opened and the bulk load runs. A failed load is
// logged and leaves the store loading with an empty list.
func (s *Store) Start(ctx context.Context, userID uuid.UUID) {
	s.mu.Lock()
	prevDone := s.teardownLocked()
	if userID == uuid.Nil {
		snap := s.changedLocked()
		s.mu.Unlock()
		wait(prevDone)
		s.emit(snap)
		return
	}

	s.generation++
	gen := s.generation
	s.userID = userID
	s.state = StateLoading
	sub := s.backend.Subscribe(userID)
	s.sub = sub
	done := make(chan struct{})
	s.loopDone = done
	snap := s.changedLocked()
	s.mu.Unlock()

	wait(prevDone)
	go s.consume(ctx, gen, userID, sub, done)
	s.emit(snap)

	s.load(ctx, gen, userID)
}

// Stop cancels the subscription and clears the store. Once Stop returns no
// event can modify the store.
func (s *Store) Stop() {
	s.mu.Lock()
	wasActive := s.state != StateUninitialized
	done := s.teardownLocked()
	snap := s.changedLocked()
	s.mu.Unlock()

	wait(done)
	if wasActive {
		s.emit(snap)
	}
}

func (s *Store) teardownLocked() chan struct{} {
	if s.sub != nil {
		s.sub.Cancel()
		s.sub = nil
	}
	s.generation++
	s.state = StateUninitialized
	s.userID = uuid.Nil
	s.notifications = nil

	done := s.loopDone
	s.loopDone = nil
	return done
}

func wait(done chan struct{}) {
	if done != nil {
		<-done
	}
}

func (s *Store) load(ctx context.Context, gen uint64, userID uuid.UUID) {
	list, err := s.backend.GetNotifications(ctx, userID)
	if err != nil {
		s.logger.Error("failed to load notifications",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
		return
	}

	s.mu.Lock()
	if s.generation != gen {
		s.mu.Unlock()
		return
	}
	// Wholesale replace: events applied while loading are superseded.
	s.notifications = slices.Clone(list)
	s.state = StateSynced
	snap := s.changedLocked()
	s.mu.Unlock()

	s.emit(snap)
}

// consume applies feed events until the session ends. A feed that closes
// while the session is still active has lost events, so the store
// resubscribes and reloads.
func (s *Store) consume(ctx context.Context, gen uint64, userID uuid.UUID, sub Subscription, done chan struct{}) {
	defer close(done)
	for {
		for event := range sub.Events() {
			s.apply(gen, event)
		}

		var ok bool
		sub, gen, ok = s.resubscribe(gen)
		if !ok {
			return
		}
		s.load(ctx, gen, userID)
	}
}

func (s *Store) resubscribe(gen uint64) (Subscription, uint64, bool) {
	s.mu.Lock()
	if s.generation != gen {
		s.mu.Unlock()
		return nil, 0, false
	}
	s.logger.Warn("notification feed closed, resyncing",
		zap.String("user_id", s.userID.String()),
	)

	// A load still in flight for the old generation is discarded.
	s.generation++
	gen = s.generation
	sub := s.backend.Subscribe(s.userID)
	s.sub = sub
	s.state = StateLoading
	snap := s.changedLocked()
	s.mu.Unlock()

	s.emit(snap)
	return sub, gen, true
}

func (s *Store) apply(gen uint64, event realtime.Event) {
	s.mu.Lock()
	if s.generation != gen || event.Notification.UserID != s.userID {
		s.mu.Unlock()
		return
	}

	changed := false
	n := event.Notification
	switch event.Kind {
	case realtime.KindInsert:
		if i := s.indexLocked(n.ID); i >= 0 {
			n.IsRead = n.IsRead || s.notifications[i].IsRead
			s.notifications[i] = n
		} else {
			s.notifications = append([]models.Notification{n}, s.notifications...)
		}
		changed = true
	case realtime.KindUpdate:
		if i := s.indexLocked(n.ID); i >= 0 {
			// read never reverts to unread
			n.IsRead = n.IsRead || s.notifications[i].IsRead
			s.notifications[i] = n
			changed = true
		}
	}

	if !changed {
		s.mu.Unlock()
		return
	}
	snap := s.changedLocked()
	s.mu.Unlock()

	s.emit(snap)
}

// MarkAsRead flips the read flag remotely, then locally. When the remote
// update fails the local list is left unchanged.
func (s *Store) MarkAsRead(ctx context.Context, id uuid.UUID) error {
	userID := s.UserID()
	if userID == uuid.Nil {
		return ErrNotSignedIn
	}

	if err := s.backend.MarkAsRead(ctx, userID, id); err != nil {
		s.logger.Error("failed to mark notification as read",
			zap.String("notification_id", id.String()),
			zap.Error(err),
		)
		return fmt.Errorf("failed to mark notification %s as read: %w", id, err)
	}

	s.mu.Lock()
	if s.userID != userID {
		s.mu.Unlock()
		return nil
	}
	i := s.indexLocked(id)
	if i < 0 || s.notifications[i].IsRead {
		s.mu.Unlock()
		return nil
	}
	s.notifications[i].IsRead = true
	snap := s.changedLocked()
	s.mu.Unlock()

	s.emit(snap)
	return nil
}

// MarkAllAsRead marks every unread entry as read and reports the failures.
func (s *Store) MarkAllAsRead(ctx context.Context) error {
	var errs []error
	for _, n := range s.Notifications() {
		if n.IsRead {
			continue
		}
		if err := s.MarkAsRead(ctx, n.ID); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Add inserts a notification remotely. The list is not touched here: the
// subscription's insert event brings the new entry in.
func (s *Store) Add(ctx context.Context, n models.NewNotification) error {
	if s.UserID() == uuid.Nil {
		return ErrNotSignedIn
	}

	if err := s.backend.Insert(ctx, n); err != nil {
		s.logger.Error("failed to add notification",
			zap.String("user_id", n.UserID.String()),
			zap.Error(err),
		)
		return fmt.Errorf("failed to add notification: %w", err)
	}
	return nil
}

func (s *Store) Notifications() []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.notifications)
}

func (s *Store) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unreadLocked()
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Store) UserID() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) changedLocked() Snapshot {
	s.seq++
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	list := slices.Clone(s.notifications)
	if list == nil {
		list = []models.Notification{}
	}
	return Snapshot{
		Seq:           s.seq,
		UserID:        s.userID,
		State:         s.state,
		Notifications: list,
		UnreadCount:   s.unreadLocked(),
	}
}

func (s *Store) unreadLocked() int {
	count := 0
	for _, n := range s.notifications {
		if !n.IsRead {
			count++
		}
	}
	return count
}

func (s *Store) indexLocked(id uuid.UUID) int {
	return slices.IndexFunc(s.notifications, func(n models.Notification) bool {
		return n.ID == id
	})
}

func (s *Store) emit(snap Snapshot) {
	if s.onChange == nil {
		return
	}
	s.emitMu.Lock()
	defer s.emitMu.Unlock()
	if snap.Seq <= s.emitted {
		return
	}
	s.emitted = snap.Seq
	s.onChange(snap)
}
