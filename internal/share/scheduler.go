package share

import (
	"context"
	"sync"
	"time"

	"github.com/dkoval/mailshare/internal/logging"
	"github.com/dkoval/mailshare/internal/models"
)

// snapshotPublisher is the slice of Publisher the scheduler drives.
type snapshotPublisher interface {
	Publish(ctx context.Context, conv *models.Conversation) error
}

// Scheduler coalesces change notifications: however many times a
// conversation mutates inside one debounce window, it is published once,
// from its last observed state. The scheduler owns its pending map and
// timer; construct one per process.
type Scheduler struct {
	mu      sync.Mutex
	pending map[string]*models.Conversation
	timer   *time.Timer

	pub    snapshotPublisher
	delay  time.Duration
	logger logging.Logger
}

func NewScheduler(pub snapshotPublisher, delay time.Duration, logger logging.Logger) *Scheduler {
	return &Scheduler{
		pending: make(map[string]*models.Conversation),
		pub:     pub,
		delay:   delay,
		logger:  logger,
	}
}

// OnChange records a mutation of a shared conversation. Last write wins
// within the window. Non-blocking: all slow work happens on the timer
// goroutine, never on the notification-delivery path.
func (s *Scheduler) OnChange(conv *models.Conversation) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending[conv.ID] = conv
	if s.timer == nil {
		s.timer = time.AfterFunc(s.delay, func() {
			s.flush(context.Background())
		})
	}
}

// FlushNow publishes everything currently pending without waiting for
// the timer. Used on graceful shutdown and in tests.
func (s *Scheduler) FlushNow(ctx context.Context) {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.mu.Unlock()

	s.flush(ctx)
}

// flush swaps out the pending map and publishes each collected
// conversation. A failing conversation is logged with its subject and
// never blocks its siblings.
func (s *Scheduler) flush(ctx context.Context) {
	s.mu.Lock()
	batch := s.pending
	s.pending = make(map[string]*models.Conversation)
	s.timer = nil
	s.mu.Unlock()

	if len(batch) == 0 {
		return
	}
	s.logger.Debug(ctx, "flushing pending conversations", "count", len(batch))

	for _, conv := range batch {
		if err := s.pub.Publish(ctx, conv); err != nil {
			s.logger.Error(ctx, "publish failed", "subject", conv.Subject, "conversation", conv.ID, "error", err)
		}
	}
}
