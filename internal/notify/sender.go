package notify

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ykvlv/medication-bot/internal/domain"
	"github.com/ykvlv/medication-bot/internal/metrics"
)

// Pusher is the outbound capability of the messaging platform.
type Pusher interface {
	Push(ctx context.Context, userID string, msg domain.Message) error
}

// Recorder receives one entry per push. store.Journal implements it.
type Recorder interface {
	Record(ctx context.Context, d domain.Delivery) error
}

// Outcome is the result of one Send.
type Outcome struct {
	Delivered bool
	Err       error
}

// Sender pushes notifications. Failures are logged and returned as an
// Outcome; they never panic or propagate to other users.
type Sender struct {
	pusher   Pusher
	recorder Recorder
	log      *zap.Logger
	now      func() time.Time
}

// New creates a Sender. recorder may be nil.
func New(pusher Pusher, recorder Recorder, log *zap.Logger) *Sender {
	return &Sender{pusher: pusher, recorder: recorder, log: log, now: time.Now}
}

// Send performs exactly one push to userID.
func (s *Sender) Send(ctx context.Context, userID string, kind domain.NotificationKind, msg domain.Message) Outcome {
	err := domain.Transport("push", s.pusher.Push(ctx, userID, msg))
	out := Outcome{Delivered: err == nil, Err: err}

	metrics.IncNotification(string(kind), out.Delivered)
	if err != nil {
		s.log.Error("push failed", zap.Error(err), zap.String("userID", userID), zap.String("kind", string(kind)))
	} else {
		s.log.Debug("push sent", zap.String("userID", userID), zap.String("kind", string(kind)))
	}

	d := domain.Delivery{UserID: userID, Kind: kind, Delivered: out.Delivered, At: s.now()}
	if err != nil {
		d.Error = err.Error()
	}
	s.Record(ctx, d)
	return out
}

// Record writes d to the journal, if any. Journal errors are only logged.
func (s *Sender) Record(ctx context.Context, d domain.Delivery) {
	if s.recorder == nil {
		return
	}
	if d.At.IsZero() {
		d.At = s.now()
	}
	if err := s.recorder.Record(ctx, d); err != nil {
		s.log.Warn("journal record failed", zap.Error(err), zap.String("userID", d.UserID))
	}
}
