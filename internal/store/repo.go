package store

import (
	"context"
	"time"

	"github.com/ykvlv/medication-bot/internal/domain"
)

// Journal records outbound notifications and acknowledgments.
// It is an audit trail only; reminder state is never rebuilt from it.
type Journal interface {
	Record(ctx context.Context, d domain.Delivery) error
	Recent(ctx context.Context, userID string, limit int) ([]domain.Delivery, error)
	CountSince(ctx context.Context, userID string, kind domain.NotificationKind, since time.Time) (int, error)
	Close() error
}
