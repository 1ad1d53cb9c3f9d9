package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ykvlv/medication-bot/internal/domain"
)

// Reminders is the read side of the state machine.
type Reminders interface {
	List() []domain.UserReminder
	Status(userID string) (domain.UserReminder, bool)
	NextFire(r domain.UserReminder) (time.Time, bool)
}

// Deliveries is the read side of the delivery journal.
type Deliveries interface {
	Recent(ctx context.Context, userID string, limit int) ([]domain.Delivery, error)
	CountSince(ctx context.Context, userID string, kind domain.NotificationKind, since time.Time) (int, error)
}

// Server exposes health, metrics and read-only reminder inspection.
type Server struct {
	reminders  Reminders
	deliveries Deliveries // nil when the journal is disabled
	loc        *time.Location
	log        *zap.Logger
	now        func() time.Time
}

func NewServer(reminders Reminders, deliveries Deliveries, loc *time.Location, log *zap.Logger) *Server {
	return &Server{reminders: reminders, deliveries: deliveries, loc: loc, log: log, now: time.Now}
}

// Register mounts all routes on r.
func (s *Server) Register(r chi.Router) {
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Handle("/metrics", promhttp.Handler())
	r.Route("/api/v1/reminders", func(r chi.Router) {
		r.Get("/", s.listReminders)
		r.Get("/{userID}", s.getReminder)
		r.Get("/{userID}/deliveries", s.listDeliveries)
	})
}

type Reminder struct {
	UserID         string     `json:"user_id"`
	ScheduledTime  string     `json:"scheduled_time"`
	State          string     `json:"state"`
	NextFire       *time.Time `json:"next_fire,omitempty"`
	NotifiedAt     *time.Time `json:"notified_at,omitempty"`
	AcknowledgedAt *time.Time `json:"acknowledged_at,omitempty"`
	Escalations    int        `json:"escalations"`
}

type Delivery struct {
	Kind      string    `json:"kind"`
	Delivered bool      `json:"delivered"`
	Error     string    `json:"error,omitempty"`
	At        time.Time `json:"at"`
}

func (s *Server) toReminder(r domain.UserReminder) Reminder {
	out := Reminder{
		UserID:         r.UserID,
		ScheduledTime:  r.ScheduledTime.String(),
		State:          r.State().String(),
		NotifiedAt:     r.NotifiedAt,
		AcknowledgedAt: r.AcknowledgedAt,
		Escalations:    r.Escalations,
	}
	if next, ok := s.reminders.NextFire(r); ok {
		next = next.In(s.loc)
		out.NextFire = &next
	}
	return out
}

func (s *Server) listReminders(w http.ResponseWriter, _ *http.Request) {
	list := s.reminders.List()
	items := make([]Reminder, 0, len(list))
	for _, r := range list {
		items = append(items, s.toReminder(r))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) getReminder(w http.ResponseWriter, r *http.Request) {
	rem, ok := s.reminders.Status(chi.URLParam(r, "userID"))
	if !ok {
		writeError(w, http.StatusNotFound, "reminder not found")
		return
	}
	writeJSON(w, http.StatusOK, s.toReminder(rem))
}

func (s *Server) listDeliveries(w http.ResponseWriter, r *http.Request) {
	if s.deliveries == nil {
		writeError(w, http.StatusServiceUnavailable, "delivery journal disabled")
		return
	}
	userID := chi.URLParam(r, "userID")

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 200 {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 200")
			return
		}
		limit = n
	}

	ctx := r.Context()
	recent, err := s.deliveries.Recent(ctx, userID, limit)
	if err != nil {
		s.log.Error("journal read failed", zap.Error(err), zap.String("userID", userID))
		writeError(w, http.StatusInternalServerError, "journal read failed")
		return
	}

	now := s.now().In(s.loc)
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
	today, err := s.deliveries.CountSince(ctx, userID, domain.NotifyEscalation, dayStart)
	if err != nil {
		s.log.Error("journal count failed", zap.Error(err), zap.String("userID", userID))
		writeError(w, http.StatusInternalServerError, "journal read failed")
		return
	}

	items := make([]Delivery, 0, len(recent))
	for _, d := range recent {
		items = append(items, Delivery{Kind: string(d.Kind), Delivered: d.Delivered, Error: d.Error, At: d.At.In(s.loc)})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items":             items,
		"escalations_today": today,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
