package reminder

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ykvlv/medication-bot/internal/domain"
	"github.com/ykvlv/medication-bot/internal/notify"
	"github.com/ykvlv/medication-bot/internal/scheduler"
	"github.com/ykvlv/medication-bot/internal/store"
)

// Scheduler is the timer capability the machine programs.
type Scheduler interface {
	ScheduleDaily(at domain.TimeOfDay, fn scheduler.Func) domain.TimerHandle
	ScheduleHourly(fn scheduler.Func) domain.TimerHandle
	Cancel(h domain.TimerHandle)
}

// Notifier delivers pushes and journals acknowledgments.
type Notifier interface {
	Send(ctx context.Context, userID string, kind domain.NotificationKind, msg domain.Message) notify.Outcome
	Record(ctx context.Context, d domain.Delivery)
}

// Config holds machine settings.
type Config struct {
	AckKeyword string
	Location   *time.Location
}

// Machine runs the per-user lifecycle Idle -> Armed -> AwaitingAck -> Armed.
// Every transition happens under the user's store lock, and the timer tag
// in the reminder is the only owner of the user's single live job.
type Machine struct {
	store      *store.Memory
	sched      Scheduler
	notifier   Notifier
	log        *zap.Logger
	ackKeyword string
	loc        *time.Location
	now        func() time.Time
}

// New creates a Machine.
func New(st *store.Memory, sched Scheduler, notifier Notifier, log *zap.Logger, cfg Config) *Machine {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Machine{
		store:      st,
		sched:      sched,
		notifier:   notifier,
		log:        log,
		ackKeyword: cfg.AckKeyword,
		loc:        loc,
		now:        time.Now,
	}
}

// SetTime validates raw and arms a daily trigger at that time, discarding
// whatever timer the user had. Invalid input returns a validation error and
// leaves the store untouched.
func (m *Machine) SetTime(ctx context.Context, userID, raw string) (domain.TimeOfDay, error) {
	at, err := domain.ParseTimeOfDay(raw)
	if err != nil {
		return domain.TimeOfDay{}, err
	}

	var prev domain.State
	m.store.Update(userID, true, func(r *domain.UserReminder) {
		prev = r.State()
		m.cancel(r)
		r.ScheduledTime = at
		r.NotifiedAt = nil
		r.Escalations = 0
		m.armDaily(userID, r)
	})

	m.log.Info("reminder armed",
		zap.String("userID", userID),
		zap.Stringer("at", at),
		zap.Stringer("prev", prev),
	)
	return at, nil
}

// Acknowledge stops the escalation and re-arms the daily trigger.
// It reports false, and changes nothing, unless the user was awaiting an ack.
func (m *Machine) Acknowledge(ctx context.Context, userID string) bool {
	acked := false
	m.store.Update(userID, false, func(r *domain.UserReminder) {
		if r.State() != domain.StateAwaitingAck {
			return
		}
		m.cancel(r)
		now := m.now()
		r.AcknowledgedAt = &now
		r.Escalations = 0
		m.armDaily(userID, r)
		acked = true
	})
	if !acked {
		return false
	}

	m.log.Info("reminder acknowledged", zap.String("userID", userID))
	m.notifier.Record(ctx, domain.Delivery{UserID: userID, Kind: domain.NotifyAck, Delivered: true})
	return true
}

// Status returns a copy of the user's reminder.
func (m *Machine) Status(userID string) (domain.UserReminder, bool) {
	return m.store.Get(userID)
}

// List returns copies of all reminders ordered by user id.
func (m *Machine) List() []domain.UserReminder {
	return m.store.List()
}

// NextFire returns when r's live timer will fire next.
func (m *Machine) NextFire(r domain.UserReminder) (time.Time, bool) {
	switch r.State() {
	case domain.StateArmed:
		return domain.NextDaily(m.now(), r.ScheduledTime, m.loc), true
	case domain.StateAwaitingAck:
		return domain.NextHourBoundary(m.now(), m.loc), true
	default:
		return time.Time{}, false
	}
}

// Location returns the fixed zone reminders are evaluated in.
func (m *Machine) Location() *time.Location { return m.loc }

func (m *Machine) cancel(r *domain.UserReminder) {
	if r.Timer.Kind != domain.NoTimer {
		m.sched.Cancel(r.Timer.Handle)
	}
	r.Timer = domain.Timer{}
}

func (m *Machine) armDaily(userID string, r *domain.UserReminder) {
	h := m.sched.ScheduleDaily(r.ScheduledTime, func(ctx context.Context, h domain.TimerHandle) {
		m.fireDaily(ctx, userID, h)
	})
	r.Timer = domain.Timer{Kind: domain.DailyArmed, Handle: h}
}

// fireDaily moves an armed user to AwaitingAck. A push failure does not stop
// the transition; the hourly escalation then acts as the retry.
func (m *Machine) fireDaily(ctx context.Context, userID string, h domain.TimerHandle) {
	m.store.Update(userID, false, func(r *domain.UserReminder) {
		if !r.Owns(domain.DailyArmed, h) {
			m.log.Debug("stale daily trigger ignored", zap.String("userID", userID), zap.Uint64("handle", uint64(h)))
			return
		}
		m.cancel(r)
		eh := m.sched.ScheduleHourly(func(ctx context.Context, h domain.TimerHandle) {
			m.fireEscalation(ctx, userID, h)
		})
		r.Timer = domain.Timer{Kind: domain.EscalatingAck, Handle: eh}
		now := m.now()
		r.NotifiedAt = &now
		r.Escalations = 0

		m.notifier.Send(ctx, userID, domain.NotifyDaily, m.notification())
	})
}

func (m *Machine) fireEscalation(ctx context.Context, userID string, h domain.TimerHandle) {
	m.store.Update(userID, false, func(r *domain.UserReminder) {
		if !r.Owns(domain.EscalatingAck, h) {
			m.log.Debug("stale escalation ignored", zap.String("userID", userID), zap.Uint64("handle", uint64(h)))
			return
		}
		r.Escalations++
		m.notifier.Send(ctx, userID, domain.NotifyEscalation, m.notification())
	})
}
