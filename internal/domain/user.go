package domain

import "time"

// State is the lifecycle position of a user's reminder.
type State int

const (
	StateIdle State = iota
	StateArmed
	StateAwaitingAck
)

func (s State) String() string {
	switch s {
	case StateArmed:
		return "armed"
	case StateAwaitingAck:
		return "awaiting_ack"
	default:
		return "idle"
	}
}

// TimerHandle identifies one scheduled job. Zero is never issued.
type TimerHandle uint64

// TimerKind tags which job, if any, a reminder currently owns.
type TimerKind int

const (
	NoTimer TimerKind = iota
	DailyArmed
	EscalatingAck
)

// Timer is the single outstanding job of a reminder.
type Timer struct {
	Kind   TimerKind
	Handle TimerHandle
}

// UserReminder is the per-user reminder record.
type UserReminder struct {
	UserID         string
	ScheduledTime  TimeOfDay
	Timer          Timer
	NotifiedAt     *time.Time // first notification of the current cycle
	AcknowledgedAt *time.Time
	Escalations    int // hourly re-sends in the current cycle
}

// State is derived from the timer tag so that it cannot disagree with it.
func (r *UserReminder) State() State {
	switch r.Timer.Kind {
	case DailyArmed:
		return StateArmed
	case EscalatingAck:
		return StateAwaitingAck
	default:
		return StateIdle
	}
}

// Owns reports whether h is the reminder's live timer of the given kind.
func (r *UserReminder) Owns(kind TimerKind, h TimerHandle) bool {
	return h != 0 && r.Timer.Kind == kind && r.Timer.Handle == h
}
