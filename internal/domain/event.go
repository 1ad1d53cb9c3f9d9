package domain

import "time"

// EventType distinguishes inbound events. Only messages are acted upon.
type EventType string

const (
	EventMessage EventType = "message"
	EventOther   EventType = "other"
)

// Event is one inbound item of a webhook delivery or polling batch.
type Event struct {
	Type       EventType
	UserID     string
	Text       string
	ReplyToken string // usable once
	IsText     bool
}

// Validate rejects message events that cannot be attributed or answered.
func (e Event) Validate() error {
	if e.Type != EventMessage {
		return nil
	}
	if e.UserID == "" {
		return ErrNoUser
	}
	if e.ReplyToken == "" {
		return ErrNoReplyTo
	}
	return nil
}

// Message is an outbound text with optional quick-reply buttons.
// Each quick reply sends its own label back as text.
type Message struct {
	Text         string
	QuickReplies []string
}

// Text builds a plain message.
func Text(s string) Message { return Message{Text: s} }

// NotificationKind labels why a push happened.
type NotificationKind string

const (
	NotifyDaily      NotificationKind = "daily"
	NotifyEscalation NotificationKind = "escalation"
	NotifyAck        NotificationKind = "ack"
)

// Delivery is a journal record of one outbound notification or acknowledgment.
type Delivery struct {
	UserID    string
	Kind      NotificationKind
	Delivered bool
	Error     string
	At        time.Time
}
