package command

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ykvlv/medication-bot/internal/domain"
	"github.com/ykvlv/medication-bot/internal/metrics"
)

// Reminders is the state machine as seen by the interpreter.
type Reminders interface {
	SetTime(ctx context.Context, userID, raw string) (domain.TimeOfDay, error)
	Acknowledge(ctx context.Context, userID string) bool
	Status(userID string) (domain.UserReminder, bool)
	NextFire(r domain.UserReminder) (time.Time, bool)
	Location() *time.Location
}

// Replier answers an inbound event once through its reply token.
type Replier interface {
	Reply(ctx context.Context, replyToken string, msg domain.Message) error
}

// MenuLinker shows or hides the platform menu for a user.
type MenuLinker interface {
	ShowMenu(ctx context.Context, userID string) error
	HideMenu(ctx context.Context, userID string) error
}

// Interpreter turns inbound events into state machine calls and replies.
type Interpreter struct {
	reminders Reminders
	replier   Replier
	menu      MenuLinker
	kw        Keywords
	log       *zap.Logger
}

// NewInterpreter creates an Interpreter. menu may be nil when the platform
// has no menu to link.
func NewInterpreter(reminders Reminders, replier Replier, menu MenuLinker, kw Keywords, log *zap.Logger) *Interpreter {
	return &Interpreter{reminders: reminders, replier: replier, menu: menu, kw: kw, log: log}
}

// HandleBatch processes every event of one delivery concurrently and waits
// for all of them. A failing event is logged and never affects its siblings.
func (i *Interpreter) HandleBatch(ctx context.Context, events []domain.Event) {
	var wg sync.WaitGroup
	for _, ev := range events {
		wg.Add(1)
		go func(ev domain.Event) {
			defer wg.Done()
			if err := i.safeHandle(ctx, ev); err != nil {
				i.logFailure(ev, err)
			}
		}(ev)
	}
	wg.Wait()
}

func (i *Interpreter) safeHandle(ctx context.Context, ev domain.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic handling event: %v", r)
		}
	}()
	return i.Handle(ctx, ev)
}

func (i *Interpreter) logFailure(ev domain.Event, err error) {
	fields := []zap.Field{zap.Error(err), zap.String("userID", ev.UserID)}
	switch {
	case errors.Is(err, domain.ErrProtocol):
		metrics.IncEvent("skipped")
		i.log.Warn("malformed event skipped", fields...)
	case errors.Is(err, domain.ErrTransport):
		i.log.Error("reply failed", fields...)
	default:
		i.log.Error("event handling failed", fields...)
	}
}

// Handle processes one event. Non-message and non-text events are ignored.
func (i *Interpreter) Handle(ctx context.Context, ev domain.Event) error {
	if ev.Type != domain.EventMessage || !ev.IsText {
		metrics.IncEvent("ignored")
		return nil
	}
	if err := ev.Validate(); err != nil {
		return err
	}

	intent := i.kw.Parse(ev.Text)
	metrics.IncEvent(intent.Kind.String())

	switch intent.Kind {
	case ShowMenu, HideMenu:
		return i.handleMenu(ctx, ev, intent.Kind)
	default:
		return i.reply(ctx, ev, i.dispatch(ctx, ev.UserID, intent))
	}
}

func (i *Interpreter) dispatch(ctx context.Context, userID string, intent Intent) domain.Message {
	switch intent.Kind {
	case Acknowledge:
		if i.reminders.Acknowledge(ctx, userID) {
			return domain.Text(ackedText)
		}
		return domain.Text(neutralAckText)

	case RequestTimeSetup:
		return domain.Text(i.kw.setupPromptText())

	case SetTime:
		at, err := i.reminders.SetTime(ctx, userID, intent.Arg)
		if err != nil {
			i.log.Info("invalid time rejected", zap.String("userID", userID), zap.String("raw", intent.Arg))
			return domain.Text(i.kw.formatErrorText())
		}
		return domain.Text(timeSetText(at))

	case Status:
		r, ok := i.reminders.Status(userID)
		if !ok {
			return domain.Text(notConfigured + "\n" + i.kw.setupPromptText())
		}
		next, hasNext := i.reminders.NextFire(r)
		return domain.Text(i.kw.statusText(r, next, hasNext, i.reminders.Location()))

	default:
		return domain.Text(i.kw.usageText(i.menu != nil))
	}
}

func (i *Interpreter) handleMenu(ctx context.Context, ev domain.Event, kind Kind) error {
	if i.menu == nil {
		return i.reply(ctx, ev, domain.Text(menuUnavailable))
	}

	text, link := showMenuText, i.menu.ShowMenu
	if kind == HideMenu {
		text, link = hideMenuText, i.menu.HideMenu
	}
	if err := i.reply(ctx, ev, domain.Text(text)); err != nil {
		return err
	}
	return domain.Transport(kind.String(), link(ctx, ev.UserID))
}

func (i *Interpreter) reply(ctx context.Context, ev domain.Event, msg domain.Message) error {
	err := domain.Transport("reply", i.replier.Reply(ctx, ev.ReplyToken, msg))
	metrics.IncReply(err == nil)
	return err
}
