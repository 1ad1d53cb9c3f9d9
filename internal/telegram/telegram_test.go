package telegram

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/ykvlv/medication-bot/internal/domain"
)

type fakeBot struct {
	mu      sync.Mutex
	sent    []tgbotapi.MessageConfig
	err     error
	updates chan tgbotapi.Update
	stopped bool
}

func (b *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return tgbotapi.Message{}, b.err
	}
	if m, ok := c.(tgbotapi.MessageConfig); ok {
		b.sent = append(b.sent, m)
	}
	return tgbotapi.Message{}, nil
}

func (b *fakeBot) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return b.updates
}

func (b *fakeBot) StopReceivingUpdates() {
	b.mu.Lock()
	b.stopped = true
	b.mu.Unlock()
}

type captureHandler struct {
	mu     sync.Mutex
	events []domain.Event
	seen   chan struct{}
}

func (h *captureHandler) HandleBatch(_ context.Context, events []domain.Event) {
	h.mu.Lock()
	h.events = append(h.events, events...)
	h.mu.Unlock()
	h.seen <- struct{}{}
}

func TestMessenger_PushWithQuickReplies(t *testing.T) {
	bot := &fakeBot{}
	m := NewMessenger(bot, nil)

	err := m.Push(context.Background(), "42", domain.Message{Text: "time", QuickReplies: []string{"飲んだ"}})
	if err != nil {
		t.Fatalf("push: %v", err)
	}
	if len(bot.sent) != 1 {
		t.Fatalf("want 1 message, got %d", len(bot.sent))
	}
	msg := bot.sent[0]
	if msg.ChatID != 42 || msg.Text != "time" {
		t.Fatalf("unexpected message %+v", msg)
	}
	kb, ok := msg.ReplyMarkup.(tgbotapi.ReplyKeyboardMarkup)
	if !ok || !kb.OneTimeKeyboard || kb.Keyboard[0][0].Text != "飲んだ" {
		t.Fatalf("quick reply keyboard expected, got %#v", msg.ReplyMarkup)
	}
}

func TestMessenger_ReplyPlainText(t *testing.T) {
	bot := &fakeBot{}
	m := NewMessenger(bot, nil)

	if err := m.Reply(context.Background(), "-100", domain.Text("ok")); err != nil {
		t.Fatalf("reply: %v", err)
	}
	if bot.sent[0].ChatID != -100 || bot.sent[0].ReplyMarkup != nil {
		t.Fatalf("unexpected message %+v", bot.sent[0])
	}
}

func TestMessenger_BadChatID(t *testing.T) {
	m := NewMessenger(&fakeBot{}, nil)
	err := m.Push(context.Background(), "U123", domain.Text("x"))
	if !errors.Is(err, domain.ErrProtocol) {
		t.Fatalf("want protocol error, got %v", err)
	}
}

func TestMessenger_SendErrorIsReturned(t *testing.T) {
	m := NewMessenger(&fakeBot{err: errors.New("forbidden")}, nil)
	if err := m.Push(context.Background(), "1", domain.Text("x")); err == nil {
		t.Fatal("expected error")
	}
}

func TestMessenger_Menu(t *testing.T) {
	bot := &fakeBot{}
	m := NewMessenger(bot, []string{"飲んだ", "時間設定", "設定確認"})
	ctx := context.Background()

	if err := m.ShowMenu(ctx, "7"); err != nil {
		t.Fatalf("show: %v", err)
	}
	kb, ok := bot.sent[0].ReplyMarkup.(tgbotapi.ReplyKeyboardMarkup)
	if !ok || len(kb.Keyboard) != 2 || len(kb.Keyboard[1]) != 2 || kb.OneTimeKeyboard {
		t.Fatalf("persistent menu expected, got %#v", bot.sent[0].ReplyMarkup)
	}

	if err := m.HideMenu(ctx, "7"); err != nil {
		t.Fatalf("hide: %v", err)
	}
	if _, ok := bot.sent[1].ReplyMarkup.(tgbotapi.ReplyKeyboardRemove); !ok {
		t.Fatalf("keyboard removal expected, got %#v", bot.sent[1].ReplyMarkup)
	}
}

func TestToEvent(t *testing.T) {
	text := tgbotapi.Update{Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 5}, Text: " 飲んだ "}}
	ev, ok := toEvent(text)
	if !ok || ev.Type != domain.EventMessage || !ev.IsText || ev.Text != " 飲んだ " ||
		ev.UserID != "5" || ev.ReplyToken != "5" {
		t.Fatalf("unexpected event %+v", ev)
	}

	blank := tgbotapi.Update{Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 5}, Text: "  "}}
	if ev, ok := toEvent(blank); !ok || ev.IsText {
		t.Fatalf("blank text is not a text message, got %+v", ev)
	}

	photo := tgbotapi.Update{Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 5}}}
	if ev, ok := toEvent(photo); !ok || ev.IsText {
		t.Fatalf("non-text message expected, got %+v", ev)
	}

	cb := tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 9}}}}
	if ev, ok := toEvent(cb); !ok || ev.Type != domain.EventOther {
		t.Fatalf("callback must map to other, got %+v", ev)
	}

	if _, ok := toEvent(tgbotapi.Update{}); ok {
		t.Fatal("empty update must be dropped")
	}
}

func TestPoller_DispatchesUntilCanceled(t *testing.T) {
	bot := &fakeBot{updates: make(chan tgbotapi.Update, 2)}
	h := &captureHandler{seen: make(chan struct{}, 2)}
	p := NewPoller(bot, h, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	bot.updates <- tgbotapi.Update{}
	bot.updates <- tgbotapi.Update{Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 3}, Text: "設定確認"}}

	select {
	case <-h.seen:
	case <-time.After(2 * time.Second):
		t.Fatal("update not dispatched")
	}
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not stop")
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.events) != 1 || h.events[0].UserID != "3" {
		t.Fatalf("unexpected events %+v", h.events)
	}
	bot.mu.Lock()
	defer bot.mu.Unlock()
	if !bot.stopped {
		t.Fatal("polling must be stopped on cancel")
	}
}
