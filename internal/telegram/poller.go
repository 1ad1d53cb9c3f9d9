package telegram

import (
	"context"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/ykvlv/medication-bot/internal/domain"
)

// BatchHandler processes inbound events.
type BatchHandler interface {
	HandleBatch(ctx context.Context, events []domain.Event)
}

// updater is the part of *tgbotapi.BotAPI used for long polling.
type updater interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Poller feeds Telegram updates into the handler one at a time.
type Poller struct {
	bot     updater
	handler BatchHandler
	log     *zap.Logger
	timeout int
}

// NewPoller creates a long-polling update feed.
func NewPoller(bot updater, handler BatchHandler, log *zap.Logger) *Poller {
	return &Poller{bot: bot, handler: handler, log: log, timeout: 30}
}

// Run polls until ctx is canceled.
func (p *Poller) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = p.timeout
	updCh := p.bot.GetUpdatesChan(u)
	p.log.Info("telegram polling started")

	for {
		select {
		case <-ctx.Done():
			p.bot.StopReceivingUpdates()
			p.log.Info("telegram polling stopped")
			return nil
		case upd, ok := <-updCh:
			if !ok {
				return nil
			}
			ev, ok := toEvent(upd)
			if !ok {
				continue
			}
			p.handler.HandleBatch(ctx, []domain.Event{ev})
		}
	}
}

// toEvent maps an update to an inbound event. Updates without a chat are dropped.
func toEvent(upd tgbotapi.Update) (domain.Event, bool) {
	if upd.Message != nil && upd.Message.Chat != nil {
		msg := upd.Message
		chat := strconv.FormatInt(msg.Chat.ID, 10)
		return domain.Event{
			Type:       domain.EventMessage,
			UserID:     chat,
			ReplyToken: chat,
			Text:       msg.Text,
			IsText:     strings.TrimSpace(msg.Text) != "",
		}, true
	}
	if cb := upd.CallbackQuery; cb != nil && cb.Message != nil && cb.Message.Chat != nil {
		chat := strconv.FormatInt(cb.Message.Chat.ID, 10)
		return domain.Event{Type: domain.EventOther, UserID: chat, ReplyToken: chat}, true
	}
	return domain.Event{}, false
}
