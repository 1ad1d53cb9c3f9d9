package line

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/line/line-bot-sdk-go/v7/linebot"
	"go.uber.org/zap"

	"github.com/ykvlv/medication-bot/internal/domain"
	"github.com/ykvlv/medication-bot/internal/metrics"
)

// BatchHandler processes all events of one delivery.
type BatchHandler interface {
	HandleBatch(ctx context.Context, events []domain.Event)
}

// Webhook verifies LINE deliveries and hands their events to the handler.
type Webhook struct {
	client  *Client
	handler BatchHandler
	log     *zap.Logger
}

// NewWebhook creates the /webhook handler.
func NewWebhook(client *Client, handler BatchHandler, log *zap.Logger) *Webhook {
	return &Webhook{client: client, handler: handler, log: log}
}

func (w *Webhook) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	log := w.log.With(zap.String("deliveryID", uuid.NewString()))

	events, err := w.client.bot.ParseRequest(r)
	if err != nil {
		if errors.Is(err, linebot.ErrInvalidSignature) {
			metrics.IncWebhook("400")
			log.Warn("webhook signature rejected")
			http.Error(rw, "invalid signature", http.StatusBadRequest)
			return
		}
		metrics.IncWebhook("500")
		log.Error("webhook parse failed", zap.Error(err))
		http.Error(rw, "bad request body", http.StatusInternalServerError)
		return
	}

	batch := make([]domain.Event, 0, len(events))
	for _, ev := range events {
		batch = append(batch, toEvent(ev))
	}
	log.Debug("webhook received", zap.Int("events", len(batch)))

	w.handler.HandleBatch(r.Context(), batch)

	metrics.IncWebhook("200")
	rw.WriteHeader(http.StatusOK)
	_, _ = rw.Write([]byte("OK"))
}

func toEvent(ev *linebot.Event) domain.Event {
	out := domain.Event{Type: domain.EventOther, ReplyToken: ev.ReplyToken}
	if ev.Source != nil {
		out.UserID = ev.Source.UserID
	}
	if ev.Type != linebot.EventTypeMessage {
		return out
	}
	out.Type = domain.EventMessage
	if tm, ok := ev.Message.(*linebot.TextMessage); ok {
		out.Text = tm.Text
		out.IsText = true
	}
	return out
}
