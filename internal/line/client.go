package line

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/line/line-bot-sdk-go/v7/linebot"

	"github.com/ykvlv/medication-bot/internal/domain"
)

var errNoRichMenu = errors.New("rich menu id not configured")

// Client sends replies and pushes through the LINE Messaging API and
// links the rich menu.
type Client struct {
	bot        *linebot.Client
	richMenuID string
}

// DefaultTimeout bounds every Messaging API call.
const DefaultTimeout = 10 * time.Second

// NewClient creates a client for one channel. richMenuID may be empty.
// Requests time out after DefaultTimeout unless opts supply another HTTP client.
func NewClient(channelSecret, channelToken, richMenuID string, opts ...linebot.ClientOption) (*Client, error) {
	opts = append([]linebot.ClientOption{linebot.WithHTTPClient(&http.Client{Timeout: DefaultTimeout})}, opts...)
	bot, err := linebot.New(channelSecret, channelToken, opts...)
	if err != nil {
		return nil, err
	}
	return &Client{bot: bot, richMenuID: richMenuID}, nil
}

// HasMenu reports whether a rich menu can be linked.
func (c *Client) HasMenu() bool { return c.richMenuID != "" }

// Reply answers an event with its one-time reply token.
func (c *Client) Reply(ctx context.Context, replyToken string, msg domain.Message) error {
	_, err := c.bot.ReplyMessage(replyToken, toSendingMessage(msg)).WithContext(ctx).Do()
	return err
}

// Push sends an unsolicited message to a user.
func (c *Client) Push(ctx context.Context, userID string, msg domain.Message) error {
	_, err := c.bot.PushMessage(userID, toSendingMessage(msg)).WithContext(ctx).Do()
	return err
}

// ShowMenu links the configured rich menu to the user.
func (c *Client) ShowMenu(ctx context.Context, userID string) error {
	if !c.HasMenu() {
		return errNoRichMenu
	}
	_, err := c.bot.LinkUserRichMenu(userID, c.richMenuID).WithContext(ctx).Do()
	return err
}

// HideMenu unlinks any rich menu from the user.
func (c *Client) HideMenu(ctx context.Context, userID string) error {
	_, err := c.bot.UnlinkUserRichMenu(userID).WithContext(ctx).Do()
	return err
}

func toSendingMessage(msg domain.Message) linebot.SendingMessage {
	tm := linebot.NewTextMessage(msg.Text)
	if len(msg.QuickReplies) == 0 {
		return tm
	}
	buttons := make([]*linebot.QuickReplyButton, 0, len(msg.QuickReplies))
	for _, q := range msg.QuickReplies {
		buttons = append(buttons, linebot.NewQuickReplyButton("", linebot.NewMessageAction(q, q)))
	}
	return tm.WithQuickReplies(linebot.NewQuickReplyItems(buttons...))
}
