package reminder

import (
	"fmt"

	"github.com/ykvlv/medication-bot/internal/domain"
)

const notificationFmt = "薬を飲む時間ですよ！飲んだら「%s」ボタンを押してくださいね。"

// notification is pushed on the daily trigger and on every escalation.
func (m *Machine) notification() domain.Message {
	return domain.Message{
		Text:         fmt.Sprintf(notificationFmt, m.ackKeyword),
		QuickReplies: []string{m.ackKeyword},
	}
}
