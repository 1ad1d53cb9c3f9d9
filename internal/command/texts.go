package command

import (
	"fmt"
	"strings"
	"time"

	"github.com/ykvlv/medication-bot/internal/domain"
)

// Reply texts.
const (
	ackedText        = "薬を飲んだんですね！えらいです！"
	neutralAckText   = "確認ありがとうございます！"
	timeSetFmt       = "%s に薬を飲む時間を設定しました。時間になったら通知しますね！"
	formatErrorFmt   = "時間の形式が正しくありません。「%[1]s HH:MM」のように入力してください (例: %[1]s 9:00)。"
	setupPromptFmt   = "薬を飲む時間を「%[1]s HH:MM」の形で送ってください (例: %[1]s 9:00)。"
	usageFmt         = "「%[1]s HH:MM」で薬を飲む時間を設定してください。\n例: %[1]s 9:00"
	usageMenuFmt     = "\nリッチメニューを表示するには「%s」と送信してください。"
	showMenuText     = "リッチメニューを表示します"
	hideMenuText     = "リッチメニューを非表示にします"
	menuUnavailable  = "この環境ではメニューを利用できません。"
	notConfigured    = "まだ時間が設定されていません。"
	statusHeaderFmt  = "設定時刻: %s\n状態: %s"
	statusNextFmt    = "\n次の通知: %s"
	statusEscalation = "\n再通知回数: %d"
)

func timeSetText(at domain.TimeOfDay) string { return fmt.Sprintf(timeSetFmt, at) }

func (kw Keywords) formatErrorText() string { return fmt.Sprintf(formatErrorFmt, kw.Setup) }

func (kw Keywords) setupPromptText() string { return fmt.Sprintf(setupPromptFmt, kw.Setup) }

func (kw Keywords) usageText(menu bool) string {
	s := fmt.Sprintf(usageFmt, kw.Setup)
	if menu && kw.ShowMenu != "" {
		s += fmt.Sprintf(usageMenuFmt, kw.ShowMenu)
	}
	return s
}

func stateLabel(s domain.State) string {
	switch s {
	case domain.StateArmed:
		return "通知待ち"
	case domain.StateAwaitingAck:
		return "服薬確認待ち"
	default:
		return "未設定"
	}
}

func (kw Keywords) statusText(r domain.UserReminder, next time.Time, hasNext bool, loc *time.Location) string {
	if r.State() == domain.StateIdle {
		return notConfigured + "\n" + kw.setupPromptText()
	}
	var b strings.Builder
	fmt.Fprintf(&b, statusHeaderFmt, r.ScheduledTime, stateLabel(r.State()))
	if hasNext {
		fmt.Fprintf(&b, statusNextFmt, next.In(loc).Format("01/02 15:04"))
	}
	if r.State() == domain.StateAwaitingAck {
		fmt.Fprintf(&b, statusEscalation, r.Escalations)
	}
	return b.String()
}
