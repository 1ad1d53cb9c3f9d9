package command

import (
	"strings"
	"unicode"
)

// Kind is an interpreted intent.
type Kind int

const (
	Unrecognized Kind = iota
	Acknowledge
	RequestTimeSetup
	SetTime
	Status
	ShowMenu
	HideMenu
)

func (k Kind) String() string {
	switch k {
	case Acknowledge:
		return "acknowledge"
	case RequestTimeSetup:
		return "request_time_setup"
	case SetTime:
		return "set_time"
	case Status:
		return "status"
	case ShowMenu:
		return "show_menu"
	case HideMenu:
		return "hide_menu"
	default:
		return "unrecognized"
	}
}

// Intent is the parsed form of one text message.
type Intent struct {
	Kind Kind
	Arg  string // raw time argument for SetTime
}

// Keywords are the exact texts users send. The setup keyword also works as a
// prefix: "<setup> 9:00".
type Keywords struct {
	Ack      string
	Setup    string
	Status   string
	ShowMenu string
	HideMenu string
}

// DefaultKeywords match the buttons of the rich menu.
var DefaultKeywords = Keywords{
	Ack:      "飲んだ",
	Setup:    "時間設定",
	Status:   "設定確認",
	ShowMenu: "リッチメニュー表示",
	HideMenu: "リッチメニュー非表示",
}

// Parse maps text to an intent. It does not validate the time argument.
// The setup prefix is matched before trailing space is trimmed, so a bare
// "keyword " is a SetTime with an empty argument.
func (kw Keywords) Parse(text string) Intent {
	if rest, ok := cutSetupPrefix(strings.TrimLeftFunc(text, unicode.IsSpace), kw.Setup); ok {
		arg := ""
		if f := strings.Fields(rest); len(f) > 0 {
			arg = f[0]
		}
		return Intent{Kind: SetTime, Arg: arg}
	}

	text = strings.TrimSpace(text)
	switch {
	case text == "":
		return Intent{Kind: Unrecognized}
	case text == kw.Ack:
		return Intent{Kind: Acknowledge}
	case text == kw.Setup:
		return Intent{Kind: RequestTimeSetup}
	case kw.Status != "" && text == kw.Status:
		return Intent{Kind: Status}
	case kw.ShowMenu != "" && text == kw.ShowMenu:
		return Intent{Kind: ShowMenu}
	case kw.HideMenu != "" && text == kw.HideMenu:
		return Intent{Kind: HideMenu}
	}
	return Intent{Kind: Unrecognized}
}

// cutSetupPrefix accepts the keyword followed by ASCII or ideographic space.
func cutSetupPrefix(text, setup string) (string, bool) {
	if setup == "" {
		return "", false
	}
	rest, ok := strings.CutPrefix(text, setup)
	if !ok || rest == "" {
		return "", false
	}
	if !strings.HasPrefix(rest, " ") && !strings.HasPrefix(rest, "　") {
		return "", false
	}
	return rest, true
}
