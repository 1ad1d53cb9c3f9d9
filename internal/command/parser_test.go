package command

import "testing"

func TestParse(t *testing.T) {
	kw := DefaultKeywords
	cases := []struct {
		in   string
		want Intent
	}{
		{"飲んだ", Intent{Kind: Acknowledge}},
		{" 飲んだ ", Intent{Kind: Acknowledge}},
		{"飲んだよ", Intent{Kind: Unrecognized}},
		{"時間設定", Intent{Kind: RequestTimeSetup}},
		{"時間設定 9:00", Intent{Kind: SetTime, Arg: "9:00"}},
		{"時間設定 21:30 please", Intent{Kind: SetTime, Arg: "21:30"}},
		{"時間設定　7:05", Intent{Kind: SetTime, Arg: "7:05"}},
		{"時間設定 25:00", Intent{Kind: SetTime, Arg: "25:00"}},
		{"時間設定9:00", Intent{Kind: Unrecognized}},
		{"時間設定 ", Intent{Kind: SetTime}},
		{"時間設定　", Intent{Kind: SetTime}},
		{" 時間設定 8:15 ", Intent{Kind: SetTime, Arg: "8:15"}},
		{"設定確認", Intent{Kind: Status}},
		{"リッチメニュー表示", Intent{Kind: ShowMenu}},
		{"リッチメニュー非表示", Intent{Kind: HideMenu}},
		{"hello", Intent{Kind: Unrecognized}},
		{"", Intent{Kind: Unrecognized}},
	}
	for _, c := range cases {
		if got := kw.Parse(c.in); got != c.want {
			t.Errorf("Parse(%q) = %+v, want %+v", c.in, got, c.want)
		}
	}
}

func TestParse_CustomKeywords(t *testing.T) {
	kw := Keywords{Ack: "drank it", Setup: "set-time"}
	if got := kw.Parse("drank it"); got.Kind != Acknowledge {
		t.Fatalf("want ack, got %s", got.Kind)
	}
	if got := kw.Parse("set-time 08:00"); got.Kind != SetTime || got.Arg != "08:00" {
		t.Fatalf("want set_time 08:00, got %+v", got)
	}
	// Unset optional keywords never match empty-ish input.
	if got := kw.Parse("リッチメニュー表示"); got.Kind != Unrecognized {
		t.Fatalf("want unrecognized, got %s", got.Kind)
	}
}
