package domain

import (
	"errors"
	"testing"
	"time"
)

// mustLocalUTC builds a wall-clock time in tz and returns it in UTC.
func mustLocalUTC(t *testing.T, tz string, y int, m time.Month, d, hh, mm int) time.Time {
	t.Helper()
	loc := mustLoc(t, tz)
	lt := time.Date(y, m, d, hh, mm, 0, 0, loc)
	return lt.UTC()
}

func mustLoc(t *testing.T, tz string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(tz)
	if err != nil {
		t.Fatalf("load tz: %v", err)
	}
	return loc
}

func TestParseTimeOfDay_Valid(t *testing.T) {
	cases := map[string]TimeOfDay{
		"9:00":   {9, 0},
		"09:00":  {9, 0},
		"0:00":   {0, 0},
		"23:59":  {23, 59},
		"21:00":  {21, 0},
		" 7:05 ": {7, 5},
	}
	for in, want := range cases {
		got, err := ParseTimeOfDay(in)
		if err != nil {
			t.Fatalf("%q: unexpected error %v", in, err)
		}
		if got != want {
			t.Fatalf("%q: want %v, got %v", in, want, got)
		}
		if !got.Valid() {
			t.Fatalf("%q: parsed value out of range", in)
		}
	}
}

func TestParseTimeOfDay_Invalid(t *testing.T) {
	for _, in := range []string{"25:00", "24:00", "9:5", "abc", "", "12:60", "123:00", "9-00", "９:００"} {
		_, err := ParseTimeOfDay(in)
		if err == nil {
			t.Fatalf("%q: expected error", in)
		}
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("%q: expected validation error, got %v", in, err)
		}
	}
}

func TestParseTimeOfDay_AllValid(t *testing.T) {
	for h := 0; h < 24; h++ {
		for m := 0; m < 60; m++ {
			s := FormatMinutes(h*60 + m)
			got, err := ParseTimeOfDay(s)
			if err != nil || got.Hour != h || got.Minute != m {
				t.Fatalf("%s: got %v, %v", s, got, err)
			}
		}
	}
}

func TestNextDaily_LaterToday(t *testing.T) {
	loc := mustLoc(t, "Asia/Tokyo")
	now := mustLocalUTC(t, "Asia/Tokyo", 2025, time.May, 5, 19, 46)
	next := NextDaily(now, TimeOfDay{21, 0}, loc)
	if got := next.In(loc).Format("2006-01-02 15:04"); got != "2025-05-05 21:00" {
		t.Fatalf("want 2025-05-05 21:00, got %s", got)
	}
}

func TestNextDaily_AlreadyPassedRollsOver(t *testing.T) {
	loc := mustLoc(t, "Asia/Tokyo")
	now := mustLocalUTC(t, "Asia/Tokyo", 2025, time.May, 5, 21, 0)
	next := NextDaily(now, TimeOfDay{21, 0}, loc)
	if got := next.In(loc).Format("2006-01-02 15:04"); got != "2025-05-06 21:00" {
		t.Fatalf("want 2025-05-06 21:00, got %s", got)
	}
}

func TestNextHourBoundary(t *testing.T) {
	loc := mustLoc(t, "Asia/Tokyo")
	now := mustLocalUTC(t, "Asia/Tokyo", 2025, time.May, 5, 21, 0)
	if got := LocalizeTime(NextHourBoundary(now, loc), loc); got != "22:00" {
		t.Fatalf("want 22:00, got %s", got)
	}
	now = mustLocalUTC(t, "Asia/Tokyo", 2025, time.May, 5, 23, 30)
	if got := LocalizeTime(NextHourBoundary(now, loc), loc); got != "00:00" {
		t.Fatalf("want 00:00, got %s", got)
	}
}

func TestUserReminder_StateFollowsTimer(t *testing.T) {
	r := &UserReminder{UserID: "U1"}
	if r.State() != StateIdle {
		t.Fatalf("want idle, got %s", r.State())
	}
	r.Timer = Timer{Kind: DailyArmed, Handle: 3}
	if r.State() != StateArmed || !r.Owns(DailyArmed, 3) || r.Owns(EscalatingAck, 3) {
		t.Fatalf("unexpected ownership for %+v", r.Timer)
	}
	r.Timer = Timer{Kind: EscalatingAck, Handle: 4}
	if r.State() != StateAwaitingAck || r.Owns(EscalatingAck, 3) {
		t.Fatalf("stale handle must not be owned")
	}
}

func TestEvent_Validate(t *testing.T) {
	if err := (Event{Type: EventOther}).Validate(); err != nil {
		t.Fatalf("other events are not protocol errors: %v", err)
	}
	err := (Event{Type: EventMessage, ReplyToken: "r"}).Validate()
	if !errors.Is(err, ErrProtocol) {
		t.Fatalf("want protocol error, got %v", err)
	}
	if err := (Event{Type: EventMessage, UserID: "U", ReplyToken: "r"}).Validate(); err != nil {
		t.Fatalf("unexpected: %v", err)
	}
}
