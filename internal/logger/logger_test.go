package logger

import (
	"testing"

	"go.uber.org/zap"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		level string
		want  zap.AtomicLevel
	}{
		{"debug", zap.NewAtomicLevelAt(zap.DebugLevel)},
		{"info", zap.NewAtomicLevelAt(zap.InfoLevel)},
		{"warn", zap.NewAtomicLevelAt(zap.WarnLevel)},
		{"error", zap.NewAtomicLevelAt(zap.ErrorLevel)},
	}
	for _, tt := range tests {
		log, err := New(tt.level, "line")
		if err != nil {
			t.Fatalf("%s: %v", tt.level, err)
		}
		if !log.Core().Enabled(tt.want.Level()) {
			t.Fatalf("%s: level not enabled", tt.level)
		}
		if tt.want.Level() > zap.DebugLevel && log.Core().Enabled(tt.want.Level()-1) {
			t.Fatalf("%s: lower level must be disabled", tt.level)
		}
	}
}

func TestNew_RejectsUnknownLevel(t *testing.T) {
	if _, err := New("verbose", "line"); err == nil {
		t.Fatal("expected error")
	}
}
