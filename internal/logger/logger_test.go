package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"

	"github.com/example/upshot/internal/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		cfg       config.LogConfig
		wantErr   bool
		wantDebug bool
	}{
		{"console debug", config.LogConfig{Level: "debug", Format: "console"}, false, true},
		{"json info", config.LogConfig{Level: "info", Format: "json"}, false, false},
		{"bad level", config.LogConfig{Level: "loud", Format: "json"}, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := New(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if got := log.Core().Enabled(zapcore.DebugLevel); got != tt.wantDebug {
				t.Errorf("debug enabled = %v, want %v", got, tt.wantDebug)
			}
		})
	}
}
