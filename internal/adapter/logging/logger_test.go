package logging_test

import (
	"testing"

	"go.uber.org/zap/zapcore"

	"github.com/neomorfeo/tenantdesk/internal/adapter/logging"
)

func TestNewLogger_Levels(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"WARN":    zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"verbose": zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
	}

	for in, want := range cases {
		logger, err := logging.NewLogger(in)
		if err != nil {
			t.Fatalf("NewLogger(%q) failed: %v", in, err)
		}
		if !logger.Core().Enabled(want) {
			t.Errorf("NewLogger(%q): level %v should be enabled", in, want)
		}
		if want > zapcore.DebugLevel && logger.Core().Enabled(want-1) {
			t.Errorf("NewLogger(%q): level %v should be disabled", in, want-1)
		}
	}
}
