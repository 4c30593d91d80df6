package logging

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedLogger() (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return &Logger{sugar: zap.New(core).Sugar()}, logs
}

func TestRequestLoggerLevelsByStatus(t *testing.T) {
	tests := []struct {
		status int
		level  zapcore.Level
	}{
		{http.StatusOK, zapcore.InfoLevel},
		{http.StatusNotFound, zapcore.WarnLevel},
		{http.StatusInternalServerError, zapcore.ErrorLevel},
	}

	for _, tt := range tests {
		logger, logs := newObservedLogger()
		h := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if GetLoggerFromContext(r.Context()) == nil {
				t.Fatalf("expected request logger in context")
			}
			w.WriteHeader(tt.status)
		}))

		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

		completed := logs.FilterMessage("request completed").All()
		if len(completed) != 1 {
			t.Fatalf("expected one completion entry, got %d", len(completed))
		}
		if completed[0].Level != tt.level {
			t.Fatalf("status %d: expected level %s, got %s", tt.status, tt.level, completed[0].Level)
		}
		if got := completed[0].ContextMap()["status"]; got != int64(tt.status) {
			t.Fatalf("expected status field %d, got %v", tt.status, got)
		}
	}
}

func TestWithFieldsCarriesFields(t *testing.T) {
	logger, logs := newObservedLogger()
	logger.WithFields(map[string]any{"email": "jane@x.com"}).Warn("otp mismatch")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}
	if entries[0].ContextMap()["email"] != "jane@x.com" {
		t.Fatalf("expected email field, got %v", entries[0].ContextMap())
	}
}

func TestLevelFromString(t *testing.T) {
	if levelFromString("", true) != zapcore.DebugLevel {
		t.Fatalf("development default should be debug")
	}
	if levelFromString("", false) != zapcore.InfoLevel {
		t.Fatalf("production default should be info")
	}
	if levelFromString("warning", false) != zapcore.WarnLevel {
		t.Fatalf("expected warn level")
	}
}
