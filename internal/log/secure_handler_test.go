package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func newTestLogger() (*slog.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	handler := slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(NewSecureHandler(handler)), buf
}

// TestSecureHandler tests credential masking in log output.
func TestSecureHandler(t *testing.T) {
	t.Parallel()

	t.Run("masks sensitive keys", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name string
			key  string
		}{
			{"cookie header", "Cookie"},
			{"authorization header", "Authorization"},
			{"api key", "api_key"},
			{"password", "password"},
			{"session id", "session_id"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()

				logger, buf := newTestLogger()
				logger.Info("request", tt.key, "supersecret")

				out := buf.String()
				if strings.Contains(out, "supersecret") {
					t.Errorf("output leaked the value: %s", out)
				}
				if !strings.Contains(out, MaskValue) {
					t.Errorf("output missing mask: %s", out)
				}
			})
		}
	})

	t.Run("masks credential-shaped values under any key", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name  string
			value string
		}{
			{"jwt", "eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiIxIn0.sig"},
			{"bearer token", "Bearer abc123"},
			{"basic auth", "Basic dXNlcjpwYXNz"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()

				logger, buf := newTestLogger()
				logger.Info("request", "header", tt.value)

				out := buf.String()
				if !strings.Contains(out, MaskValue) {
					t.Errorf("output missing mask: %s", out)
				}
			})
		}
	})

	t.Run("passes ordinary attributes through", func(t *testing.T) {
		t.Parallel()

		logger, buf := newTestLogger()
		logger.Info("fetched page", "url", "http://a.test/", "depth", 2)

		out := buf.String()
		if !strings.Contains(out, "http://a.test/") {
			t.Errorf("expected URL in output: %s", out)
		}
		if strings.Contains(out, MaskValue) {
			t.Errorf("unexpected masking: %s", out)
		}
	})

	t.Run("masks inside groups", func(t *testing.T) {
		t.Parallel()

		logger, buf := newTestLogger()
		logger.Info("request", slog.Group("headers",
			slog.String("Cookie", "session=abc"),
			slog.String("Accept", "text/html"),
		))

		out := buf.String()
		if strings.Contains(out, "session=abc") {
			t.Errorf("group output leaked the cookie: %s", out)
		}
		if !strings.Contains(out, "text/html") {
			t.Errorf("expected benign group attr in output: %s", out)
		}
	})

	t.Run("masks attributes added via With", func(t *testing.T) {
		t.Parallel()

		logger, buf := newTestLogger()
		logger.With("token", "tok_12345").Info("request")

		out := buf.String()
		if strings.Contains(out, "tok_12345") {
			t.Errorf("With attribute leaked: %s", out)
		}
	})
}

// TestNewSecureLogger tests level selection.
func TestNewSecureLogger(t *testing.T) {
	t.Parallel()

	t.Run("quiet logger drops info", func(t *testing.T) {
		t.Parallel()

		buf := &bytes.Buffer{}
		logger := NewSecureLogger(buf, false)
		logger.Info("should be dropped")
		logger.Warn("should be kept")

		out := buf.String()
		if strings.Contains(out, "should be dropped") {
			t.Errorf("info logged at warn level: %s", out)
		}
		if !strings.Contains(out, "should be kept") {
			t.Errorf("warn missing: %s", out)
		}
	})

	t.Run("verbose logger keeps debug", func(t *testing.T) {
		t.Parallel()

		buf := &bytes.Buffer{}
		logger := NewSecureLogger(buf, true)
		logger.Debug("noisy detail")

		if !strings.Contains(buf.String(), "noisy detail") {
			t.Errorf("debug missing: %s", buf.String())
		}
	})
}
