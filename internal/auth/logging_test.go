// logging_test.go -- unit tests for request-scoped log attributes and AccessLog.
package auth

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
)

// captureLogs swaps the default slog logger for a JSON one writing to a buffer.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestReqAttrs(t *testing.T) {
	t.Run("includes request id when middleware ran", func(t *testing.T) {
		var attrs []any
		h := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			attrs = reqAttrs(r)
		}))
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/google/auth", nil))

		found := false
		for i := 0; i+1 < len(attrs); i += 2 {
			if attrs[i] == "request_id" && attrs[i+1] != "" {
				found = true
			}
		}
		if !found {
			t.Errorf("expected request_id in %v", attrs)
		}
	})

	t.Run("omits request id without middleware", func(t *testing.T) {
		attrs := reqAttrs(httptest.NewRequest(http.MethodGet, "/", nil))
		for i := 0; i < len(attrs); i += 2 {
			if attrs[i] == "request_id" {
				t.Errorf("unexpected request_id in %v", attrs)
			}
		}
	})
}

func TestAccessLog(t *testing.T) {
	buf := captureLogs(t)
	h := AccessLog(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/discord/auth/callback?code=s3cret", nil))

	if strings.Contains(buf.String(), "s3cret") {
		t.Errorf("authorization code leaked into logs: %s", buf.String())
	}
	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decoding log line %q: %v", buf.String(), err)
	}
	if line["path"] != "/discord/auth/callback" {
		t.Errorf("path: got %v", line["path"])
	}
	if line["status"] != float64(http.StatusTeapot) {
		t.Errorf("status: got %v", line["status"])
	}
}
