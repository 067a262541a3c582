package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
)

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)

	h := RequestLogger(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		zerolog.Ctx(r.Context()).Info().Msg("inside")
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("hi"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/students?page=2", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	if len(lines) != 2 {
		t.Fatalf("expected 2 log lines, got %d: %s", len(lines), buf.String())
	}

	var inside map[string]any
	if err := json.Unmarshal(lines[0], &inside); err != nil {
		t.Fatal(err)
	}
	if inside["path"] != "/students" || inside["method"] != "GET" {
		t.Errorf("handler log missing request fields: %v", inside)
	}

	var access map[string]any
	if err := json.Unmarshal(lines[1], &access); err != nil {
		t.Fatal(err)
	}
	if access["status"] != float64(http.StatusTeapot) || access["bytes"] != float64(2) {
		t.Errorf("access line: %v", access)
	}
	if access["query"] != "page=2" || access["level"] != "info" {
		t.Errorf("access line: %v", access)
	}
}
