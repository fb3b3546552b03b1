package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func capture(t *testing.T, l slog.Level) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := Level()
	SetOutput(&buf)
	SetLevel(l)
	t.Cleanup(func() {
		SetOutput(&bytes.Buffer{})
		SetLevel(prev)
	})
	return &buf
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"trace", LevelTrace, false},
		{"DEBUG", slog.LevelDebug, false},
		{"", slog.LevelInfo, false},
		{" warn ", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func TestCompactHandlerFormat(t *testing.T) {
	var buf bytes.Buffer
	h := NewCompactHandler(&buf, &slog.HandlerOptions{Level: LevelTrace})
	l := slog.New(h).With("tool", "spring")

	l.Log(context.Background(), LevelTrace, "step done", "n", 3)
	l.Warn("fallback stencil", "name", "an octagon", "error", errors.New("missing"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines: %q", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "[TRACE] ") || !strings.HasSuffix(lines[0], "step done | tool=spring n=3") {
		t.Errorf("trace line = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "[WARN]  ") || !strings.Contains(lines[1], `name="an octagon" error="missing"`) {
		t.Errorf("warn line = %q", lines[1])
	}
}

type point struct{ x, y float64 }

func (p point) LogValue() slog.Value {
	return slog.GroupValue(slog.Float64("x", p.x), slog.Float64("y", p.y))
}

func TestCompactHandlerGroups(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(NewCompactHandler(&buf, &slog.HandlerOptions{Level: LevelTrace}))
	l = l.WithGroup("layout").With("tool", "spring").WithGroup("node")

	l.Log(context.Background(), LevelTrace, "moved", "name", "a", "to", point{1.5, -2})

	want := "moved | layout.tool=spring layout.node.name=a layout.node.to.x=1.5 layout.node.to.y=-2\n"
	if got := buf.String(); !strings.HasPrefix(got, "[TRACE] ") || !strings.HasSuffix(got, want) {
		t.Errorf("line = %q, want suffix %q", got, want)
	}
}

func TestLevelFiltering(t *testing.T) {
	buf := capture(t, slog.LevelWarn)

	Debug("hidden")
	Info("hidden too")
	Warn("shown")

	if out := buf.String(); strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Errorf("output = %q", out)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	buf := capture(t, slog.LevelDebug)

	h := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetRequestID(r.Context()) == "" {
			t.Error("no request ID in context")
		}
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))

	req := httptest.NewRequest(http.MethodPut, "/api/document", nil)
	req.Header.Set("X-Request-ID", "0123456789abcdef")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got != "0123456789abcdef" {
		t.Errorf("response request ID = %q", got)
	}
	out := buf.String()
	if !strings.Contains(out, "[WARN]  ") || !strings.Contains(out, "request rejected") || !strings.Contains(out, "req=01234567") {
		t.Errorf("log output = %q", out)
	}
}
