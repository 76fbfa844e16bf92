package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestReviewHandler_ShortensStrings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value string
		width int
		want  string
	}{
		{name: "short value untouched", value: "Emirates", width: 20, want: "Emirates"},
		{name: "newlines flattened", value: "line one\nline two\r\nthree", width: 100, want: "line one line two three"},
		{name: "long value truncated", value: strings.Repeat("a", 30), width: 10, want: "aaaaaaa..."},
		{name: "wide runes measured by width", value: "日本語のレビューです", width: 9, want: "日本語..."},
		{name: "truncation disabled", value: strings.Repeat("b", 30), width: 0, want: strings.Repeat("b", 30)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := slog.New(NewReviewHandler(slog.NewJSONHandler(&buf, nil), WithMaxValueWidth(tt.width)))
			logger.Info("msg", "record", tt.value)

			var got map[string]any
			if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
				t.Fatalf("failed to decode log line %q: %v", buf.String(), err)
			}
			if got["record"] != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got["record"])
			}
		})
	}
}

func TestReviewHandler_KeepsNonStrings(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(NewReviewHandler(slog.NewJSONHandler(&buf, nil), WithMaxValueWidth(3)))
	logger.Info("msg", "index", 123456, "ok", true)

	out := buf.String()
	if !strings.Contains(out, `"index":123456`) || !strings.Contains(out, `"ok":true`) {
		t.Errorf("expected non-string attributes unchanged, got %s", out)
	}
}

func TestReviewHandler_SingleLine(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewLogger(&buf, true)
	logger.Warn("skipping record", "record", "A | B | 1 | first\nsecond\nthird")

	out := strings.TrimSuffix(buf.String(), "\n")
	if strings.Contains(out, "\n") {
		t.Errorf("expected a single line, got %q", out)
	}
	if !strings.Contains(out, "first second third") {
		t.Errorf("expected flattened value, got %q", out)
	}
}

func TestReviewHandler_LogLevels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		verbose    bool
		logFunc    func(*slog.Logger)
		shouldShow bool
	}{
		{name: "debug hidden without verbose", verbose: false, logFunc: func(l *slog.Logger) { l.Debug("m") }, shouldShow: false},
		{name: "info hidden without verbose", verbose: false, logFunc: func(l *slog.Logger) { l.Info("m") }, shouldShow: false},
		{name: "warn shown without verbose", verbose: false, logFunc: func(l *slog.Logger) { l.Warn("m") }, shouldShow: true},
		{name: "debug shown with verbose", verbose: true, logFunc: func(l *slog.Logger) { l.Debug("m") }, shouldShow: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			tt.logFunc(NewLogger(&buf, tt.verbose))
			if shown := buf.Len() > 0; shown != tt.shouldShow {
				t.Errorf("expected shown=%v, got output %q", tt.shouldShow, buf.String())
			}
		})
	}
}

func TestReviewHandler_WithAttrsAndGroup(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, true)

	logger.With("body", "a\nb").WithGroup("review").Info("msg", "title", "x\ny")

	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode log line: %v", err)
	}
	if got["body"] != "a b" {
		t.Errorf("expected flattened WithAttrs value, got %v", got["body"])
	}
	group, ok := got["review"].(map[string]any)
	if !ok || group["title"] != "x y" {
		t.Errorf("expected flattened grouped value, got %v", got["review"])
	}
}

func TestNewReviewHandler_NilHandler(t *testing.T) {
	t.Parallel()

	h := NewReviewHandler(nil)
	if h.handler == nil {
		t.Error("expected default handler")
	}
	if h.maxWidth != DefaultMaxValueWidth {
		t.Errorf("expected default width %d, got %d", DefaultMaxValueWidth, h.maxWidth)
	}
}
