package log

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/mattn/go-runewidth"
)

// DefaultMaxValueWidth is the display width string attributes are cut to.
const DefaultMaxValueWidth = 120

// Ellipsis marks a truncated value.
const Ellipsis = "..."

// lineBreaks flattens CR and LF so a record stays on a single line.
var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// ReviewHandler wraps an slog.Handler and shortens string attributes.
type ReviewHandler struct {
	handler  slog.Handler
	maxWidth int
}

// HandlerOption configures a ReviewHandler.
type HandlerOption func(*ReviewHandler)

// WithMaxValueWidth sets the display width string attributes are truncated
// to. Zero or a negative width disables truncation.
func WithMaxValueWidth(width int) HandlerOption {
	return func(h *ReviewHandler) {
		h.maxWidth = width
	}
}

// NewReviewHandler creates a ReviewHandler wrapping handler.
// If handler is nil, slog.Default().Handler() is used.
func NewReviewHandler(handler slog.Handler, opts ...HandlerOption) *ReviewHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	h := &ReviewHandler{handler: handler, maxWidth: DefaultMaxValueWidth}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Enabled reports whether the underlying handler handles records at level.
func (h *ReviewHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle shortens the record's attributes and passes it on.
func (h *ReviewHandler) Handle(ctx context.Context, r slog.Record) error {
	out := slog.NewRecord(r.Time, r.Level, lineBreaks.Replace(r.Message), r.PC)
	r.Attrs(func(a slog.Attr) bool {
		out.AddAttrs(h.shortenAttr(a))
		return true
	})
	return h.handler.Handle(ctx, out)
}

// WithAttrs returns a new handler with the given attributes added.
func (h *ReviewHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	short := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		short[i] = h.shortenAttr(a)
	}
	return &ReviewHandler{handler: h.handler.WithAttrs(short), maxWidth: h.maxWidth}
}

// WithGroup returns a new handler with the given group name.
func (h *ReviewHandler) WithGroup(name string) slog.Handler {
	return &ReviewHandler{handler: h.handler.WithGroup(name), maxWidth: h.maxWidth}
}

func (h *ReviewHandler) shortenAttr(a slog.Attr) slog.Attr {
	a.Value = a.Value.Resolve()

	switch a.Value.Kind() {
	case slog.KindGroup:
		attrs := a.Value.Group()
		short := make([]slog.Attr, len(attrs))
		for i, ga := range attrs {
			short[i] = h.shortenAttr(ga)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(short...)}
	case slog.KindString:
		return slog.String(a.Key, h.shorten(a.Value.String()))
	default:
		return a
	}
}

// shorten flattens line breaks in s and truncates it to the maximum width.
func (h *ReviewHandler) shorten(s string) string {
	s = lineBreaks.Replace(s)
	if h.maxWidth > 0 && runewidth.StringWidth(s) > h.maxWidth {
		s = runewidth.Truncate(s, h.maxWidth, Ellipsis)
	}
	return s
}

// NewLogger creates a text logger on w. The level is Warn, or Debug when
// verbose is set.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	return slog.New(NewReviewHandler(slog.NewTextHandler(w, handlerOptions(verbose))))
}

// NewJSONLogger creates a JSON logger on w with the same levels as NewLogger.
func NewJSONLogger(w io.Writer, verbose bool) *slog.Logger {
	return slog.New(NewReviewHandler(slog.NewJSONHandler(w, handlerOptions(verbose))))
}

func handlerOptions(verbose bool) *slog.HandlerOptions {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return &slog.HandlerOptions{Level: level}
}
