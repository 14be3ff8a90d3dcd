package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

// palette renders the parts of a console line.
type palette struct {
	time, key, trace, debug, info, warn, err func(a ...any) string
}

func colorPalette() palette {
	return palette{
		time:  color.New(color.FgHiBlack).SprintFunc(),
		key:   color.New(color.FgCyan).SprintFunc(),
		trace: color.New(color.FgHiBlack).SprintFunc(),
		debug: color.New(color.FgMagenta).SprintFunc(),
		info:  color.New(color.FgGreen).SprintFunc(),
		warn:  color.New(color.FgYellow).SprintFunc(),
		err:   color.New(color.FgRed, color.Bold).SprintFunc(),
	}
}

func plainPalette() palette {
	return palette{fmt.Sprint, fmt.Sprint, fmt.Sprint, fmt.Sprint, fmt.Sprint, fmt.Sprint, fmt.Sprint}
}

func (p palette) level(l slog.Level) func(a ...any) string {
	switch {
	case l >= slog.LevelError:
		return p.err
	case l >= slog.LevelWarn:
		return p.warn
	case l >= slog.LevelInfo:
		return p.info
	case l > LevelTrace:
		return p.debug
	default:
		return p.trace
	}
}

// Handler is the console slog.Handler: "3:04PM LEVEL message key=value".
// Path-valued attributes under the home directory are shown as ~/...
type Handler struct {
	opts   slog.HandlerOptions
	out    io.Writer
	mu     *sync.Mutex
	attrs  []slog.Attr
	groups []string
	colors palette

	// home is replaced by "~" in path-valued attributes.
	home string
}

// NewHandler returns a Handler writing to out, colorized when
// SupportsColor(out) holds.
func NewHandler(out io.Writer, opts *slog.HandlerOptions) *Handler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	h := &Handler{opts: *opts, out: out, mu: &sync.Mutex{}, colors: plainPalette()}
	if home, err := os.UserHomeDir(); err == nil {
		h.home = home
	}
	if SupportsColor(out) {
		h.colors = colorPalette()
	}
	return h
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	threshold := slog.LevelInfo
	if h.opts.Level != nil {
		threshold = h.opts.Level.Level()
	}
	return level >= threshold
}

// Handle formats r into one line and writes it with a single Write call.
func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	if !r.Time.IsZero() {
		b.WriteString(h.colors.time(r.Time.Format(time.Kitchen)))
		b.WriteByte(' ')
	}

	lvl := levelString(r.Level)
	pad := strings.Repeat(" ", max(0, 5-len(lvl)))
	b.WriteString(h.colors.level(r.Level)(lvl))
	b.WriteString(pad)
	b.WriteByte(' ')
	b.WriteString(r.Message)

	for _, a := range h.attrs {
		h.appendAttr(&b, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		h.appendAttr(&b, a)
		return true
	})
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, b.String())
	return err
}

func (h *Handler) appendAttr(b *strings.Builder, a slog.Attr) {
	if a.Equal(slog.Attr{}) {
		return
	}

	key := a.Key
	if len(h.groups) > 0 {
		key = strings.Join(h.groups, ".") + "." + key
	}

	value := a.Value.Resolve().Any()
	if s, ok := value.(string); ok && isPathKey(a.Key) {
		value = h.shortenHome(s)
	}

	fmt.Fprintf(b, " %s=%v", h.colors.key(key), value)
}

// isPathKey reports whether an attribute key names a filesystem path.
func isPathKey(key string) bool {
	k := strings.ToLower(key)
	return k == "path" || k == "dir" || strings.HasSuffix(k, "_path") || strings.HasSuffix(k, "_dir")
}

// shortenHome rewrites paths under the user's home directory as ~/...
func (h *Handler) shortenHome(p string) string {
	if h.home == "" || !filepath.IsAbs(p) {
		return p
	}
	rel, err := filepath.Rel(h.home, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return p
	}
	if rel == "." {
		return "~"
	}
	return "~" + string(filepath.Separator) + rel
}

// WithAttrs returns a Handler that prefixes attrs to every record.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.attrs = append(slices.Clip(h.attrs), attrs...)
	return &c
}

// WithGroup returns a Handler that renders keys as "name.key".
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	c := *h
	c.groups = append(slices.Clip(h.groups), name)
	return &c
}
