package logging

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"
)

const consoleTimestampLayout = "2006-01-02 15:04:05"

// consoleHandler renders records as a single aligned line:
//
//	2026-03-01 10:22:41 INFO  [compositor] render started run_id=4 stage=compositing
//
// Component and context fields are pulled out of the attr list so the prefix
// stays stable while the remaining attributes print as key=value pairs.
type consoleHandler struct {
	mu     sync.Mutex
	writer io.Writer
	level  *slog.LevelVar
	attrs  []slog.Attr
	groups []string
}

func newConsoleHandler(w io.Writer, lvl *slog.LevelVar) slog.Handler {
	return &consoleHandler{writer: w, level: lvl}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	if record.Level < h.level.Level() {
		return nil
	}

	timestamp := record.Time
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	pairs := make([]kvPair, 0, record.NumAttrs()+len(h.attrs))
	flattenAttrs(&pairs, h.groups, h.attrs)
	record.Attrs(func(attr slog.Attr) bool {
		flattenAttr(&pairs, h.groups, attr)
		return true
	})

	var component string
	filtered := pairs[:0]
	for _, pair := range pairs {
		if pair.key == FieldComponent {
			if component == "" {
				component = pair.value
			}
			continue
		}
		filtered = append(filtered, pair)
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return fieldRank(filtered[i].key) < fieldRank(filtered[j].key)
	})

	var buf bytes.Buffer
	buf.WriteString(timestamp.In(time.Local).Format(consoleTimestampLayout))
	buf.WriteByte(' ')
	buf.WriteString(fmt.Sprintf("%-5s", levelLabel(record.Level)))
	if component != "" {
		buf.WriteString(" [")
		buf.WriteString(component)
		buf.WriteByte(']')
	}
	buf.WriteByte(' ')
	buf.WriteString(strings.TrimSpace(record.Message))
	for _, pair := range filtered {
		buf.WriteByte(' ')
		buf.WriteString(pair.key)
		buf.WriteByte('=')
		buf.WriteString(pair.value)
	}
	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.writer.Write(buf.Bytes())
	return err
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := &consoleHandler{
		writer: h.writer,
		level:  h.level,
		attrs:  append(append([]slog.Attr{}, h.attrs...), attrs...),
		groups: append([]string{}, h.groups...),
	}
	return clone
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := &consoleHandler{
		writer: h.writer,
		level:  h.level,
		attrs:  append([]slog.Attr{}, h.attrs...),
		groups: append(append([]string{}, h.groups...), name),
	}
	return clone
}

type kvPair struct {
	key   string
	value string
}

func flattenAttrs(dst *[]kvPair, groups []string, attrs []slog.Attr) {
	for _, attr := range attrs {
		flattenAttr(dst, groups, attr)
	}
}

func flattenAttr(dst *[]kvPair, groups []string, attr slog.Attr) {
	if attr.Equal(slog.Attr{}) {
		return
	}
	value := attr.Value.Resolve()
	if value.Kind() == slog.KindGroup {
		nested := groups
		if attr.Key != "" {
			nested = append(append([]string{}, groups...), attr.Key)
		}
		for _, member := range value.Group() {
			flattenAttr(dst, nested, member)
		}
		return
	}
	key := attr.Key
	if len(groups) > 0 {
		key = strings.Join(groups, ".") + "." + key
	}
	*dst = append(*dst, kvPair{key: key, value: formatValue(value)})
}

func formatValue(value slog.Value) string {
	switch value.Kind() {
	case slog.KindString:
		text := value.String()
		if strings.ContainsAny(text, " \t") {
			return fmt.Sprintf("%q", text)
		}
		return text
	case slog.KindDuration:
		return value.Duration().Round(time.Millisecond).String()
	case slog.KindTime:
		return value.Time().Format(time.RFC3339)
	default:
		return fmt.Sprint(value.Any())
	}
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}

// fieldRank keeps identifying fields in front of free-form ones.
func fieldRank(key string) int {
	switch key {
	case FieldRunID:
		return 0
	case FieldStage:
		return 1
	case FieldCorrelationID:
		return 2
	case "error":
		return 4
	default:
		return 3
	}
}
