// FILE: logship/src/internal/format/text.go
package format

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"text/template"
	"time"

	"logship/src/internal/core"

	"github.com/lixenwraith/log"
)

const (
	defaultTextTemplate = "{{FmtTime .Time}} {{Level .Level}} {{.Message}}{{Fields .Fields}}"
	defaultTimestampFmt = "2006-01-02 15:04:05.000"
	ansiReset           = "\x1b[0m"
)

var levelColors = map[string]string{
	"debug": "\x1b[90m",
	"info":  "\x1b[36m",
	"warn":  "\x1b[33m",
	"error": "\x1b[31m",
}

// TextFormatter produces human-readable lines using a template
type TextFormatter struct {
	template        *template.Template
	timestampFormat string
	color           bool
	logger          *log.Logger
}

// NewTextFormatter creates a new text formatter
func NewTextFormatter(opts Options, logger *log.Logger) (*TextFormatter, error) {
	f := &TextFormatter{
		timestampFormat: opts.TimestampFormat,
		color:           opts.Color,
		logger:          logger,
	}
	if f.timestampFormat == "" {
		f.timestampFormat = defaultTimestampFmt
	}

	text := opts.Template
	if text == "" {
		text = defaultTextTemplate
	}

	funcMap := template.FuncMap{
		"FmtTime": f.formatTime,
		"Level":   f.formatLevel,
		"Fields":  formatFields,
		"ToUpper": strings.ToUpper,
		"ToLower": strings.ToLower,
	}

	tmpl, err := template.New("entry").Funcs(funcMap).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("invalid template: %w", err)
	}

	f.template = tmpl
	return f, nil
}

// ValidateTemplate reports whether text parses as a text formatter template.
func ValidateTemplate(text string) error {
	_, err := NewTextFormatter(Options{Template: text}, nil)
	return err
}

// Format renders the entry through the template
func (f *TextFormatter) Format(entry core.LogEntry) ([]byte, error) {
	var buf bytes.Buffer
	if err := f.template.Execute(&buf, entry); err != nil {
		f.logger.Debug("msg", "Template execution failed, using fallback",
			"component", "text_formatter",
			"error", err)

		fallback := fmt.Sprintf("[%s] [%s] %s\n",
			entry.Time,
			strings.ToUpper(entry.Level),
			entry.Message)
		return []byte(fallback), nil
	}

	result := buf.Bytes()
	if len(result) == 0 || result[len(result)-1] != '\n' {
		result = append(result, '\n')
	}

	return result, nil
}

// Name returns the formatter name
func (f *TextFormatter) Name() string {
	return "txt"
}

// formatTime re-renders the wire timestamp; unparseable values pass through.
func (f *TextFormatter) formatTime(raw string) string {
	t, err := time.Parse(core.TimeFormat, raw)
	if err != nil {
		return raw
	}
	return t.Format(f.timestampFormat)
}

func (f *TextFormatter) formatLevel(level string) string {
	label := fmt.Sprintf("%-5s", strings.ToUpper(level))
	if !f.color {
		return label
	}
	if c, ok := levelColors[strings.ToLower(level)]; ok {
		return c + label + ansiReset
	}
	return label
}

// formatFields renders fields as sorted key=value pairs with a leading space.
func formatFields(fields map[string]any) string {
	if len(fields) == 0 {
		return ""
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		sb.WriteByte(' ')
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(formatValue(fields[k]))
	}
	return sb.String()
}

func formatValue(v any) string {
	switch val := v.(type) {
	case string:
		if strings.ContainsAny(val, " \t\n\"=") {
			return fmt.Sprintf("%q", val)
		}
		return val
	case fmt.Stringer:
		return val.String()
	case error:
		return fmt.Sprintf("%q", val.Error())
	case nil:
		return "null"
	}

	encoded, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(encoded)
}
