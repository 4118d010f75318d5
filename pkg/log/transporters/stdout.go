package transporters

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/tubededentifrice/twitter-clone/pkg/log"
)

// Format selects how entries are serialized.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// ParseFormat maps LOG_FORMAT values; anything but "text" is JSON.
func ParseFormat(s string) Format {
	if strings.EqualFold(strings.TrimSpace(s), string(FormatText)) {
		return FormatText
	}
	return FormatJSON
}

// Stdout writes one entry per line to stdout (or any io.Writer).
type Stdout struct {
	mu     sync.Mutex
	writer io.Writer
	format Format
}

// NewStdout writes line-delimited JSON to os.Stdout.
func NewStdout() *Stdout {
	return &Stdout{writer: os.Stdout, format: FormatJSON}
}

// NewStdoutWithWriter writes line-delimited JSON to w.
func NewStdoutWithWriter(w io.Writer) *Stdout {
	return &Stdout{writer: w, format: FormatJSON}
}

// WithFormat switches the output format and returns s.
func (s *Stdout) WithFormat(f Format) *Stdout {
	s.format = f
	return s
}

func (s *Stdout) Name() string {
	return "stdout"
}

func (s *Stdout) Write(entry log.Entry) error {
	var data []byte
	if s.format == FormatText {
		data = []byte(formatText(entry))
	} else {
		var err error
		data, err = json.Marshal(entry)
		if err != nil {
			return err
		}
	}
	data = append(data, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.writer.Write(data)
	return err
}

// Close is a no-op; stdout is owned by the process.
func (s *Stdout) Close() error {
	return nil
}

// formatText renders "15:04:05 LEVEL msg key=value ..." with keys sorted.
func formatText(e log.Entry) string {
	var b strings.Builder
	b.WriteString(e.Timestamp.UTC().Format(time.TimeOnly))
	b.WriteByte(' ')
	fmt.Fprintf(&b, "%-5s %s", e.Level.String(), e.Message)

	fixed := [][2]string{{"request_id", e.RequestID}, {"viewer", e.Viewer}, {"caller", e.Caller}}
	for _, kv := range fixed {
		if kv[1] != "" {
			fmt.Fprintf(&b, " %s=%s", kv[0], kv[1])
		}
	}

	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, e.Fields[k])
	}
	return b.String()
}
