package log

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

type testTransporter struct {
	mu       sync.Mutex
	entries  []Entry
	writeErr error
	delay    time.Duration
	closed   bool
}

func (t *testTransporter) Name() string { return "test" }

func (t *testTransporter) Write(entry Entry) error {
	if t.delay > 0 {
		time.Sleep(t.delay)
	}
	if t.writeErr != nil {
		return t.writeErr
	}
	t.mu.Lock()
	t.entries = append(t.entries, entry)
	t.mu.Unlock()
	return nil
}

func (t *testTransporter) Close() error {
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()
	return nil
}

func (t *testTransporter) Entries() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Entry{}, t.entries...)
}

func TestBuffer_Close_FlushesQueued(t *testing.T) {
	transport := &testTransporter{}
	buf := NewBuffer(100, transport)

	for i := 0; i < 10; i++ {
		buf.Send(*NewEntry(Info, "msg"))
	}
	buf.Close()

	if got := len(transport.Entries()); got != 10 {
		t.Errorf("delivered: got %d, want 10", got)
	}
	if !transport.closed {
		t.Error("transporter should be closed")
	}
}

func TestBuffer_Overflow_DropsOldest(t *testing.T) {
	transport := &testTransporter{delay: 20 * time.Millisecond}
	buf := NewBuffer(2, transport)

	for i := 0; i < 20; i++ {
		buf.Send(*NewEntry(Info, "msg"))
	}
	buf.Close()

	if buf.DroppedCount() == 0 {
		t.Error("expected dropped entries")
	}
	if got := int64(len(transport.Entries())) + buf.DroppedCount(); got != 20 {
		t.Errorf("delivered+dropped: got %d, want 20", got)
	}
}

func TestBuffer_SendAfterClose_IsNoop(t *testing.T) {
	transport := &testTransporter{}
	buf := NewBuffer(10, transport)
	buf.Close()
	buf.Close()

	buf.Send(*NewEntry(Info, "late"))

	if len(transport.Entries()) != 0 {
		t.Error("entry delivered after close")
	}
}

func TestBuffer_TransporterError_ReportedToFallback(t *testing.T) {
	var out strings.Builder
	transport := &testTransporter{writeErr: errors.New("disk full")}
	buf := NewBuffer(10, transport)
	buf.fallback = &out

	buf.Send(*NewEntry(Error, "msg"))
	buf.Close()

	if !strings.Contains(out.String(), "disk full") {
		t.Errorf("fallback output: got %q", out.String())
	}
}
