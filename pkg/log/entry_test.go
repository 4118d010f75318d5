package log

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestEntry_MarshalJSON_FlattensFields(t *testing.T) {
	e := Entry{
		Timestamp: time.Date(2026, 1, 3, 12, 0, 0, 0, time.UTC),
		Level:     Warn,
		Message:   "rollback",
		RequestID: "req-9",
		Fields:    map[string]any{"tweet_id": "42"},
	}
	e.With("err", errors.New("timeout"), 7, "ignored", "dangling")

	data, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	want := map[string]any{
		"timestamp":  "2026-01-03T12:00:00Z",
		"level":      "WARN",
		"msg":        "rollback",
		"request_id": "req-9",
		"tweet_id":   "42",
		"err":        "timeout",
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %v, want %v", k, got[k], v)
		}
	}
	if _, ok := got["viewer"]; ok {
		t.Error("empty viewer should be omitted")
	}
	if len(got) != len(want) {
		t.Errorf("keys: got %d (%v), want %d", len(got), got, len(want))
	}
}
