package auditlog

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"curefront/internal/domain/outbreak"

	"github.com/klauspost/compress/zstd"
)

func TestWriter_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir)

	events := []outbreak.Event{
		{Type: outbreak.EventProvinceChanged, OccurredAt: time.Unix(1000, 0).UTC(), Payload: map[string]any{"region_id": "limpopo"}},
		{Type: outbreak.EventGlobalChanged, OccurredAt: time.Unix(1001, 0).UTC()},
	}
	w.Publish(events)
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	matches, err := filepath.Glob(filepath.Join(dir, "events-*.jsonl.zst"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("expected one audit file, got %v (err=%v)", matches, err)
	}

	f, err := os.Open(matches[0])
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		t.Fatalf("zstd reader: %v", err)
	}
	defer dec.Close()

	var decoded []outbreak.Event
	scanner := bufio.NewScanner(dec)
	for scanner.Scan() {
		var evt outbreak.Event
		if err := json.Unmarshal(scanner.Bytes(), &evt); err != nil {
			t.Fatalf("decode line: %v", err)
		}
		decoded = append(decoded, evt)
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scan: %v", err)
	}

	if len(decoded) != 2 {
		t.Fatalf("expected 2 events, got %d", len(decoded))
	}
	if decoded[0].Type != outbreak.EventProvinceChanged {
		t.Fatalf("unexpected first event %+v", decoded[0])
	}
	if decoded[0].Payload["region_id"] != "limpopo" {
		t.Fatalf("payload lost: %+v", decoded[0].Payload)
	}
}

func TestWriter_CloseWithoutWrites(t *testing.T) {
	w := NewWriter(t.TempDir())
	if err := w.Close(); err != nil {
		t.Fatalf("close idle writer: %v", err)
	}
}
