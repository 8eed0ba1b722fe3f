package journal

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func readEntries(t *testing.T, path string) []Entry {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("os.Open() error = %v", err)
	}
	defer f.Close()

	var out []Entry
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var e Entry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			t.Fatalf("json.Unmarshal(%q) error = %v", sc.Text(), err)
		}
		out = append(out, e)
	}
	return out
}

func TestWriterFlushesOnClose(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, 16, 1)
	fixed := time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)
	w.now = func() time.Time { return fixed }

	for _, op := range []string{"add-symbol", "create-group", "move-symbol"} {
		if err := w.Record(Entry{Op: op, Args: map[string]string{"symbol": "AAPL"}}); err != nil {
			t.Fatalf("Record(%s) error = %v", op, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	entries := readEntries(t, filepath.Join(dir, "2026-10-19", "journal.jsonl"))
	if len(entries) != 3 {
		t.Fatalf("journal holds %d entries; want 3", len(entries))
	}
	if entries[0].Op != "add-symbol" || entries[2].Op != "move-symbol" {
		t.Fatalf("entries out of order: %+v", entries)
	}
	if entries[0].ID == "" || entries[0].ID == entries[1].ID {
		t.Fatalf("entries need distinct ids: %q %q", entries[0].ID, entries[1].ID)
	}
	if !entries[1].Time.Equal(fixed) {
		t.Fatalf("entry time = %v; want %v", entries[1].Time, fixed)
	}
}

func TestRecordAfterCloseFails(t *testing.T) {
	w := NewWriter(t.TempDir(), 1, 1)
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := w.Record(Entry{Op: "add-symbol"}); err == nil {
		t.Fatalf("Record() after Close = nil; want error")
	}
	if err := w.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
}
