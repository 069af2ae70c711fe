package jsonl

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/airsstack/airssys-osl/pkg/audit"
)

func TestAppendActivity(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "audit.jsonl")
	s, err := New(path, 10, 2)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	for i, status := range []audit.Status{audit.StatusSuccess, audit.StatusDenied} {
		entry := audit.ActivityLog{
			ID:            "log" + string(rune('1'+i)),
			OperationID:   "op1",
			OperationType: "filesystem",
			Principal:     "alice",
			Status:        status,
			Timestamp:     time.Now().UTC(),
		}
		if err := s.Log(context.Background(), entry); err != nil {
			t.Fatalf("Log: %v", err)
		}
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	var entries []audit.ActivityLog
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var e audit.ActivityLog
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			t.Fatalf("unmarshal line: %v", err)
		}
		entries = append(entries, e)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries", len(entries))
	}
	if entries[0].Status != audit.StatusSuccess || entries[1].Status != audit.StatusDenied {
		t.Fatalf("entries out of order: %+v", entries)
	}
}

func TestRotation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "audit.jsonl")
	s, err := New(path, 1, 2)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	// Force the file past 1MB so the next append rotates.
	big := make([]byte, 1100*1024)
	if err := os.WriteFile(path, big, 0o644); err != nil {
		t.Fatalf("prefill: %v", err)
	}

	entry := audit.ActivityLog{ID: "after-rotate", Status: audit.StatusSuccess, Timestamp: time.Now().UTC()}
	if err := s.Log(context.Background(), entry); err != nil {
		t.Fatalf("Log: %v", err)
	}

	if _, err := os.Stat(path + ".1"); err != nil {
		t.Fatalf("rotated file missing: %v", err)
	}
	st, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat current: %v", err)
	}
	if st.Size() >= int64(len(big)) {
		t.Fatalf("current file not rotated, size=%d", st.Size())
	}
}

func TestNewRejectsEmptyPath(t *testing.T) {
	if _, err := New("", 1, 1); err == nil {
		t.Fatal("expected error for empty path")
	}
}
