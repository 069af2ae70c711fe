package hotreload

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/airsstack/airssys-osl/pkg/config"
)

const validConfig = "principal: app\n"

func writeConfig(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func startWatcher(t *testing.T, path string, results chan<- error) *Watcher {
	t.Helper()
	w, err := New(Options{
		Path:     path,
		Debounce: 20 * time.Millisecond,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		OnReload: func(_ *config.Config, err error) {
			results <- err
		},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() { _ = w.Stop() })
	return w
}

func TestReloadOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "osl.yaml")
	writeConfig(t, path, validConfig)

	results := make(chan error, 10)
	w := startWatcher(t, path, results)

	writeConfig(t, path, "principal: changed\n")

	select {
	case err := <-results:
		if err != nil {
			t.Fatalf("reload error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("reload not delivered")
	}

	stats := w.Stats()
	if stats.ReloadsOK == 0 || stats.ReloadsTotal == 0 {
		t.Fatalf("stats = %+v", &stats)
	}
}

func TestInvalidConfigRejected(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "osl.yaml")
	writeConfig(t, path, validConfig)

	results := make(chan error, 10)
	w := startWatcher(t, path, results)

	// Missing principal fails validation.
	writeConfig(t, path, "metrics: true\n")

	select {
	case err := <-results:
		if err == nil {
			t.Fatal("invalid config applied")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("reload outcome not delivered")
	}

	stats := w.Stats()
	if stats.ReloadsFailed == 0 || stats.LastError == "" {
		t.Fatalf("stats = %+v", &stats)
	}
}

func TestIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "osl.yaml")
	writeConfig(t, path, validConfig)

	results := make(chan error, 10)
	startWatcher(t, path, results)

	writeConfig(t, filepath.Join(dir, "other.yaml"), "whatever: true\n")

	select {
	case <-results:
		t.Fatal("unrelated file triggered reload")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestOptionValidation(t *testing.T) {
	if _, err := New(Options{OnReload: func(*config.Config, error) {}}); err == nil {
		t.Fatal("missing path accepted")
	}
	if _, err := New(Options{Path: "/tmp/x"}); err == nil {
		t.Fatal("missing callback accepted")
	}
}

func TestDoubleStartRejected(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "osl.yaml")
	writeConfig(t, path, validConfig)

	results := make(chan error, 10)
	w := startWatcher(t, path, results)

	if err := w.Start(context.Background()); err == nil {
		t.Fatal("second start accepted")
	}
}
