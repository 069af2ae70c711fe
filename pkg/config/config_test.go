package config

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/airsstack/airssys-osl/pkg/operations"
	"github.com/airsstack/airssys-osl/pkg/osl"
)

const sampleConfig = `
principal: app
security:
  mode: enforce
  acl:
    - principal: app
      actions: ["*"]
      resources: ["**"]
audit:
  backend: slog
limits:
  mode: block
  per_type:
    filesystem:
      per_second: 100
      burst: 200
metrics: true
`

func TestParseValidConfig(t *testing.T) {
	c, err := Parse([]byte(sampleConfig))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if c.Principal != "app" {
		t.Fatalf("principal = %q", c.Principal)
	}
	if c.Security.Mode != "enforce" || len(c.Security.ACL) != 1 {
		t.Fatalf("security = %+v", c.Security)
	}
	if c.Limits.PerType["filesystem"].PerSecond != 100 {
		t.Fatalf("limits = %+v", c.Limits)
	}
	if !c.Metrics || c.Tracing {
		t.Fatalf("toggles = metrics:%v tracing:%v", c.Metrics, c.Tracing)
	}
}

func TestParseRejectsBadConfig(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"missing principal", "security: {mode: enforce}"},
		{"unknown field", "principal: a\nbogus: true"},
		{"bad security mode", "principal: a\nsecurity: {mode: paranoid}"},
		{"bad limit type", "principal: a\nlimits: {per_type: {tape: {per_second: 1}}}"},
		{"zero rate", "principal: a\nlimits: {per_type: {process: {per_second: 0}}}"},
		{"jsonl without path", "principal: a\naudit: {backend: jsonl}"},
		{"bad retry delay", "principal: a\nretry: {max_attempts: 2, delay: soon}"},
		{"negative retry delay", "principal: a\nretry: {max_attempts: 2, delay: -1s}"},
		{"negative retry attempts", "principal: a\nretry: {max_attempts: -1}"},
		{"bad acl pattern", "principal: a\nsecurity: {acl: [{principal: a, actions: ['*'], resources: ['[bad']}]}"},
		{"rbac cycle", "principal: a\nsecurity: {rbac: {roles: {x: {inherits: [y]}, y: {inherits: [x]}}}}"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.yaml))
			if err == nil {
				t.Fatal("config accepted")
			}
			if osl.CategoryOf(err) != osl.CategoryConfiguration {
				t.Fatalf("category = %s", osl.CategoryOf(err))
			}
		})
	}
}

func TestParseRetrySection(t *testing.T) {
	c, err := Parse([]byte("principal: app\nretry: {max_attempts: 3, delay: 250ms}"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if c.Retry.MaxAttempts != 3 {
		t.Fatalf("max attempts = %d", c.Retry.MaxAttempts)
	}
	if c.Retry.Delay.Duration != 250*time.Millisecond {
		t.Fatalf("delay = %s", c.Retry.Delay.Duration)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "osl.yaml")
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Principal != "app" {
		t.Fatalf("principal = %q", c.Principal)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("missing file accepted")
	}
}

func TestBuildAssemblesWorkingFramework(t *testing.T) {
	dir := t.TempDir()
	cfg := strings.ReplaceAll(`
principal: app
security:
  acl:
    - principal: app
      actions: ["*"]
      resources: ["**"]
audit:
  backend: jsonl
  path: DIR/activity.jsonl
`, "DIR", dir)

	c, err := Parse([]byte(cfg))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	fw, err := c.Build(
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithMetricsRegisterer(prometheus.NewRegistry()),
	)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer fw.Close()

	path := filepath.Join(dir, "f.txt")
	if _, err := fw.Filesystem().WriteFile(context.Background(), path, []byte("x")); err != nil {
		t.Fatalf("write through framework: %v", err)
	}

	// A principal outside the ACL is denied.
	_, err = fw.ExecuteAs(context.Background(),
		operations.NewFileRead(path), osl.NewSecurityContext("other"))
	if !osl.IsSecurityViolation(err) {
		t.Fatalf("error = %v", err)
	}
}

func TestBuildWithRBAC(t *testing.T) {
	cfg := `
principal: svc
security:
  rbac:
    roles:
      reader:
        permissions: ["file:read:/srv/**"]
    bindings:
      svc: [reader]
`
	c, err := Parse([]byte(cfg))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	fw, err := c.Build(WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer fw.Close()

	// A write is outside the reader role and denied.
	_, err = fw.Filesystem().WriteFile(context.Background(), "/srv/x", []byte("x"))
	if !osl.IsSecurityViolation(err) {
		t.Fatalf("error = %v", err)
	}
}

// flakyExecutor fails the first failures calls with a retryable error.
type flakyExecutor struct {
	failures int
	calls    int
}

func (e *flakyExecutor) Name() string { return "flaky" }

func (e *flakyExecutor) SupportedTypes() []osl.OperationType {
	return []osl.OperationType{osl.TypeNetwork}
}

func (e *flakyExecutor) Execute(context.Context, osl.Operation, *osl.ExecutionContext) (*osl.ExecutionResult, error) {
	e.calls++
	if e.calls <= e.failures {
		return nil, osl.NetworkError("dial", fmt.Errorf("connection refused"))
	}
	return osl.EmptySuccess(), nil
}

func TestBuildWiresRetryDefaults(t *testing.T) {
	cfg := `
principal: app
security:
  acl:
    - principal: app
      actions: ["*"]
      resources: ["**"]
retry:
  max_attempts: 2
  delay: 1ms
`
	c, err := Parse([]byte(cfg))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	exec := &flakyExecutor{failures: 2}
	fw, err := c.Build(
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithExecutors(exec),
	)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer fw.Close()

	if _, err := fw.Execute(context.Background(), operations.NewNetworkConnect("127.0.0.1:9")); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if exec.calls != 3 {
		t.Fatalf("executor calls = %d", exec.calls)
	}
}

func TestBuildWithoutRetrySectionFailsFast(t *testing.T) {
	c, err := Parse([]byte("principal: app\nsecurity: {acl: [{principal: app, actions: ['*'], resources: ['**']}]}"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	exec := &flakyExecutor{failures: 1}
	fw, err := c.Build(
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithExecutors(exec),
	)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer fw.Close()

	if _, err := fw.Execute(context.Background(), operations.NewNetworkConnect("127.0.0.1:9")); err == nil {
		t.Fatal("transient failure retried without a retry section")
	}
	if exec.calls != 1 {
		t.Fatalf("executor calls = %d", exec.calls)
	}
}
