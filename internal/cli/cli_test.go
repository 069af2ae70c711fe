package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/airsstack/airssys-osl/pkg/audit"
	"github.com/airsstack/airssys-osl/pkg/store/sqlite"
)

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRoot("test")
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeTestConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "osl.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const cliConfig = `
principal: cli
security:
  acl:
    - principal: cli
      actions: ["*"]
      resources: ["**"]
`

func TestConfigValidate(t *testing.T) {
	path := writeTestConfig(t, cliConfig)
	out, err := runCommand(t, "config", "validate", path)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !strings.Contains(out, "valid") || !strings.Contains(out, "principal=cli") {
		t.Fatalf("output = %q", out)
	}

	bad := writeTestConfig(t, "security: {mode: bogus}")
	if _, err := runCommand(t, "config", "validate", bad); err == nil {
		t.Fatal("invalid config accepted")
	}
}

func TestPolicyEval(t *testing.T) {
	path := writeTestConfig(t, `
principal: app
security:
  acl:
    - principal: alice
      actions: ["file:read"]
      resources: ["/data/**"]
    - principal: alice
      actions: ["file:read"]
      resources: ["/data/secret/**"]
      deny: true
`)

	out, err := runCommand(t, "policy", "eval", path,
		"--principal", "alice", "--action", "file:read", "--resource", "/data/report.csv")
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if !strings.HasPrefix(out, "allow") {
		t.Fatalf("output = %q", out)
	}

	out, err = runCommand(t, "policy", "eval", path,
		"--principal", "alice", "--action", "file:read", "--resource", "/data/secret/key")
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if !strings.HasPrefix(out, "deny") {
		t.Fatalf("output = %q", out)
	}

	out, err = runCommand(t, "policy", "eval", path,
		"--principal", "bob", "--action", "file:read", "--resource", "/data/report.csv")
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if !strings.HasPrefix(out, "deny") {
		t.Fatalf("output = %q", out)
	}
}

func TestAuditQuery(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "activity.db")
	store, err := sqlite.Open(dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	entries := []audit.ActivityLog{
		{OperationID: "op1", OperationType: "filesystem", Principal: "alice", Status: audit.StatusSuccess, Timestamp: time.Now().UTC()},
		{OperationID: "op2", OperationType: "process", Principal: "bob", Status: audit.StatusDenied, SecurityRelevant: true, Error: "refused", Timestamp: time.Now().UTC()},
	}
	for _, e := range entries {
		if err := store.Log(context.Background(), e); err != nil {
			t.Fatalf("Log: %v", err)
		}
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	out, err := runCommand(t, "audit", "query", dbPath, "--principal", "alice")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if !strings.Contains(out, "op1") || strings.Contains(out, "op2") {
		t.Fatalf("output = %q", out)
	}

	out, err = runCommand(t, "audit", "query", dbPath, "--security-only", "--json")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if !strings.Contains(out, `"operation_id": "op2"`) {
		t.Fatalf("output = %q", out)
	}
}

func TestExecRead(t *testing.T) {
	cfg := writeTestConfig(t, cliConfig)
	dir := t.TempDir()
	file := filepath.Join(dir, "hello.txt")
	if err := os.WriteFile(file, []byte("hello cli"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	out, err := runCommand(t, "exec", "--config", cfg, "read", file)
	if err != nil {
		t.Fatalf("exec read: %v", err)
	}
	if out != "hello cli" {
		t.Fatalf("output = %q", out)
	}
}

func TestExecDeniedByPolicy(t *testing.T) {
	cfg := writeTestConfig(t, `
principal: cli
security:
  acl:
    - principal: cli
      actions: ["file:read"]
      resources: ["/nowhere/**"]
`)
	if _, err := runCommand(t, "exec", "--config", cfg, "read", "/etc/hostname"); err == nil {
		t.Fatal("denied read succeeded")
	}
}
