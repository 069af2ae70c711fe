package osl

import (
	"testing"
	"time"
)

func TestSecurityContext(t *testing.T) {
	sc := NewSecurityContext("alice@example.com")
	if sc.Principal != "alice@example.com" {
		t.Fatalf("principal = %q", sc.Principal)
	}
	if sc.SessionID == "" {
		t.Fatal("session id not stamped")
	}
	if sc.IsAdmin() || sc.IsServiceAccount() {
		t.Fatal("fresh context should have no roles")
	}

	sc.WithAttribute("role", "admin").WithAttribute("type", "service")
	if !sc.IsAdmin() || !sc.IsServiceAccount() {
		t.Fatal("attributes not applied")
	}
	if v, ok := sc.Attribute("role"); !ok || v != "admin" {
		t.Fatalf("Attribute(role) = %q, %v", v, ok)
	}
	if sc.Expired(time.Minute) {
		t.Fatal("context expired immediately")
	}
}

func TestExecutionContextMetadata(t *testing.T) {
	ec := NewExecutionContext(NewSecurityContext("bob"))
	if ec.Principal() != "bob" {
		t.Fatalf("principal = %q", ec.Principal())
	}
	if ec.ExecutionID == "" {
		t.Fatal("execution id not stamped")
	}

	ec.SetMetadata("request_id", "req-123")
	if v, ok := ec.Metadata("request_id"); !ok || v != "req-123" {
		t.Fatalf("Metadata = %q, %v", v, ok)
	}
	if _, ok := ec.Metadata("absent"); ok {
		t.Fatal("unexpected metadata hit")
	}

	snap := ec.MetadataSnapshot()
	snap["request_id"] = "mutated"
	if v, _ := ec.Metadata("request_id"); v != "req-123" {
		t.Fatal("snapshot mutation leaked into context")
	}
}

func TestExecutionContextValues(t *testing.T) {
	ec := NewExecutionContext(nil)
	if ec.Principal() != "" {
		t.Fatal("nil security context should yield empty principal")
	}

	type marker struct{ n int }
	ec.SetValue("span", &marker{n: 7})
	v, ok := ec.Value("span")
	if !ok {
		t.Fatal("value not stored")
	}
	if m := v.(*marker); m.n != 7 {
		t.Fatalf("value = %+v", m)
	}
}

func TestErrorActions(t *testing.T) {
	if !Stop().IsStop() || Stop().IsContinue() {
		t.Fatal("Stop misclassified")
	}
	if !Continue().IsContinue() {
		t.Fatal("Continue misclassified")
	}
	if !Suppress().IsSuppress() {
		t.Fatal("Suppress misclassified")
	}
	if !LogAndContinue().IsLogAndContinue() {
		t.Fatal("LogAndContinue misclassified")
	}

	repl := SecurityViolation("nope")
	if err, ok := Replace(repl).Replacement(); !ok || err != repl {
		t.Fatal("Replace did not carry the replacement")
	}
	if _, ok := Continue().Replacement(); ok {
		t.Fatal("Continue should not carry a replacement")
	}

	attempts, delay, ok := Retry(3, 50*time.Millisecond).RetryPlan()
	if !ok || attempts != 3 || delay != 50*time.Millisecond {
		t.Fatalf("RetryPlan = %d, %s, %v", attempts, delay, ok)
	}
	if attempts, _, _ := Retry(0, 0).RetryPlan(); attempts != 1 {
		t.Fatalf("Retry should clamp attempts to 1, got %d", attempts)
	}
}

func TestResultHelpers(t *testing.T) {
	start := time.Now().UTC()
	end := start.Add(120 * time.Millisecond)

	res := Success([]byte("hello"), start, end).WithMetadata("path", "/tmp/x")
	if !res.IsSuccess() {
		t.Fatal("success result misclassified")
	}
	if res.Duration != 120*time.Millisecond {
		t.Fatalf("duration = %s", res.Duration)
	}
	if !res.ExceededDuration(100*time.Millisecond) || res.ExceededDuration(200*time.Millisecond) {
		t.Fatal("ExceededDuration wrong")
	}
	if v, ok := res.GetMetadata("path"); !ok || v != "/tmp/x" {
		t.Fatalf("metadata = %q, %v", v, ok)
	}
	if s, err := res.OutputString(); err != nil || s != "hello" {
		t.Fatalf("OutputString = %q, %v", s, err)
	}

	if _, err := Success([]byte{0xff, 0xfe}, start, end).OutputString(); err == nil {
		t.Fatal("expected UTF-8 error")
	}

	fail := Failure([]byte("boom"), 1, end, start) // inverted timing clamps to 0
	if fail.IsSuccess() {
		t.Fatal("failure result misclassified")
	}
	if fail.Duration != 0 {
		t.Fatalf("negative duration not clamped: %s", fail.Duration)
	}

	sum := fail.Summary()
	if sum != "exit=1 duration=0s output_bytes=4" {
		t.Fatalf("summary = %q", sum)
	}
}

func TestPermissionStrings(t *testing.T) {
	if got := FilesystemRead("/etc/hosts").String(); got != "file:read:/etc/hosts" {
		t.Fatalf("permission string = %q", got)
	}
	if got := ProcessSpawn().String(); got != "process:spawn" {
		t.Fatalf("permission string = %q", got)
	}
	if !TypeNetwork.Valid() || OperationType("bogus").Valid() {
		t.Fatal("OperationType.Valid wrong")
	}
}
