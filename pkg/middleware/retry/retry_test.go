package retry

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/airsstack/airssys-osl/pkg/osl"
)

func TestRetryableErrorsRequestRetry(t *testing.T) {
	mw := New(3, 50*time.Millisecond)
	ec := osl.NewExecutionContext(osl.NewSecurityContext("app"))

	action := mw.OnError(context.Background(), osl.NetworkError("connect", fmt.Errorf("refused")), ec)
	maxAttempts, delay, ok := action.RetryPlan()
	if !ok {
		t.Fatal("retryable error did not request a retry")
	}
	if maxAttempts != 3 || delay != 50*time.Millisecond {
		t.Fatalf("plan = %d attempts, %s delay", maxAttempts, delay)
	}

	action = mw.OnError(context.Background(), osl.ExecutionFailed("flaky", fmt.Errorf("transient")), ec)
	if _, _, ok := action.RetryPlan(); !ok {
		t.Fatal("execution error did not request a retry")
	}
}

func TestNonRetryableErrorsContinue(t *testing.T) {
	mw := New(3, time.Millisecond)
	ec := osl.NewExecutionContext(osl.NewSecurityContext("app"))

	errs := []error{
		osl.SecurityViolation("denied"),
		osl.FilesystemError("read", "/etc/x", fmt.Errorf("no such file")),
		fmt.Errorf("plain error"),
	}
	for _, err := range errs {
		if action := mw.OnError(context.Background(), err, ec); !action.IsContinue() {
			t.Fatalf("error %v: action is not continue", err)
		}
	}
}

func TestDefaultsApplied(t *testing.T) {
	mw := New(0, 0)
	ec := osl.NewExecutionContext(osl.NewSecurityContext("app"))

	action := mw.OnError(context.Background(), osl.NetworkError("dial", fmt.Errorf("reset")), ec)
	maxAttempts, delay, ok := action.RetryPlan()
	if !ok {
		t.Fatal("no retry requested")
	}
	if maxAttempts != 1 || delay != DefaultDelay {
		t.Fatalf("plan = %d attempts, %s delay", maxAttempts, delay)
	}
}
