package framework

import (
	"context"
	"testing"

	"github.com/airsstack/airssys-osl/pkg/executor/filesystem"
	"github.com/airsstack/airssys-osl/pkg/executor/network"
	"github.com/airsstack/airssys-osl/pkg/executor/process"
	"github.com/airsstack/airssys-osl/pkg/osl"
)

type fakeExecutor struct {
	name  string
	types []osl.OperationType
}

func (f *fakeExecutor) Name() string                        { return f.name }
func (f *fakeExecutor) SupportedTypes() []osl.OperationType { return f.types }
func (f *fakeExecutor) Execute(context.Context, osl.Operation, *osl.ExecutionContext) (*osl.ExecutionResult, error) {
	return osl.EmptySuccess(), nil
}

type claimingMiddleware struct {
	osl.Base
	types []osl.OperationType
}

func (m *claimingMiddleware) Name() string                        { return "claiming" }
func (m *claimingMiddleware) Priority() int                       { return 50 }
func (m *claimingMiddleware) SupportedTypes() []osl.OperationType { return m.types }

func TestRegisterAndLookup(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(filesystem.New()); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := r.Register(process.New()); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, ok := r.Executor(osl.TypeFilesystem); !ok {
		t.Fatal("filesystem executor missing")
	}
	if _, ok := r.Executor(osl.TypeNetwork); ok {
		t.Fatal("unexpected network executor")
	}
	if got := r.Types(); len(got) != 2 {
		t.Fatalf("types = %v", got)
	}
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(filesystem.New()); err != nil {
		t.Fatalf("Register: %v", err)
	}
	err := r.Register(&fakeExecutor{name: "other", types: []osl.OperationType{osl.TypeFilesystem}})
	if err == nil {
		t.Fatal("duplicate registration accepted")
	}
	if osl.CategoryOf(err) != osl.CategoryConfiguration {
		t.Fatalf("category = %s", osl.CategoryOf(err))
	}
}

func TestRegisterRejectsInvalid(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(nil); err == nil {
		t.Fatal("nil executor accepted")
	}
	if err := r.Register(&fakeExecutor{name: "empty"}); err == nil {
		t.Fatal("typeless executor accepted")
	}
	if err := r.Register(&fakeExecutor{name: "bad", types: []osl.OperationType{"tape-drive"}}); err == nil {
		t.Fatal("unknown type accepted")
	}
}

func TestValidateMiddlewareClaims(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(filesystem.New()); err != nil {
		t.Fatalf("Register: %v", err)
	}

	// Claiming only registered types passes.
	ok := &claimingMiddleware{types: []osl.OperationType{osl.TypeFilesystem}}
	if err := r.Validate([]osl.Middleware{ok}); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	// An empty claim means all types and never fails validation.
	all := &claimingMiddleware{}
	if err := r.Validate([]osl.Middleware{all}); err != nil {
		t.Fatalf("Validate all-types: %v", err)
	}

	// Claiming a type without an executor fails.
	bad := &claimingMiddleware{types: []osl.OperationType{osl.TypeNetwork}}
	if err := r.Validate([]osl.Middleware{bad}); err == nil {
		t.Fatal("unbacked claim accepted")
	}
}

func TestMultiRegistration(t *testing.T) {
	r := NewRegistry()
	for _, e := range []osl.Executor{filesystem.New(), process.New(), network.New()} {
		if err := r.Register(e); err != nil {
			t.Fatalf("Register %s: %v", e.Name(), err)
		}
	}
	if got := len(r.Types()); got != 3 {
		t.Fatalf("types = %d", got)
	}
}
