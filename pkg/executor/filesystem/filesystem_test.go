package filesystem

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/airsstack/airssys-osl/pkg/operations"
	"github.com/airsstack/airssys-osl/pkg/osl"
)

func testEC() *osl.ExecutionContext {
	return osl.NewExecutionContext(osl.NewSecurityContext("tester"))
}

func TestReadWriteRoundTrip(t *testing.T) {
	e := New()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "note.txt")

	if _, err := e.Execute(ctx, operations.NewFileWrite(path, []byte("hello")), testEC()); err != nil {
		t.Fatalf("write: %v", err)
	}
	res, err := e.Execute(ctx, operations.NewFileRead(path), testEC())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	got, err := res.OutputString()
	if err != nil {
		t.Fatalf("output string: %v", err)
	}
	if got != "hello" {
		t.Fatalf("output = %q", got)
	}
	if !res.IsSuccess() {
		t.Fatal("expected success")
	}
}

func TestAppend(t *testing.T) {
	e := New()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "log.txt")

	if _, err := e.Execute(ctx, operations.NewFileWrite(path, []byte("one\n")), testEC()); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := e.Execute(ctx, operations.NewFileAppend(path, []byte("two\n")), testEC()); err != nil {
		t.Fatalf("append: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("readback: %v", err)
	}
	if string(data) != "one\ntwo\n" {
		t.Fatalf("content = %q", data)
	}
}

func TestDeleteMissingFile(t *testing.T) {
	e := New()
	path := filepath.Join(t.TempDir(), "absent")

	_, err := e.Execute(context.Background(), operations.NewFileDelete(path), testEC())
	if err == nil {
		t.Fatal("expected error")
	}
	if osl.CategoryOf(err) != osl.CategoryFilesystem {
		t.Fatalf("category = %s", osl.CategoryOf(err))
	}
}

func TestDirCreateAndList(t *testing.T) {
	e := New()
	ctx := context.Background()
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")

	if _, err := e.Execute(ctx, operations.NewDirCreate(nested), testEC()); err == nil {
		t.Fatal("non-recursive mkdir should fail for nested path")
	}
	if _, err := e.Execute(ctx, operations.NewDirCreateAll(nested), testEC()); err != nil {
		t.Fatalf("mkdir -p: %v", err)
	}
	if _, err := e.Execute(ctx, operations.NewFileWrite(filepath.Join(nested, "f.txt"), []byte("x")), testEC()); err != nil {
		t.Fatalf("write: %v", err)
	}

	res, err := e.Execute(ctx, operations.NewDirList(nested), testEC())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var rows []struct {
		Name  string `json:"name"`
		IsDir bool   `json:"is_dir"`
	}
	if err := json.Unmarshal(res.Output, &rows); err != nil {
		t.Fatalf("unmarshal listing: %v", err)
	}
	if len(rows) != 1 || rows[0].Name != "f.txt" || rows[0].IsDir {
		t.Fatalf("listing = %+v", rows)
	}
}

func TestCanceledContext(t *testing.T) {
	e := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Execute(ctx, operations.NewFileRead("/etc/hosts"), testEC())
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestUnsupportedOperation(t *testing.T) {
	e := New()
	_, err := e.Execute(context.Background(), operations.NewProcessSpawn("true"), testEC())
	if err == nil {
		t.Fatal("expected error")
	}
	if osl.CategoryOf(err) != osl.CategoryExecution {
		t.Fatalf("category = %s", osl.CategoryOf(err))
	}
}
