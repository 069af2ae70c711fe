// Package filesystem executes file and directory operations against the
// local filesystem.
package filesystem

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/airsstack/airssys-osl/pkg/operations"
	"github.com/airsstack/airssys-osl/pkg/osl"
)

// Executor handles osl.TypeFilesystem operations.
type Executor struct{}

var _ osl.Executor = (*Executor)(nil)

// New returns a filesystem executor.
func New() *Executor { return &Executor{} }

func (e *Executor) Name() string { return "filesystem" }

func (e *Executor) SupportedTypes() []osl.OperationType {
	return []osl.OperationType{osl.TypeFilesystem}
}

// dirEntry is the serialized form of a single directory listing row.
type dirEntry struct {
	Name  string `json:"name"`
	IsDir bool   `json:"is_dir"`
	Size  int64  `json:"size"`
	Mode  string `json:"mode"`
}

// Execute dispatches on the concrete operation type. Unknown filesystem
// operations are an execution error, not a panic.
func (e *Executor) Execute(ctx context.Context, op osl.Operation, ec *osl.ExecutionContext) (*osl.ExecutionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, osl.ExecutionFailed(string(op.Type()), err)
	}
	start := time.Now().UTC()

	switch o := op.(type) {
	case *operations.FileRead:
		return e.readFile(o, start)
	case *operations.FileWrite:
		return e.writeFile(o, start)
	case *operations.FileDelete:
		return e.deleteFile(o, start)
	case *operations.DirCreate:
		return e.createDir(o, start)
	case *operations.DirList:
		return e.listDir(o, start)
	default:
		return nil, osl.ExecutionFailed("filesystem", fmt.Errorf("unsupported operation %T", op))
	}
}

func (e *Executor) readFile(op *operations.FileRead, start time.Time) (*osl.ExecutionResult, error) {
	data, err := os.ReadFile(op.Path)
	if err != nil {
		return nil, osl.FilesystemError("read", op.Path, err)
	}
	res := osl.NewResult(data, 0, start, time.Now().UTC())
	res.WithMetadata("path", op.Path)
	return res, nil
}

func (e *Executor) writeFile(op *operations.FileWrite, start time.Time) (*osl.ExecutionResult, error) {
	var err error
	if op.Append {
		var f *os.File
		f, err = os.OpenFile(op.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err == nil {
			_, err = f.Write(op.Content)
			if cerr := f.Close(); err == nil {
				err = cerr
			}
		}
	} else {
		err = os.WriteFile(op.Path, op.Content, 0o644)
	}
	if err != nil {
		return nil, osl.FilesystemError("write", op.Path, err)
	}
	res := osl.Success(nil, start, time.Now().UTC())
	res.WithMetadata("path", op.Path)
	res.WithMetadata("bytes_written", fmt.Sprintf("%d", len(op.Content)))
	return res, nil
}

func (e *Executor) deleteFile(op *operations.FileDelete, start time.Time) (*osl.ExecutionResult, error) {
	if err := os.Remove(op.Path); err != nil {
		return nil, osl.FilesystemError("delete", op.Path, err)
	}
	res := osl.Success(nil, start, time.Now().UTC())
	res.WithMetadata("path", op.Path)
	return res, nil
}

func (e *Executor) createDir(op *operations.DirCreate, start time.Time) (*osl.ExecutionResult, error) {
	var err error
	if op.Recursive {
		err = os.MkdirAll(op.Path, 0o755)
	} else {
		err = os.Mkdir(op.Path, 0o755)
	}
	if err != nil {
		return nil, osl.FilesystemError("mkdir", op.Path, err)
	}
	res := osl.Success(nil, start, time.Now().UTC())
	res.WithMetadata("path", op.Path)
	return res, nil
}

func (e *Executor) listDir(op *operations.DirList, start time.Time) (*osl.ExecutionResult, error) {
	entries, err := os.ReadDir(op.Path)
	if err != nil {
		return nil, osl.FilesystemError("list", op.Path, err)
	}
	rows := make([]dirEntry, 0, len(entries))
	for _, ent := range entries {
		row := dirEntry{Name: ent.Name(), IsDir: ent.IsDir()}
		if info, err := ent.Info(); err == nil {
			row.Size = info.Size()
			row.Mode = info.Mode().String()
		}
		rows = append(rows, row)
	}
	out, err := json.Marshal(rows)
	if err != nil {
		return nil, osl.FilesystemError("list", op.Path, err)
	}
	res := osl.NewResult(out, 0, start, time.Now().UTC())
	res.WithMetadata("path", op.Path)
	res.WithMetadata("entries", fmt.Sprintf("%d", len(rows)))
	return res, nil
}
