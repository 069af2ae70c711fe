package operations

import (
	"time"

	"github.com/airsstack/airssys-osl/pkg/osl"
)

// FileRead reads a file from the filesystem.
type FileRead struct {
	meta

	// Path is the file to read.
	Path string
}

// NewFileRead creates a file read operation for path.
func NewFileRead(path string) *FileRead {
	return &FileRead{meta: newMeta(), Path: path}
}

// WithID overrides the stamped operation ID.
func (o *FileRead) WithID(id string) *FileRead { o.setID(id); return o }

// WithCreatedAt overrides the stamped timestamp.
func (o *FileRead) WithCreatedAt(t time.Time) *FileRead { o.setCreatedAt(t); return o }

func (o *FileRead) Type() osl.OperationType { return osl.TypeFilesystem }

func (o *FileRead) RequiredPermissions() []osl.Permission {
	return []osl.Permission{osl.FilesystemRead(o.Path)}
}

// FileWrite writes content to a file, either replacing it or appending.
type FileWrite struct {
	meta

	// Path is the file to write.
	Path string

	// Content is the data to write.
	Content []byte

	// Append selects append mode instead of overwrite.
	Append bool
}

// NewFileWrite creates an overwriting write operation.
func NewFileWrite(path string, content []byte) *FileWrite {
	return &FileWrite{meta: newMeta(), Path: path, Content: content}
}

// NewFileAppend creates an appending write operation.
func NewFileAppend(path string, content []byte) *FileWrite {
	return &FileWrite{meta: newMeta(), Path: path, Content: content, Append: true}
}

// WithID overrides the stamped operation ID.
func (o *FileWrite) WithID(id string) *FileWrite { o.setID(id); return o }

func (o *FileWrite) Type() osl.OperationType { return osl.TypeFilesystem }

func (o *FileWrite) RequiredPermissions() []osl.Permission {
	return []osl.Permission{osl.FilesystemWrite(o.Path)}
}

// FileDelete removes a file.
type FileDelete struct {
	meta

	// Path is the file to delete.
	Path string
}

// NewFileDelete creates a file delete operation.
func NewFileDelete(path string) *FileDelete {
	return &FileDelete{meta: newMeta(), Path: path}
}

// WithID overrides the stamped operation ID.
func (o *FileDelete) WithID(id string) *FileDelete { o.setID(id); return o }

func (o *FileDelete) Type() osl.OperationType { return osl.TypeFilesystem }

func (o *FileDelete) RequiredPermissions() []osl.Permission {
	return []osl.Permission{osl.FilesystemWrite(o.Path)}
}

// DirCreate creates a directory.
type DirCreate struct {
	meta

	// Path is the directory to create.
	Path string

	// Recursive creates missing parent directories as well.
	Recursive bool
}

// NewDirCreate creates a directory create operation. Parents must exist.
func NewDirCreate(path string) *DirCreate {
	return &DirCreate{meta: newMeta(), Path: path}
}

// NewDirCreateAll creates a directory create operation that also creates
// missing parents.
func NewDirCreateAll(path string) *DirCreate {
	return &DirCreate{meta: newMeta(), Path: path, Recursive: true}
}

// WithID overrides the stamped operation ID.
func (o *DirCreate) WithID(id string) *DirCreate { o.setID(id); return o }

func (o *DirCreate) Type() osl.OperationType { return osl.TypeFilesystem }

func (o *DirCreate) RequiredPermissions() []osl.Permission {
	return []osl.Permission{osl.FilesystemWrite(o.Path)}
}

// DirList lists the entries of a directory. The result output is one
// entry name per line; directories carry a trailing separator.
type DirList struct {
	meta

	// Path is the directory to list.
	Path string
}

// NewDirList creates a directory listing operation.
func NewDirList(path string) *DirList {
	return &DirList{meta: newMeta(), Path: path}
}

// WithID overrides the stamped operation ID.
func (o *DirList) WithID(id string) *DirList { o.setID(id); return o }

func (o *DirList) Type() osl.OperationType { return osl.TypeFilesystem }

func (o *DirList) RequiredPermissions() []osl.Permission {
	return []osl.Permission{osl.FilesystemRead(o.Path)}
}
