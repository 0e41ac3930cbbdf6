package codec

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Source identifies where a form definition comes from so loaders can work on
// files, fs.FS entries or in-memory payloads alike.
type Source interface {
	Kind() SourceKind
	Location() string
	read() ([]byte, error)
}

// SourceKind enumerates the loader modalities.
type SourceKind string

const (
	SourceKindFile  SourceKind = "file"
	SourceKindFS    SourceKind = "fs"
	SourceKindBytes SourceKind = "bytes"
)

type fileSource struct {
	path string
}

func (s fileSource) Kind() SourceKind { return SourceKindFile }
func (s fileSource) Location() string { return s.path }

func (s fileSource) read() ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("codec: read %s: %w", s.path, err)
	}
	return data, nil
}

// SourceFromFile returns a Source pointing to a file path.
func SourceFromFile(path string) Source {
	return fileSource{path: filepath.Clean(path)}
}

type fsSource struct {
	fsys fs.FS
	name string
}

func (s fsSource) Kind() SourceKind { return SourceKindFS }
func (s fsSource) Location() string { return s.name }

func (s fsSource) read() ([]byte, error) {
	if s.fsys == nil {
		return nil, fmt.Errorf("codec: fs source %s has no filesystem", s.name)
	}
	data, err := fs.ReadFile(s.fsys, s.name)
	if err != nil {
		return nil, fmt.Errorf("codec: read %s: %w", s.name, err)
	}
	return data, nil
}

// SourceFromFS returns a Source identifying a file inside fsys, such as an
// embedded directory of form definitions.
func SourceFromFS(fsys fs.FS, name string) Source {
	return fsSource{fsys: fsys, name: name}
}

type bytesSource struct {
	name string
	data []byte
}

func (s bytesSource) Kind() SourceKind { return SourceKindBytes }
func (s bytesSource) Location() string { return s.name }

func (s bytesSource) read() ([]byte, error) {
	return s.data, nil
}

// SourceFromBytes wraps an in-memory payload. The name's extension selects the
// format, so "signup.yaml" decodes as YAML.
func SourceFromBytes(name string, data []byte) Source {
	return bytesSource{name: name, data: append([]byte(nil), data...)}
}
