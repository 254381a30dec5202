// Package source opens upload inputs from local paths or any VFS URI
// (file://, mem://, s3://, gs://, az://, ftp://, sftp://).
package source

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/c2fo/vfs/v7/vfssimple"
)

// ErrNotFound is returned when the referenced file does not exist.
var ErrNotFound = errors.New("source does not exist")

// Source is a seekable, named upload input.
type Source interface {
	io.ReadSeekCloser
	Name() string
}

// IsURI reports whether ref should be resolved through VFS rather than the
// local filesystem.
func IsURI(ref string) bool {
	return strings.Contains(ref, "://")
}

// Open resolves ref to a Source. Plain paths are opened with os.Open.
func Open(ref string) (Source, error) {
	if ref == "" {
		return nil, fmt.Errorf("empty source")
	}

	if !IsURI(ref) {
		f, err := os.Open(ref)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("%s: %w", ref, ErrNotFound)
			}
			return nil, fmt.Errorf("failed to open %s: %w", ref, err)
		}
		return f, nil
	}

	f, err := vfssimple.NewFile(ref)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", ref, err)
	}
	exists, err := f.Exists()
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", ref, err)
	}
	if !exists {
		return nil, fmt.Errorf("%s: %w", ref, ErrNotFound)
	}
	return f, nil
}
