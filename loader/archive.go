//go:build !js

package loader

import (
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/ndev/portfolio/utility/kar"
	"golang.org/x/exp/mmap"
)

// Archive is a Source over a memory mapped kar archive
type Archive struct {
	archive *kar.Archive
	mapped  *mmap.ReaderAt
}

// OpenArchive maps the kar file at name
func OpenArchive(name string) (*Archive, error) {
	r, err := mmap.Open(name)
	if err != nil {
		return nil, err
	}
	ar, err := kar.Open(r)
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &Archive{archive: ar, mapped: r}, nil
}

// Open implements Source
func (a *Archive) Open(name string) (io.ReadCloser, error) {
	r, err := a.archive.Open(Clean(name))
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, fs.ErrNotExist)
	}
	return io.NopCloser(r), nil
}

// List implements Lister
func (a *Archive) List(dir string) ([]string, error) {
	prefix := Clean(dir) + "/"
	var names []string
	for _, n := range a.archive.Names() {
		if rest := strings.TrimPrefix(n, prefix); rest != n && !strings.Contains(rest, "/") {
			names = append(names, path.Base(n))
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%s: %w", dir, fs.ErrNotExist)
	}
	return names, nil
}

// Names lists every file in the archive
func (a *Archive) Names() []string {
	return a.archive.Names()
}

// Close unmaps the archive
func (a *Archive) Close() error {
	return a.mapped.Close()
}
