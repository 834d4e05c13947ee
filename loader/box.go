//go:build !js

package loader

import (
	"fmt"
	"io"
	"io/fs"
	"path"
	"sort"

	"github.com/gobuffalo/packd"
	"github.com/gobuffalo/packr"
)

// Box is a Source over a packr box, the assets compiled into the binary
type Box struct {
	box packr.Box
}

// NewBox wraps a packr box
func NewBox(box packr.Box) Box {
	return Box{box: box}
}

// Open implements Source
func (b Box) Open(name string) (io.ReadCloser, error) {
	name = Clean(name)
	if !b.box.Has(name) {
		return nil, fmt.Errorf("box %s: %s: %w", b.box.Path, name, fs.ErrNotExist)
	}
	return b.box.Open(name)
}

// List implements Lister
func (b Box) List(dir string) ([]string, error) {
	dir = Clean(dir)
	var names []string
	err := b.box.Walk(func(p string, _ packd.File) error {
		if path.Dir(path.Clean("/"+p)) == path.Clean("/"+dir) {
			names = append(names, path.Base(p))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("box %s: %s: %w", b.box.Path, dir, fs.ErrNotExist)
	}
	sort.Strings(names)
	return names, nil
}
