package loader

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// Source opens assets by slash separated path. Missing assets wrap
// fs.ErrNotExist.
type Source interface {
	Open(name string) (io.ReadCloser, error)
}

// Lister is a Source that can list the files of a directory
type Lister interface {
	Source

	// List returns the file names directly inside dir, sorted
	List(dir string) ([]string, error)
}

// Clean turns a request path into a source path: slash separated,
// relative and unable to climb out of the source root
func Clean(name string) string {
	return strings.TrimPrefix(path.Clean("/"+name), "/")
}

// Dir is a Source reading from a directory on disk
type Dir string

// Open implements Source, directories are not assets
func (d Dir) Open(name string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(string(d), filepath.FromSlash(Clean(name))))
	if err != nil {
		return nil, err
	}
	if info, err := f.Stat(); err != nil {
		f.Close()
		return nil, err
	} else if info.IsDir() {
		f.Close()
		return nil, fmt.Errorf("%s is a directory: %w", name, fs.ErrNotExist)
	}
	return f, nil
}

// List implements Lister
func (d Dir) List(dir string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(string(d), filepath.FromSlash(Clean(dir))))
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// HTTP is a Source fetching assets relative to a base URL. In the
// browser requests go through fetch.
type HTTP struct {
	Base   string
	Client *http.Client
}

// Open implements Source
func (h HTTP) Open(name string) (io.ReadCloser, error) {
	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}

	url := strings.TrimSuffix(h.Base, "/") + "/" + Clean(name)
	resp, err := client.Get(url)
	if err != nil {
		return nil, err
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		resp.Body.Close()
		return nil, fmt.Errorf("GET %s: %w", url, fs.ErrNotExist)
	case resp.StatusCode != http.StatusOK:
		resp.Body.Close()
		return nil, fmt.Errorf("GET %s: %s", url, resp.Status)
	}
	return resp.Body, nil
}

// Sub roots a Source at a directory of another one
type Sub struct {
	Source Source
	Dir    string
}

// Open implements Source
func (s Sub) Open(name string) (io.ReadCloser, error) {
	return s.Source.Open(path.Join(Clean(s.Dir), Clean(name)))
}

// List implements Lister when the wrapped source does
func (s Sub) List(dir string) ([]string, error) {
	l, ok := s.Source.(Lister)
	if !ok {
		return nil, fmt.Errorf("%s: listing unsupported: %w", dir, fs.ErrNotExist)
	}
	return l.List(path.Join(Clean(s.Dir), Clean(dir)))
}

// Chain tries its sources in order, the first one having the asset wins
type Chain []Source

// Open implements Source
func (c Chain) Open(name string) (io.ReadCloser, error) {
	err := fmt.Errorf("%s: %w", name, fs.ErrNotExist)
	for _, s := range c {
		r, serr := s.Open(name)
		if serr == nil {
			return r, nil
		}
		if !errors.Is(serr, fs.ErrNotExist) {
			err = serr
		}
	}
	return nil, err
}

// List implements Lister by merging the listings of every source that
// can list dir
func (c Chain) List(dir string) ([]string, error) {
	seen := make(map[string]bool)
	found := false
	for _, s := range c {
		l, ok := s.(Lister)
		if !ok {
			continue
		}
		names, err := l.List(dir)
		if err != nil {
			continue
		}
		found = true
		for _, n := range names {
			seen[n] = true
		}
	}
	if !found {
		return nil, fmt.Errorf("%s: %w", dir, fs.ErrNotExist)
	}

	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names, nil
}
