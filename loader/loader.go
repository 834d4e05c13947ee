// Package loader fetches shader sources and textures for the graphics
// context. Shader sources are read synchronously, textures are decoded in
// the background and uploaded on the goroutine draining the main queue.
package loader

import (
	"errors"
	"fmt"
	"image"
	"io"
	"time"

	"github.com/ndev/portfolio/core"
	"github.com/ndev/portfolio/gfx"
	log "github.com/sirupsen/logrus"
)

// package errors
var (
	ErrIO       = errors.New("asset read failed")
	ErrDecode   = errors.New("image decode failed")
	ErrTimeout  = errors.New("asset load timed out")
	ErrMismatch = errors.New("names and paths differ in length")
)

// New creates a loader registering into ctx. Completions of background
// work are posted to queue.
func New(ctx *gfx.Context, src Source, queue *core.Queue, cfg core.Configuration) *Loader {
	return &Loader{
		gfx:     ctx,
		source:  src,
		queue:   queue,
		maxSize: cfg.Renderer.MaxTextureSize,
		timeout: cfg.Assets.LoadTimeout,
	}
}

// Loader populates a graphics context from a Source
type Loader struct {
	gfx     *gfx.Context
	source  Source
	queue   *core.Queue
	maxSize int
	timeout time.Duration
}

// ShaderSource reads a shader source, blocking until it is available
func (l *Loader) ShaderSource(path string) (string, error) {
	r, err := l.source.Open(path)
	if err != nil {
		return "", fmt.Errorf("%s: %w: %w", path, ErrIO, err)
	}
	defer r.Close()

	src, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("%s: %w: %w", path, ErrIO, err)
	}
	return string(src), nil
}

// Program reads both shader stages and registers them under name. A
// failure affects only this program.
func (l *Loader) Program(name, vertexPath, fragmentPath string) error {
	vertex, err := l.ShaderSource(vertexPath)
	if err != nil {
		log.WithError(err).WithField("shader", name).Error("vertex source unavailable")
		return err
	}
	fragment, err := l.ShaderSource(fragmentPath)
	if err != nil {
		log.WithError(err).WithField("shader", name).Error("fragment source unavailable")
		return err
	}
	return l.gfx.RegisterShader(name, vertex, fragment)
}

// Texture registers a placeholder under name and returns. The image is
// fetched and decoded in the background, uploaded on the next queue drain,
// then done is called there. On failure the placeholder stays.
func (l *Loader) Texture(name, path string, done func(error)) {
	if err := l.gfx.RegisterPlaceholder(name); err != nil {
		log.WithError(err).WithField("texture", name).Warn("placeholder unavailable")
	}

	go func() {
		img, err := l.decode(path)
		l.queue.Post(func() {
			if err == nil {
				err = l.gfx.RegisterTexture(name, img)
			}
			if err != nil {
				log.WithError(err).WithFields(log.Fields{
					"texture": name,
					"path":    path,
				}).Warn("texture load failed, keeping placeholder")
			}
			if done != nil {
				done(err)
			}
		})
	}()
}

func (l *Loader) decode(path string) (*image.RGBA, error) {
	r, err := l.source.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", path, ErrIO, err)
	}
	defer r.Close()

	img, err := DecodeImage(r, l.maxSize)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", path, ErrDecode, err)
	}
	return img, nil
}

// All loads every texture names[i] from paths[i] and calls done once,
// after the last of them resolved. With a load timeout configured the
// join gives up with ErrTimeout instead of waiting forever.
func (l *Loader) All(names, paths []string, done func(error)) error {
	if len(names) != len(paths) {
		return fmt.Errorf("%d names, %d paths: %w", len(names), len(paths), ErrMismatch)
	}
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if seen[n] {
			return fmt.Errorf("texture %q listed twice", n)
		}
		seen[n] = true
	}

	join := NewJoin(names, done)
	if l.timeout > 0 && len(names) > 0 {
		time.AfterFunc(l.timeout, func() {
			l.queue.Post(join.Expire)
		})
	}
	for i := range names {
		name := names[i]
		l.Texture(name, paths[i], func(err error) {
			join.Resolve(name, err)
		})
	}
	return nil
}
