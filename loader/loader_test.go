package loader_test

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ndev/portfolio/core"
	"github.com/ndev/portfolio/device/headless"
	"github.com/ndev/portfolio/gfx"
	"github.com/ndev/portfolio/loader"
)

const vertexSrc = "attribute vec3 aPosition;\nvoid main() { gl_Position = vec4(aPosition, 1.0); }\n"
const fragmentSrc = "void main() { gl_FragColor = vec4(1.0); }\n"

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0x80
	}
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	buf := bytes.NewBuffer(nil)
	if err := png.Encode(buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func assetDir(t *testing.T) loader.Dir {
	t.Helper()
	dir := t.TempDir()
	files := map[string][]byte{
		"shaders/vertex.glsl":   []byte(vertexSrc),
		"shaders/fragment.glsl": []byte(fragmentSrc),
		"images/bg.png":         pngBytes(t, 8, 4),
		"images/mask.png":       pngBytes(t, 2, 2),
		"images/broken.png":     []byte("not a png"),
	}
	for name, data := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		os.MkdirAll(filepath.Dir(p), 0755)
		if err := os.WriteFile(p, data, 0644); err != nil {
			t.Fatal(err)
		}
	}
	return loader.Dir(dir)
}

type fixture struct {
	dev    *headless.Device
	gfx    *gfx.Context
	queue  *core.Queue
	loader *loader.Loader
}

func newFixture(t *testing.T, src loader.Source, cfg core.Configuration) fixture {
	dev := headless.New(64, 64)
	ctx := gfx.WithDevice(dev)
	queue := core.NewQueue()
	return fixture{dev, ctx, queue, loader.New(ctx, src, queue, cfg)}
}

// drainUntil plays the render loop: it drains the queue until cond holds
func drainUntil(t *testing.T, q *core.Queue, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not reached")
		}
		q.Drain()
		time.Sleep(time.Millisecond)
	}
}

func TestShaderSource(t *testing.T) {
	f := newFixture(t, assetDir(t), core.Configuration{})

	src, err := f.loader.ShaderSource("/shaders/vertex.glsl")
	if err != nil {
		t.Fatal(err)
	}
	if src != vertexSrc {
		t.Errorf("read %q", src)
	}

	_, err = f.loader.ShaderSource("/shaders/missing.glsl")
	if !errors.Is(err, loader.ErrIO) || !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected ErrIO wrapping fs.ErrNotExist, got %v", err)
	}
}

func TestProgram(t *testing.T) {
	f := newFixture(t, assetDir(t), core.Configuration{})

	if err := f.loader.Program("main", "shaders/vertex.glsl", "shaders/fragment.glsl"); err != nil {
		t.Fatal(err)
	}
	if _, err := f.gfx.Program("main"); err != nil {
		t.Error(err)
	}

	if err := f.loader.Program("other", "shaders/vertex.glsl", "shaders/nope.glsl"); !errors.Is(err, loader.ErrIO) {
		t.Errorf("expected ErrIO, got %v", err)
	}
	if _, err := f.gfx.Program("other"); !errors.Is(err, gfx.ErrResourceNotFound) {
		t.Error("program with a missing stage must not be registered")
	}
}

func TestTexturePlaceholderThenUpload(t *testing.T) {
	f := newFixture(t, assetDir(t), core.Configuration{})

	var result error
	done := false
	f.loader.Texture("uSampler", "images/bg.png", func(err error) {
		result, done = err, true
	})

	tex, err := f.gfx.Texture("uSampler")
	if err != nil {
		t.Fatal("placeholder must be registered before Texture returns")
	}
	if w, h, _ := f.dev.TextureSize(tex); w != 1 || h != 1 {
		t.Errorf("placeholder size %dx%d", w, h)
	}

	drainUntil(t, f.queue, func() bool { return done })
	if result != nil {
		t.Fatal(result)
	}
	tex, _ = f.gfx.Texture("uSampler")
	if w, h, _ := f.dev.TextureSize(tex); w != 8 || h != 4 {
		t.Errorf("texture size %dx%d, want 8x4", w, h)
	}
}

func TestTextureDecodeFailureKeepsPlaceholder(t *testing.T) {
	f := newFixture(t, assetDir(t), core.Configuration{})

	var result error
	done := false
	f.loader.Texture("uSampler", "images/broken.png", func(err error) {
		result, done = err, true
	})
	drainUntil(t, f.queue, func() bool { return done })

	if !errors.Is(result, loader.ErrDecode) {
		t.Errorf("expected ErrDecode, got %v", result)
	}
	tex, _ := f.gfx.Texture("uSampler")
	if pix := f.dev.TexturePixels(tex); len(pix) != 4 || pix[2] != 255 {
		t.Errorf("placeholder replaced: %v", pix)
	}
}

func TestTextureDownscale(t *testing.T) {
	cfg := core.Configuration{}
	cfg.Renderer.MaxTextureSize = 4
	f := newFixture(t, assetDir(t), cfg)

	done := false
	f.loader.Texture("bg", "images/bg.png", func(error) { done = true })
	drainUntil(t, f.queue, func() bool { return done })

	tex, _ := f.gfx.Texture("bg")
	if w, h, _ := f.dev.TextureSize(tex); w != 4 || h != 2 {
		t.Errorf("texture size %dx%d, want 4x2", w, h)
	}
}

func TestAll(t *testing.T) {
	f := newFixture(t, assetDir(t), core.Configuration{})

	calls := 0
	var result error
	err := f.loader.All(
		[]string{"uSampler", "uDistortedMask"},
		[]string{"images/bg.png", "images/mask.png"},
		func(err error) { calls++; result = err },
	)
	if err != nil {
		t.Fatal(err)
	}
	drainUntil(t, f.queue, func() bool { return calls > 0 })
	if calls != 1 || result != nil {
		t.Errorf("calls=%d result=%v", calls, result)
	}
	for _, name := range []string{"uSampler", "uDistortedMask"} {
		tex, _ := f.gfx.Texture(name)
		if w, _, _ := f.dev.TextureSize(tex); w == 1 {
			t.Errorf("%s still holds the placeholder", name)
		}
	}
}

func TestAllMismatch(t *testing.T) {
	f := newFixture(t, assetDir(t), core.Configuration{})
	err := f.loader.All([]string{"a"}, nil, func(error) { t.Error("must not fire") })
	if !errors.Is(err, loader.ErrMismatch) {
		t.Errorf("expected ErrMismatch, got %v", err)
	}
}

// stalled blocks opening one path until released
type stalled struct {
	loader.Source
	path    string
	release chan struct{}
}

func (s stalled) Open(name string) (io.ReadCloser, error) {
	if name == s.path {
		<-s.release
	}
	return s.Source.Open(name)
}

func TestAllTimeout(t *testing.T) {
	src := stalled{assetDir(t), "images/mask.png", make(chan struct{})}
	defer close(src.release)

	cfg := core.Configuration{}
	cfg.Assets.LoadTimeout = 20 * time.Millisecond
	f := newFixture(t, src, cfg)

	calls := 0
	var result error
	f.loader.All(
		[]string{"uSampler", "uDistortedMask"},
		[]string{"images/bg.png", "images/mask.png"},
		func(err error) { calls++; result = err },
	)
	drainUntil(t, f.queue, func() bool { return calls > 0 })

	if !errors.Is(result, loader.ErrTimeout) {
		t.Errorf("expected ErrTimeout, got %v", result)
	}
	if _, err := f.gfx.Texture("uDistortedMask"); err != nil {
		t.Error("stalled texture should keep its placeholder")
	}
}
