// Package gfx is the graphics context registry. A Context owns the device
// and every named GPU object the background effect uses; other packages
// reach those objects only through their names.
package gfx

import (
	"errors"
	"fmt"
	"image"
	"sort"

	"github.com/ndev/portfolio/core"
	"github.com/ndev/portfolio/device"
	log "github.com/sirupsen/logrus"
	xdraw "golang.org/x/image/draw"
)

// package errors
var (
	ErrResourceNotFound = errors.New("resource not found")
	ErrInvalidBinding   = errors.New("attribute not used by shader")
)

// Kind names a class of registered resources
type Kind string

// Resource kinds held by a Context
const (
	ShaderKind      Kind = "shader"
	BufferKind      Kind = "buffer"
	FramebufferKind Kind = "framebuffer"
	BindingKind     Kind = "binding"
	TextureKind     Kind = "texture"
)

// Binding ties a shader attribute to a vertex buffer
type Binding struct {
	Attribute string
	Location  int
	Buffer    string
	Size      int
	Shader    string
}

// Target is an offscreen render target, a framebuffer and the texture it
// renders into
type Target struct {
	Framebuffer   device.Framebuffer
	Texture       device.Texture
	Width, Height int
}

// placeholder is the texel shown until a texture finishes loading
var placeholder = [4]uint8{0, 0, 255, 255}

// NewContext opens a device on the surface and returns an empty registry
func NewContext(s device.Surface) (*Context, error) {
	dev, err := s.Open()
	if err != nil {
		if !errors.Is(err, device.ErrContextUnavailable) {
			err = fmt.Errorf("%v: %w", err, device.ErrContextUnavailable)
		}
		return nil, err
	}
	return WithDevice(dev), nil
}

// WithDevice wraps an already opened device
func WithDevice(dev device.Device) *Context {
	c := &Context{device: dev}
	c.reset()
	return c
}

// Context is the graphics context registry. It is not safe for concurrent
// use, all calls come from the goroutine that owns the device.
type Context struct {
	device device.Device

	programs     map[string]device.Program
	buffers      map[string]device.Buffer
	framebuffers map[string]Target
	bindings     map[string]Binding
	textures     map[string]device.Texture
	textureSizes map[string]image.Point

	current string
}

func (c *Context) reset() {
	c.programs = make(map[string]device.Program)
	c.buffers = make(map[string]device.Buffer)
	c.framebuffers = make(map[string]Target)
	c.bindings = make(map[string]Binding)
	c.textures = make(map[string]device.Texture)
	c.textureSizes = make(map[string]image.Point)
	c.current = ""
}

func notFound(kind Kind, name string) error {
	log.WithFields(log.Fields{
		"kind": kind,
		"name": name,
	}).Warn("resource not found")
	return fmt.Errorf("%s %q: %w", kind, name, ErrResourceNotFound)
}

// Size returns the surface size in pixels
func (c *Context) Size() (int, int) {
	return c.device.Size()
}

// Extension enables a device extension, unsupported ones are logged
func (c *Context) Extension(name string) bool {
	if c.device.Extension(name) {
		return true
	}
	log.WithField("extension", name).Warn("extension not supported")
	return false
}

// CheckErrors logs every pending device error and returns the first one
func (c *Context) CheckErrors() error {
	var first error
	for i := 0; i < 8; i++ {
		err := c.device.Error()
		if err == nil {
			break
		}
		log.WithError(err).Error("device error")
		if first == nil {
			first = err
		}
	}
	return first
}

// RegisterShader compiles and links a program under name. When the device
// rejects the sources the previous program under name stays in place.
func (c *Context) RegisterShader(name, vertexSrc, fragmentSrc string) error {
	p, err := c.device.CreateProgram(vertexSrc, fragmentSrc)
	if err != nil {
		log.WithError(err).WithField("shader", name).Error("shader program rejected")
		return fmt.Errorf("shader %q: %w", name, err)
	}

	if old, ok := c.programs[name]; ok {
		c.device.DeleteProgram(old)
		if c.current == name {
			c.current = ""
		}
	}
	c.programs[name] = p
	c.relocate(name)
	return nil
}

// relocate refreshes the attribute locations of bindings pointing at a
// re-registered shader
func (c *Context) relocate(shader string) {
	p := c.programs[shader]
	for attr, b := range c.bindings {
		if b.Shader != shader {
			continue
		}
		b.Location = c.device.AttribLocation(p, attr)
		if b.Location < 0 {
			log.WithFields(log.Fields{
				"shader":    shader,
				"attribute": attr,
			}).Warn("binding dropped, attribute gone from shader")
			delete(c.bindings, attr)
			continue
		}
		c.bindings[attr] = b
	}
}

// RegisterBuffer uploads static vertex data under name
func (c *Context) RegisterBuffer(name string, data []float32) error {
	b, err := c.device.CreateBuffer(data)
	if err != nil {
		log.WithError(err).WithField("buffer", name).Error("buffer allocation failed")
		return fmt.Errorf("buffer %q: %w", name, err)
	}
	if old, ok := c.buffers[name]; ok {
		c.device.DeleteBuffer(old)
	}
	c.buffers[name] = b
	return nil
}

// RegisterFramebuffer creates an offscreen target of width x height
func (c *Context) RegisterFramebuffer(name string, width, height int) error {
	tex, err := c.device.CreateTexture(nil, width, height)
	if err != nil {
		log.WithError(err).WithField("framebuffer", name).Error("target texture allocation failed")
		return fmt.Errorf("framebuffer %q: %w", name, err)
	}
	fb, err := c.device.CreateFramebuffer(tex)
	if err != nil {
		c.device.DeleteTexture(tex)
		log.WithError(err).WithField("framebuffer", name).Error("framebuffer creation failed")
		return fmt.Errorf("framebuffer %q: %w", name, err)
	}

	if old, ok := c.framebuffers[name]; ok {
		c.device.DeleteFramebuffer(old.Framebuffer)
		c.device.DeleteTexture(old.Texture)
	}
	c.framebuffers[name] = Target{
		Framebuffer: fb,
		Texture:     tex,
		Width:       width,
		Height:      height,
	}
	return nil
}

// RegisterBinding ties the attribute of shader to buffer, size floats per
// vertex. Both the buffer and the shader must already be registered.
func (c *Context) RegisterBinding(buffer, shader, attribute string, size int) error {
	if _, ok := c.buffers[buffer]; !ok {
		return notFound(BufferKind, buffer)
	}
	p, ok := c.programs[shader]
	if !ok {
		return notFound(ShaderKind, shader)
	}

	location := c.device.AttribLocation(p, attribute)
	if location < 0 {
		log.WithFields(log.Fields{
			"shader":    shader,
			"attribute": attribute,
		}).Error("attribute not found in shader")
		return fmt.Errorf("%s.%s: %w", shader, attribute, ErrInvalidBinding)
	}

	c.bindings[attribute] = Binding{
		Attribute: attribute,
		Location:  location,
		Buffer:    buffer,
		Size:      size,
		Shader:    shader,
	}
	return nil
}

// RegisterTexture uploads img under name, replacing whatever was there,
// the loading placeholder included. A texture of the same size is updated
// in place and keeps its handle.
func (c *Context) RegisterTexture(name string, img image.Image) error {
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Rect.Min != (image.Point{}) {
		b := img.Bounds()
		rgba = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		xdraw.Draw(rgba, rgba.Rect, img, b.Min, xdraw.Src)
	}

	size := rgba.Rect.Size()
	if old, ok := c.textures[name]; ok && c.textureSizes[name] == size {
		c.device.UpdateTexture(old, rgba)
		return nil
	}

	t, err := c.device.CreateTexture(rgba, rgba.Rect.Dx(), rgba.Rect.Dy())
	if err != nil {
		log.WithError(err).WithField("texture", name).Error("texture upload failed")
		return fmt.Errorf("texture %q: %w", name, err)
	}
	if old, ok := c.textures[name]; ok {
		c.device.DeleteTexture(old)
	}
	c.textures[name] = t
	c.textureSizes[name] = size
	return nil
}

// RegisterPlaceholder registers a single opaque texel under name
func (c *Context) RegisterPlaceholder(name string) error {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	copy(img.Pix, placeholder[:])
	return c.RegisterTexture(name, img)
}

// Program looks up a registered shader program
func (c *Context) Program(name string) (device.Program, error) {
	if p, ok := c.programs[name]; ok {
		return p, nil
	}
	return 0, notFound(ShaderKind, name)
}

// Buffer looks up a registered vertex buffer
func (c *Context) Buffer(name string) (device.Buffer, error) {
	if b, ok := c.buffers[name]; ok {
		return b, nil
	}
	return 0, notFound(BufferKind, name)
}

// Target looks up a registered offscreen target
func (c *Context) Target(name string) (Target, error) {
	if t, ok := c.framebuffers[name]; ok {
		return t, nil
	}
	return Target{}, notFound(FramebufferKind, name)
}

// Binding looks up the binding of an attribute
func (c *Context) Binding(attribute string) (Binding, error) {
	if b, ok := c.bindings[attribute]; ok {
		return b, nil
	}
	return Binding{}, notFound(BindingKind, attribute)
}

// Texture looks up a registered texture
func (c *Context) Texture(name string) (device.Texture, error) {
	if t, ok := c.textures[name]; ok {
		return t, nil
	}
	return 0, notFound(TextureKind, name)
}

// Names lists the registered names of a kind in sorted order
func (c *Context) Names(kind Kind) []string {
	var names []string
	switch kind {
	case ShaderKind:
		for n := range c.programs {
			names = append(names, n)
		}
	case BufferKind:
		for n := range c.buffers {
			names = append(names, n)
		}
	case FramebufferKind:
		for n := range c.framebuffers {
			names = append(names, n)
		}
	case BindingKind:
		for n := range c.bindings {
			names = append(names, n)
		}
	case TextureKind:
		for n := range c.textures {
			names = append(names, n)
		}
	}
	sort.Strings(names)
	return names
}

// Teardown releases every GPU object and empties the registry. Calling it
// again does nothing.
func (c *Context) Teardown() {
	for _, p := range c.programs {
		c.device.DeleteProgram(p)
	}
	for _, b := range c.buffers {
		c.device.DeleteBuffer(b)
	}
	for _, t := range c.framebuffers {
		c.device.DeleteFramebuffer(t.Framebuffer)
		c.device.DeleteTexture(t.Texture)
	}
	for _, t := range c.textures {
		c.device.DeleteTexture(t)
	}
	c.reset()
}

// Release implements core.Releasable
func (c *Context) Release() {
	c.Teardown()
}

var _ core.Releasable = (*Context)(nil)
