// Package device describes the graphics device the portfolio background is
// drawn with. Backends live in sub packages: headless (recording, used by
// tests), webgl (browser) and gldevice (desktop OpenGL).
package device

import (
	"errors"
	"image"
)

// package errors
var (
	ErrContextUnavailable = errors.New("graphics context unavailable")
	ErrCompile            = errors.New("shader compile failed")
	ErrLink               = errors.New("program link failed")
	ErrIncomplete         = errors.New("framebuffer incomplete")
	ErrAllocation         = errors.New("device object allocation failed")
)

// Handles of device side objects. Zero means "none", for Framebuffer
// it stands for the default surface.
type (
	Program     uint32
	Buffer      uint32
	Texture     uint32
	Framebuffer uint32
)

// Uniform is a uniform location inside a linked program, NoUniform when
// the program does not use the name.
type Uniform int32

// NoUniform is returned for names a program does not declare
const NoUniform Uniform = -1

// Primitive selects how DrawArrays assembles vertices
type Primitive int

// Primitives used by the background effect
const (
	Points Primitive = iota
	Triangles
	TriangleStrip
)

// BlendFactor is a blend equation factor
type BlendFactor int

// Blend factors
const (
	Zero BlendFactor = iota
	One
	SrcAlpha
	OneMinusSrcAlpha
)

// Device is the set of calls the renderer needs. All calls are made from
// the goroutine owning the device.
type Device interface {
	// Size returns the drawable surface size in pixels
	Size() (width, height int)

	// Extension enables the named extension, false when unsupported
	Extension(name string) bool

	// Error returns the pending device error, nil when there is none
	Error() error

	CreateProgram(vertexSrc, fragmentSrc string) (Program, error)
	DeleteProgram(Program)
	UseProgram(Program)

	// AttribLocation returns -1 when the program has no such attribute
	AttribLocation(p Program, name string) int
	UniformLocation(p Program, name string) Uniform
	Uniform1f(u Uniform, v float32)
	Uniform1i(u Uniform, v int32)
	Uniform2f(u Uniform, x, y float32)

	// CreateBuffer uploads static vertex data
	CreateBuffer(data []float32) (Buffer, error)
	DeleteBuffer(Buffer)

	// EnableAttrib binds buf to the attribute location with size float
	// components per vertex
	EnableAttrib(location int, buf Buffer, size int)
	DisableAttrib(location int)

	// CreateTexture allocates a texture and uploads img, a nil img
	// allocates width x height uninitialised texels
	CreateTexture(img *image.RGBA, width, height int) (Texture, error)
	UpdateTexture(t Texture, img *image.RGBA)
	DeleteTexture(Texture)
	BindTexture(unit int, t Texture)

	// CreateFramebuffer pairs a new framebuffer with the colour texture
	CreateFramebuffer(color Texture) (Framebuffer, error)
	DeleteFramebuffer(Framebuffer)

	// BindFramebuffer makes fb the draw target and sets the viewport
	// to width x height, zero fb is the default surface
	BindFramebuffer(fb Framebuffer, width, height int)

	Clear(r, g, b, a float32)
	EnableBlend(src, dst BlendFactor)
	DisableBlend()
	DrawArrays(mode Primitive, first, count int)
}

// Surface is something a Device can be opened on: a canvas, a window or
// a headless target.
type Surface interface {
	// Open creates the device, wrapping ErrContextUnavailable when
	// the platform cannot provide one
	Open() (Device, error)
}
