//go:build !js

// Package gldevice draws on a desktop OpenGL 3.3 core context opened in an
// SDL window. Shaders are written in GLSL ES 1.00 for the browser and are
// translated before compiling.
package gldevice

import (
	"fmt"
	"image"
	"strings"

	"github.com/go-gl/gl/v3.3-core/gl"
	log "github.com/sirupsen/logrus"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/ndev/portfolio/core"
	"github.com/ndev/portfolio/device"
	"github.com/ndev/portfolio/device/glsl"
)

// coreFeatures are browser extensions that are part of GL 3.3 core
var coreFeatures = map[string]bool{
	"OES_standard_derivatives": true,
	"ANGLE_instanced_arrays":   true,
}

// Window is an SDL window surface
type Window struct {
	Title         string
	Width, Height int
	VSync         bool

	window  *sdl.Window
	context sdl.GLContext
	device  *Device
}

// Open implements device.Surface. SDL video must be used from the thread
// that called Open for the lifetime of the window.
func (w *Window) Open() (device.Device, error) {
	if err := sdl.InitSubSystem(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return nil, fmt.Errorf("%w: %v", device.ErrContextUnavailable, err)
	}

	sdl.GLSetAttribute(sdl.GL_CONTEXT_MAJOR_VERSION, 3)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_MINOR_VERSION, 3)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_PROFILE_MASK, sdl.GL_CONTEXT_PROFILE_CORE)
	sdl.GLSetAttribute(sdl.GL_DOUBLEBUFFER, 1)

	window, err := sdl.CreateWindow(w.Title, sdl.WINDOWPOS_CENTERED, sdl.WINDOWPOS_CENTERED,
		int32(w.Width), int32(w.Height), sdl.WINDOW_OPENGL|sdl.WINDOW_RESIZABLE|sdl.WINDOW_ALLOW_HIGHDPI)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", device.ErrContextUnavailable, err)
	}

	context, err := window.GLCreateContext()
	if err != nil {
		window.Destroy()
		return nil, fmt.Errorf("%w: %v", device.ErrContextUnavailable, err)
	}

	if err := gl.Init(); err != nil {
		sdl.GLDeleteContext(context)
		window.Destroy()
		return nil, fmt.Errorf("%w: %v", device.ErrContextUnavailable, err)
	}

	if w.VSync {
		if err := sdl.GLSetSwapInterval(1); err != nil {
			log.WithError(err).Warn("vsync unavailable")
		}
	}

	w.window = window
	w.context = context
	w.device = newDevice(window)

	log.WithFields(log.Fields{
		"version":  gl.GoStr(gl.GetString(gl.VERSION)),
		"renderer": gl.GoStr(gl.GetString(gl.RENDERER)),
	}).Info("opengl context created")
	return w.device, nil
}

// Swap presents the drawn frame
func (w *Window) Swap() {
	if w.window != nil {
		w.window.GLSwap()
	}
}

// SetTitle changes the window title
func (w *Window) SetTitle(title string) {
	w.Title = title
	if w.window != nil {
		w.window.SetTitle(title)
	}
}

// Close releases the device objects, the context and the window
func (w *Window) Close() {
	if w.device != nil {
		w.device.release()
		w.device = nil
	}
	if w.window != nil {
		sdl.GLDeleteContext(w.context)
		w.window.Destroy()
		w.window = nil
	}
	sdl.QuitSubSystem(sdl.INIT_VIDEO | sdl.INIT_EVENTS)
}

// Device implements device.Device over the current GL context
type Device struct {
	window *sdl.Window
	vao    uint32
}

func newDevice(window *sdl.Window) *Device {
	d := &Device{window: window}

	// core profile refuses attribute pointers without a bound vertex array
	gl.GenVertexArrays(1, &d.vao)
	gl.BindVertexArray(d.vao)
	gl.Enable(gl.PROGRAM_POINT_SIZE)
	return d
}

func (d *Device) release() {
	gl.BindVertexArray(0)
	gl.DeleteVertexArrays(1, &d.vao)
}

// Size implements device.Device
func (d *Device) Size() (int, int) {
	w, h := d.window.GLGetDrawableSize()
	return int(w), int(h)
}

// Extension implements device.Device
func (d *Device) Extension(name string) bool {
	if coreFeatures[name] {
		return true
	}
	var count int32
	gl.GetIntegerv(gl.NUM_EXTENSIONS, &count)
	for i := int32(0); i < count; i++ {
		ext := gl.GoStr(gl.GetStringi(gl.EXTENSIONS, uint32(i)))
		if ext == name || ext == "GL_"+name {
			return true
		}
	}
	return false
}

// Error implements device.Device
func (d *Device) Error() error {
	if code := gl.GetError(); code != gl.NO_ERROR {
		return fmt.Errorf("opengl error 0x%04x", code)
	}
	return nil
}

// CreateProgram implements device.Device
func (d *Device) CreateProgram(vertexSrc, fragmentSrc string) (device.Program, error) {
	vs, err := compileShader(gl.VERTEX_SHADER, glsl.ToCore(vertexSrc, core.VertexShaderType))
	if err != nil {
		return 0, fmt.Errorf("%w: vertex: %v", device.ErrCompile, err)
	}
	defer gl.DeleteShader(vs)

	fs, err := compileShader(gl.FRAGMENT_SHADER, glsl.ToCore(fragmentSrc, core.FragmentShaderType))
	if err != nil {
		return 0, fmt.Errorf("%w: fragment: %v", device.ErrCompile, err)
	}
	defer gl.DeleteShader(fs)

	program := gl.CreateProgram()
	gl.AttachShader(program, vs)
	gl.AttachShader(program, fs)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		msg := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(msg))
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("%w: %s", device.ErrLink, strings.TrimRight(msg, "\x00"))
	}
	return device.Program(program), nil
}

func compileShader(shaderType uint32, source string) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		msg := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(msg))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("%s", strings.TrimRight(msg, "\x00"))
	}
	return shader, nil
}

// DeleteProgram implements device.Device
func (d *Device) DeleteProgram(p device.Program) {
	gl.DeleteProgram(uint32(p))
}

// UseProgram implements device.Device
func (d *Device) UseProgram(p device.Program) {
	gl.UseProgram(uint32(p))
}

// AttribLocation implements device.Device
func (d *Device) AttribLocation(p device.Program, name string) int {
	return int(gl.GetAttribLocation(uint32(p), gl.Str(name+"\x00")))
}

// UniformLocation implements device.Device
func (d *Device) UniformLocation(p device.Program, name string) device.Uniform {
	return device.Uniform(gl.GetUniformLocation(uint32(p), gl.Str(name+"\x00")))
}

// Uniform1f implements device.Device
func (d *Device) Uniform1f(u device.Uniform, v float32) {
	gl.Uniform1f(int32(u), v)
}

// Uniform1i implements device.Device
func (d *Device) Uniform1i(u device.Uniform, v int32) {
	gl.Uniform1i(int32(u), v)
}

// Uniform2f implements device.Device
func (d *Device) Uniform2f(u device.Uniform, x, y float32) {
	gl.Uniform2f(int32(u), x, y)
}

// CreateBuffer implements device.Device
func (d *Device) CreateBuffer(data []float32) (device.Buffer, error) {
	var buf uint32
	gl.GenBuffers(1, &buf)
	if buf == 0 {
		return 0, device.ErrAllocation
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, buf)
	if len(data) > 0 {
		gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, gl.Ptr(data), gl.STATIC_DRAW)
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	return device.Buffer(buf), nil
}

// DeleteBuffer implements device.Device
func (d *Device) DeleteBuffer(b device.Buffer) {
	buf := uint32(b)
	gl.DeleteBuffers(1, &buf)
}

// EnableAttrib implements device.Device
func (d *Device) EnableAttrib(location int, buf device.Buffer, size int) {
	gl.BindBuffer(gl.ARRAY_BUFFER, uint32(buf))
	gl.VertexAttribPointer(uint32(location), int32(size), gl.FLOAT, false, 0, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(uint32(location))
}

// DisableAttrib implements device.Device
func (d *Device) DisableAttrib(location int) {
	gl.DisableVertexAttribArray(uint32(location))
}

// CreateTexture implements device.Device
func (d *Device) CreateTexture(img *image.RGBA, width, height int) (device.Texture, error) {
	var tex uint32
	gl.GenTextures(1, &tex)
	if tex == 0 {
		return 0, device.ErrAllocation
	}
	gl.BindTexture(gl.TEXTURE_2D, tex)
	if img == nil {
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(width), int32(height), 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
		clampLinear()
	} else {
		upload(img)
	}
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return device.Texture(tex), nil
}

// UpdateTexture implements device.Device
func (d *Device) UpdateTexture(t device.Texture, img *image.RGBA) {
	gl.BindTexture(gl.TEXTURE_2D, uint32(t))
	upload(img)
	gl.BindTexture(gl.TEXTURE_2D, 0)
}

func upload(img *image.RGBA) {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, int32(img.Stride/4))
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(w), int32(h), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, 0)

	if powerOf2(w) && powerOf2(h) {
		gl.GenerateMipmap(gl.TEXTURE_2D)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
		return
	}
	clampLinear()
}

func clampLinear() {
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
}

func powerOf2(v int) bool {
	return v > 0 && v&(v-1) == 0
}

// DeleteTexture implements device.Device
func (d *Device) DeleteTexture(t device.Texture) {
	tex := uint32(t)
	gl.DeleteTextures(1, &tex)
}

// BindTexture implements device.Device
func (d *Device) BindTexture(unit int, t device.Texture) {
	gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
	gl.BindTexture(gl.TEXTURE_2D, uint32(t))
}

// CreateFramebuffer implements device.Device
func (d *Device) CreateFramebuffer(color device.Texture) (device.Framebuffer, error) {
	var fb uint32
	gl.GenFramebuffers(1, &fb)
	if fb == 0 {
		return 0, device.ErrAllocation
	}
	gl.BindFramebuffer(gl.FRAMEBUFFER, fb)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, uint32(color), 0)
	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)

	if status != gl.FRAMEBUFFER_COMPLETE {
		gl.DeleteFramebuffers(1, &fb)
		return 0, fmt.Errorf("%w: status 0x%04x", device.ErrIncomplete, status)
	}
	return device.Framebuffer(fb), nil
}

// DeleteFramebuffer implements device.Device
func (d *Device) DeleteFramebuffer(f device.Framebuffer) {
	fb := uint32(f)
	gl.DeleteFramebuffers(1, &fb)
}

// BindFramebuffer implements device.Device
func (d *Device) BindFramebuffer(f device.Framebuffer, width, height int) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(f))
	gl.Viewport(0, 0, int32(width), int32(height))
}

// Clear implements device.Device
func (d *Device) Clear(r, g, b, a float32) {
	gl.ClearColor(r, g, b, a)
	gl.Clear(gl.COLOR_BUFFER_BIT)
}

// EnableBlend implements device.Device
func (d *Device) EnableBlend(src, dst device.BlendFactor) {
	gl.Enable(gl.BLEND)
	gl.BlendFunc(blendFactor(src), blendFactor(dst))
}

// DisableBlend implements device.Device
func (d *Device) DisableBlend() {
	gl.Disable(gl.BLEND)
}

// DrawArrays implements device.Device
func (d *Device) DrawArrays(mode device.Primitive, first, count int) {
	gl.DrawArrays(primitive(mode), int32(first), int32(count))
}

func blendFactor(f device.BlendFactor) uint32 {
	switch f {
	case device.One:
		return gl.ONE
	case device.SrcAlpha:
		return gl.SRC_ALPHA
	case device.OneMinusSrcAlpha:
		return gl.ONE_MINUS_SRC_ALPHA
	default:
		return gl.ZERO
	}
}

func primitive(p device.Primitive) uint32 {
	switch p {
	case device.Points:
		return gl.POINTS
	case device.TriangleStrip:
		return gl.TRIANGLE_STRIP
	default:
		return gl.TRIANGLES
	}
}
