// Package headless implements a device.Device that draws nothing and
// records every call. It backs the renderer tests and headless runs, and
// validates the same things a driver would: shader entry points, varying
// linkage, attribute and object existence.
package headless

import (
	"fmt"
	"image"
	"regexp"
	"sort"
	"strings"

	"github.com/ndev/portfolio/device"
)

// Surface opens headless devices of a fixed size
type Surface struct {
	Width, Height int

	// Unavailable makes Open fail like a browser without WebGL
	Unavailable bool

	// Extensions lists the supported extensions, nil supports all
	Extensions []string
}

// Open implements device.Surface
func (s Surface) Open() (device.Device, error) {
	if s.Unavailable {
		return nil, fmt.Errorf("headless surface: %w", device.ErrContextUnavailable)
	}
	return New(s.Width, s.Height, s.Extensions...), nil
}

// Call is one recorded device call
type Call struct {
	Name string
	Args []interface{}
}

func (c Call) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = fmt.Sprint(a)
	}
	return c.Name + "(" + strings.Join(args, ", ") + ")"
}

// Draw describes the state a DrawArrays call was issued with
type Draw struct {
	Mode        device.Primitive
	First       int
	Count       int
	Program     device.Program
	Target      device.Framebuffer
	Attributes  []int
	Textures    map[int]device.Texture
	BlendSrc    device.BlendFactor
	BlendDst    device.BlendFactor
	BlendActive bool
}

type program struct {
	attributes []string
	uniforms   map[string]device.Uniform
}

type texture struct {
	width, height int
	pix           []uint8
}

// Device is the recording device
type Device struct {
	width, height int
	extensions    map[string]bool

	next  uint32
	calls []Call
	draws []Draw
	errs  []error

	programs     map[device.Program]*program
	buffers      map[device.Buffer][]float32
	textures     map[device.Texture]*texture
	framebuffers map[device.Framebuffer]device.Texture
	uniforms     map[device.Uniform]interface{}

	current  device.Program
	target   device.Framebuffer
	viewport [2]int
	enabled  map[int]device.Buffer
	units    map[int]device.Texture
	blend    bool
	blendSrc device.BlendFactor
	blendDst device.BlendFactor
}

// New creates a recording device with a width x height surface
func New(width, height int, extensions ...string) *Device {
	d := &Device{
		width:        width,
		height:       height,
		programs:     make(map[device.Program]*program),
		buffers:      make(map[device.Buffer][]float32),
		textures:     make(map[device.Texture]*texture),
		framebuffers: make(map[device.Framebuffer]device.Texture),
		uniforms:     make(map[device.Uniform]interface{}),
		enabled:      make(map[int]device.Buffer),
		units:        make(map[int]device.Texture),
	}
	if extensions != nil {
		d.extensions = make(map[string]bool, len(extensions))
		for _, e := range extensions {
			d.extensions[e] = true
		}
	}
	return d
}

func (d *Device) record(name string, args ...interface{}) {
	d.calls = append(d.calls, Call{Name: name, Args: args})
}

func (d *Device) handle() uint32 {
	d.next++
	return d.next
}

func (d *Device) fail(format string, args ...interface{}) {
	d.errs = append(d.errs, fmt.Errorf(format, args...))
}

// Calls returns every recorded call
func (d *Device) Calls() []Call {
	return d.calls
}

// Names returns the names of the recorded calls in order
func (d *Device) Names() []string {
	names := make([]string, len(d.calls))
	for i, c := range d.calls {
		names[i] = c.Name
	}
	return names
}

// Draws returns the state of every DrawArrays call
func (d *Device) Draws() []Draw {
	return d.draws
}

// Reset forgets recorded calls and draws, device objects stay alive
func (d *Device) Reset() {
	d.calls = nil
	d.draws = nil
}

// Live returns the number of device objects not yet deleted
func (d *Device) Live() int {
	return len(d.programs) + len(d.buffers) + len(d.textures) + len(d.framebuffers)
}

// InjectError queues an error for the next Error call
func (d *Device) InjectError(err error) {
	d.errs = append(d.errs, err)
}

// UniformValue returns the last value pushed to the named uniform of p
func (d *Device) UniformValue(p device.Program, name string) (interface{}, bool) {
	prog, ok := d.programs[p]
	if !ok {
		return nil, false
	}
	loc, ok := prog.uniforms[name]
	if !ok {
		return nil, false
	}
	v, ok := d.uniforms[loc]
	return v, ok
}

// TextureSize returns the dimensions of a live texture
func (d *Device) TextureSize(t device.Texture) (int, int, bool) {
	tex, ok := d.textures[t]
	if !ok {
		return 0, 0, false
	}
	return tex.width, tex.height, true
}

// TexturePixels returns the uploaded texels of a live texture
func (d *Device) TexturePixels(t device.Texture) []uint8 {
	if tex, ok := d.textures[t]; ok {
		return tex.pix
	}
	return nil
}

// Size implements device.Device
func (d *Device) Size() (int, int) {
	return d.width, d.height
}

// Extension implements device.Device
func (d *Device) Extension(name string) bool {
	d.record("Extension", name)
	if d.extensions == nil {
		return true
	}
	return d.extensions[name]
}

// Error implements device.Device
func (d *Device) Error() error {
	d.record("Error")
	if len(d.errs) == 0 {
		return nil
	}
	err := d.errs[0]
	d.errs = d.errs[1:]
	return err
}

var (
	declaration = regexp.MustCompile(`(?m)^\s*(attribute|uniform|varying)\s+\w+\s+(\w+)\s*;`)
	entryPoint  = regexp.MustCompile(`void\s+main\s*\(`)
)

func declarations(src, kind string) []string {
	var names []string
	for _, m := range declaration.FindAllStringSubmatch(src, -1) {
		if m[1] == kind {
			names = append(names, m[2])
		}
	}
	return names
}

// CreateProgram implements device.Device
func (d *Device) CreateProgram(vertexSrc, fragmentSrc string) (device.Program, error) {
	d.record("CreateProgram")
	if !entryPoint.MatchString(vertexSrc) {
		return 0, fmt.Errorf("vertex: missing main: %w", device.ErrCompile)
	}
	if !entryPoint.MatchString(fragmentSrc) {
		return 0, fmt.Errorf("fragment: missing main: %w", device.ErrCompile)
	}

	written := make(map[string]bool)
	for _, v := range declarations(vertexSrc, "varying") {
		written[v] = true
	}
	for _, v := range declarations(fragmentSrc, "varying") {
		if !written[v] {
			return 0, fmt.Errorf("varying %s not written by vertex stage: %w", v, device.ErrLink)
		}
	}

	prog := &program{
		attributes: declarations(vertexSrc, "attribute"),
		uniforms:   make(map[string]device.Uniform),
	}
	for _, src := range []string{vertexSrc, fragmentSrc} {
		for _, u := range declarations(src, "uniform") {
			if _, ok := prog.uniforms[u]; !ok {
				prog.uniforms[u] = device.Uniform(d.handle())
			}
		}
	}

	p := device.Program(d.handle())
	d.programs[p] = prog
	return p, nil
}

// DeleteProgram implements device.Device
func (d *Device) DeleteProgram(p device.Program) {
	d.record("DeleteProgram", p)
	delete(d.programs, p)
	if d.current == p {
		d.current = 0
	}
}

// UseProgram implements device.Device
func (d *Device) UseProgram(p device.Program) {
	d.record("UseProgram", p)
	if _, ok := d.programs[p]; !ok && p != 0 {
		d.fail("use of unknown program %d", p)
		return
	}
	d.current = p
}

// AttribLocation implements device.Device
func (d *Device) AttribLocation(p device.Program, name string) int {
	prog, ok := d.programs[p]
	if !ok {
		return -1
	}
	for i, a := range prog.attributes {
		if a == name {
			return i
		}
	}
	return -1
}

// UniformLocation implements device.Device
func (d *Device) UniformLocation(p device.Program, name string) device.Uniform {
	prog, ok := d.programs[p]
	if !ok {
		return device.NoUniform
	}
	if loc, ok := prog.uniforms[name]; ok {
		return loc
	}
	return device.NoUniform
}

func (d *Device) setUniform(name string, u device.Uniform, v interface{}) {
	d.record(name, u, v)
	if u == device.NoUniform {
		return
	}
	d.uniforms[u] = v
}

// Uniform1f implements device.Device
func (d *Device) Uniform1f(u device.Uniform, v float32) {
	d.setUniform("Uniform1f", u, v)
}

// Uniform1i implements device.Device
func (d *Device) Uniform1i(u device.Uniform, v int32) {
	d.setUniform("Uniform1i", u, v)
}

// Uniform2f implements device.Device
func (d *Device) Uniform2f(u device.Uniform, x, y float32) {
	d.setUniform("Uniform2f", u, [2]float32{x, y})
}

// CreateBuffer implements device.Device
func (d *Device) CreateBuffer(data []float32) (device.Buffer, error) {
	d.record("CreateBuffer", len(data))
	b := device.Buffer(d.handle())
	d.buffers[b] = append([]float32(nil), data...)
	return b, nil
}

// DeleteBuffer implements device.Device
func (d *Device) DeleteBuffer(b device.Buffer) {
	d.record("DeleteBuffer", b)
	delete(d.buffers, b)
}

// EnableAttrib implements device.Device
func (d *Device) EnableAttrib(location int, buf device.Buffer, size int) {
	d.record("EnableAttrib", location, buf, size)
	if _, ok := d.buffers[buf]; !ok {
		d.fail("attribute %d bound to unknown buffer %d", location, buf)
		return
	}
	d.enabled[location] = buf
}

// DisableAttrib implements device.Device
func (d *Device) DisableAttrib(location int) {
	d.record("DisableAttrib", location)
	delete(d.enabled, location)
}

// CreateTexture implements device.Device
func (d *Device) CreateTexture(img *image.RGBA, width, height int) (device.Texture, error) {
	d.record("CreateTexture", width, height)
	tex := &texture{width: width, height: height}
	if img != nil {
		tex.width, tex.height = img.Rect.Dx(), img.Rect.Dy()
		tex.pix = append([]uint8(nil), img.Pix...)
	}
	t := device.Texture(d.handle())
	d.textures[t] = tex
	return t, nil
}

// UpdateTexture implements device.Device
func (d *Device) UpdateTexture(t device.Texture, img *image.RGBA) {
	d.record("UpdateTexture", t)
	tex, ok := d.textures[t]
	if !ok {
		d.fail("update of unknown texture %d", t)
		return
	}
	tex.width, tex.height = img.Rect.Dx(), img.Rect.Dy()
	tex.pix = append([]uint8(nil), img.Pix...)
}

// DeleteTexture implements device.Device
func (d *Device) DeleteTexture(t device.Texture) {
	d.record("DeleteTexture", t)
	delete(d.textures, t)
}

// BindTexture implements device.Device
func (d *Device) BindTexture(unit int, t device.Texture) {
	d.record("BindTexture", unit, t)
	if _, ok := d.textures[t]; !ok && t != 0 {
		d.fail("bind of unknown texture %d", t)
		return
	}
	d.units[unit] = t
}

// CreateFramebuffer implements device.Device
func (d *Device) CreateFramebuffer(color device.Texture) (device.Framebuffer, error) {
	d.record("CreateFramebuffer", color)
	if _, ok := d.textures[color]; !ok {
		return 0, fmt.Errorf("colour attachment %d: %w", color, device.ErrIncomplete)
	}
	fb := device.Framebuffer(d.handle())
	d.framebuffers[fb] = color
	return fb, nil
}

// DeleteFramebuffer implements device.Device
func (d *Device) DeleteFramebuffer(fb device.Framebuffer) {
	d.record("DeleteFramebuffer", fb)
	delete(d.framebuffers, fb)
	if d.target == fb {
		d.target = 0
	}
}

// BindFramebuffer implements device.Device
func (d *Device) BindFramebuffer(fb device.Framebuffer, width, height int) {
	d.record("BindFramebuffer", fb, width, height)
	if _, ok := d.framebuffers[fb]; !ok && fb != 0 {
		d.fail("bind of unknown framebuffer %d", fb)
		return
	}
	d.target = fb
	d.viewport = [2]int{width, height}
}

// Clear implements device.Device
func (d *Device) Clear(r, g, b, a float32) {
	d.record("Clear", [4]float32{r, g, b, a}, d.target)
}

// EnableBlend implements device.Device
func (d *Device) EnableBlend(src, dst device.BlendFactor) {
	d.record("EnableBlend", src, dst)
	d.blend = true
	d.blendSrc, d.blendDst = src, dst
}

// DisableBlend implements device.Device
func (d *Device) DisableBlend() {
	d.record("DisableBlend")
	d.blend = false
}

// DrawArrays implements device.Device
func (d *Device) DrawArrays(mode device.Primitive, first, count int) {
	d.record("DrawArrays", mode, first, count)
	if d.current == 0 {
		d.fail("draw without program")
		return
	}

	attributes := make([]int, 0, len(d.enabled))
	for loc := range d.enabled {
		attributes = append(attributes, loc)
	}
	sort.Ints(attributes)

	textures := make(map[int]device.Texture, len(d.units))
	for unit, t := range d.units {
		textures[unit] = t
	}

	d.draws = append(d.draws, Draw{
		Mode:        mode,
		First:       first,
		Count:       count,
		Program:     d.current,
		Target:      d.target,
		Attributes:  attributes,
		Textures:    textures,
		BlendSrc:    d.blendSrc,
		BlendDst:    d.blendDst,
		BlendActive: d.blend,
	})
}

// FramebufferTexture returns the colour attachment of fb
func (d *Device) FramebufferTexture(fb device.Framebuffer) (device.Texture, bool) {
	t, ok := d.framebuffers[fb]
	return t, ok
}
