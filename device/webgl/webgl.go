//go:build js && wasm

// Package webgl draws on a browser canvas through syscall/js
package webgl

import (
	"fmt"
	"image"
	"syscall/js"
	"unsafe"

	log "github.com/sirupsen/logrus"

	"github.com/ndev/portfolio/device"
)

// Canvas is an HTML canvas element surface
type Canvas struct {
	Element js.Value
}

// Open implements device.Surface. WebGL 1 is requested first, older
// browsers only answer to "experimental-webgl".
func (c Canvas) Open() (device.Device, error) {
	if c.Element.IsUndefined() || c.Element.IsNull() {
		return nil, fmt.Errorf("%w: no canvas element", device.ErrContextUnavailable)
	}
	gl := c.Element.Call("getContext", "webgl")
	if gl.IsNull() || gl.IsUndefined() {
		gl = c.Element.Call("getContext", "experimental-webgl")
	}
	if gl.IsNull() || gl.IsUndefined() {
		return nil, device.ErrContextUnavailable
	}
	return newDevice(gl), nil
}

type glConsts struct {
	noError          int
	arrayBuffer      int
	staticDraw       int
	floatType        int
	points           int
	triangles        int
	triangleStrip    int
	framebuffer      int
	framebufferDone  int
	colorAttachment0 int
	texture2D        int
	texture0         int
	rgba             int
	unsignedByte     int
	textureMinFilter int
	textureMagFilter int
	textureWrapS     int
	textureWrapT     int
	linear           int
	linearMipmap     int
	clampToEdge      int
	colorBufferBit   int
	blend            int
	zero             int
	one              int
	srcAlpha         int
	oneMinusSrcAlpha int
	compileStatus    int
	linkStatus       int
	vertexShader     int
	fragmentShader   int
}

func loadConsts(gl js.Value) glConsts {
	return glConsts{
		noError:          gl.Get("NO_ERROR").Int(),
		arrayBuffer:      gl.Get("ARRAY_BUFFER").Int(),
		staticDraw:       gl.Get("STATIC_DRAW").Int(),
		floatType:        gl.Get("FLOAT").Int(),
		points:           gl.Get("POINTS").Int(),
		triangles:        gl.Get("TRIANGLES").Int(),
		triangleStrip:    gl.Get("TRIANGLE_STRIP").Int(),
		framebuffer:      gl.Get("FRAMEBUFFER").Int(),
		framebufferDone:  gl.Get("FRAMEBUFFER_COMPLETE").Int(),
		colorAttachment0: gl.Get("COLOR_ATTACHMENT0").Int(),
		texture2D:        gl.Get("TEXTURE_2D").Int(),
		texture0:         gl.Get("TEXTURE0").Int(),
		rgba:             gl.Get("RGBA").Int(),
		unsignedByte:     gl.Get("UNSIGNED_BYTE").Int(),
		textureMinFilter: gl.Get("TEXTURE_MIN_FILTER").Int(),
		textureMagFilter: gl.Get("TEXTURE_MAG_FILTER").Int(),
		textureWrapS:     gl.Get("TEXTURE_WRAP_S").Int(),
		textureWrapT:     gl.Get("TEXTURE_WRAP_T").Int(),
		linear:           gl.Get("LINEAR").Int(),
		linearMipmap:     gl.Get("LINEAR_MIPMAP_LINEAR").Int(),
		clampToEdge:      gl.Get("CLAMP_TO_EDGE").Int(),
		colorBufferBit:   gl.Get("COLOR_BUFFER_BIT").Int(),
		blend:            gl.Get("BLEND").Int(),
		zero:             gl.Get("ZERO").Int(),
		one:              gl.Get("ONE").Int(),
		srcAlpha:         gl.Get("SRC_ALPHA").Int(),
		oneMinusSrcAlpha: gl.Get("ONE_MINUS_SRC_ALPHA").Int(),
		compileStatus:    gl.Get("COMPILE_STATUS").Int(),
		linkStatus:       gl.Get("LINK_STATUS").Int(),
		vertexShader:     gl.Get("VERTEX_SHADER").Int(),
		fragmentShader:   gl.Get("FRAGMENT_SHADER").Int(),
	}
}

type uniformKey struct {
	program device.Program
	name    string
}

// Device implements device.Device over a WebGL rendering context. WebGL
// objects are js values, they are handed out as small integer handles.
type Device struct {
	gl     js.Value
	consts glConsts

	next         uint32
	programs     map[device.Program]js.Value
	buffers      map[device.Buffer]js.Value
	textures     map[device.Texture]js.Value
	framebuffers map[device.Framebuffer]js.Value

	uniforms     []js.Value
	uniformCache map[uniformKey]device.Uniform
}

func newDevice(gl js.Value) *Device {
	return &Device{
		gl:           gl,
		consts:       loadConsts(gl),
		programs:     make(map[device.Program]js.Value),
		buffers:      make(map[device.Buffer]js.Value),
		textures:     make(map[device.Texture]js.Value),
		framebuffers: make(map[device.Framebuffer]js.Value),
		uniformCache: make(map[uniformKey]device.Uniform),
	}
}

func (d *Device) handle() uint32 {
	d.next++
	return d.next
}

// Size implements device.Device
func (d *Device) Size() (int, int) {
	return d.gl.Get("drawingBufferWidth").Int(), d.gl.Get("drawingBufferHeight").Int()
}

// Extension implements device.Device
func (d *Device) Extension(name string) bool {
	ext := d.gl.Call("getExtension", name)
	return !ext.IsNull() && !ext.IsUndefined()
}

// Error implements device.Device
func (d *Device) Error() error {
	if code := d.gl.Call("getError").Int(); code != d.consts.noError {
		return fmt.Errorf("webgl error 0x%04x", code)
	}
	return nil
}

// CreateProgram implements device.Device
func (d *Device) CreateProgram(vertexSrc, fragmentSrc string) (device.Program, error) {
	vs, err := d.compileShader(d.consts.vertexShader, vertexSrc)
	if err != nil {
		return 0, fmt.Errorf("%w: vertex: %v", device.ErrCompile, err)
	}
	defer d.gl.Call("deleteShader", vs)

	fs, err := d.compileShader(d.consts.fragmentShader, fragmentSrc)
	if err != nil {
		return 0, fmt.Errorf("%w: fragment: %v", device.ErrCompile, err)
	}
	defer d.gl.Call("deleteShader", fs)

	program := d.gl.Call("createProgram")
	d.gl.Call("attachShader", program, vs)
	d.gl.Call("attachShader", program, fs)
	d.gl.Call("linkProgram", program)
	if !d.gl.Call("getProgramParameter", program, d.consts.linkStatus).Bool() {
		msg := d.gl.Call("getProgramInfoLog", program).String()
		d.gl.Call("deleteProgram", program)
		return 0, fmt.Errorf("%w: %s", device.ErrLink, msg)
	}

	p := device.Program(d.handle())
	d.programs[p] = program
	return p, nil
}

func (d *Device) compileShader(shaderType int, source string) (js.Value, error) {
	shader := d.gl.Call("createShader", shaderType)
	d.gl.Call("shaderSource", shader, source)
	d.gl.Call("compileShader", shader)
	if !d.gl.Call("getShaderParameter", shader, d.consts.compileStatus).Bool() {
		msg := d.gl.Call("getShaderInfoLog", shader).String()
		d.gl.Call("deleteShader", shader)
		return js.Null(), fmt.Errorf("%s", msg)
	}
	return shader, nil
}

// DeleteProgram implements device.Device
func (d *Device) DeleteProgram(p device.Program) {
	program, ok := d.programs[p]
	if !ok {
		return
	}
	d.gl.Call("deleteProgram", program)
	delete(d.programs, p)
	for key := range d.uniformCache {
		if key.program == p {
			delete(d.uniformCache, key)
		}
	}
}

// UseProgram implements device.Device
func (d *Device) UseProgram(p device.Program) {
	program, ok := d.programs[p]
	if !ok {
		program = js.Null()
	}
	d.gl.Call("useProgram", program)
}

// AttribLocation implements device.Device
func (d *Device) AttribLocation(p device.Program, name string) int {
	program, ok := d.programs[p]
	if !ok {
		return -1
	}
	return d.gl.Call("getAttribLocation", program, name).Int()
}

// UniformLocation implements device.Device
func (d *Device) UniformLocation(p device.Program, name string) device.Uniform {
	key := uniformKey{program: p, name: name}
	if u, ok := d.uniformCache[key]; ok {
		return u
	}
	program, ok := d.programs[p]
	if !ok {
		return device.NoUniform
	}

	location := d.gl.Call("getUniformLocation", program, name)
	u := device.NoUniform
	if !location.IsNull() && !location.IsUndefined() {
		u = device.Uniform(len(d.uniforms))
		d.uniforms = append(d.uniforms, location)
	}
	d.uniformCache[key] = u
	return u
}

func (d *Device) uniform(u device.Uniform) (js.Value, bool) {
	if u < 0 || int(u) >= len(d.uniforms) {
		return js.Null(), false
	}
	return d.uniforms[u], true
}

// Uniform1f implements device.Device
func (d *Device) Uniform1f(u device.Uniform, v float32) {
	if location, ok := d.uniform(u); ok {
		d.gl.Call("uniform1f", location, v)
	}
}

// Uniform1i implements device.Device
func (d *Device) Uniform1i(u device.Uniform, v int32) {
	if location, ok := d.uniform(u); ok {
		d.gl.Call("uniform1i", location, v)
	}
}

// Uniform2f implements device.Device
func (d *Device) Uniform2f(u device.Uniform, x, y float32) {
	if location, ok := d.uniform(u); ok {
		d.gl.Call("uniform2f", location, x, y)
	}
}

// CreateBuffer implements device.Device
func (d *Device) CreateBuffer(data []float32) (device.Buffer, error) {
	buf := d.gl.Call("createBuffer")
	if buf.IsNull() {
		return 0, device.ErrAllocation
	}
	d.gl.Call("bindBuffer", d.consts.arrayBuffer, buf)
	d.gl.Call("bufferData", d.consts.arrayBuffer, float32Array(data), d.consts.staticDraw)
	d.gl.Call("bindBuffer", d.consts.arrayBuffer, js.Null())

	b := device.Buffer(d.handle())
	d.buffers[b] = buf
	return b, nil
}

// DeleteBuffer implements device.Device
func (d *Device) DeleteBuffer(b device.Buffer) {
	if buf, ok := d.buffers[b]; ok {
		d.gl.Call("deleteBuffer", buf)
		delete(d.buffers, b)
	}
}

// EnableAttrib implements device.Device
func (d *Device) EnableAttrib(location int, b device.Buffer, size int) {
	buf, ok := d.buffers[b]
	if !ok {
		return
	}
	d.gl.Call("bindBuffer", d.consts.arrayBuffer, buf)
	d.gl.Call("vertexAttribPointer", location, size, d.consts.floatType, false, 0, 0)
	d.gl.Call("enableVertexAttribArray", location)
}

// DisableAttrib implements device.Device
func (d *Device) DisableAttrib(location int) {
	d.gl.Call("disableVertexAttribArray", location)
}

// CreateTexture implements device.Device
func (d *Device) CreateTexture(img *image.RGBA, width, height int) (device.Texture, error) {
	tex := d.gl.Call("createTexture")
	if tex.IsNull() {
		return 0, device.ErrAllocation
	}
	c := d.consts
	d.gl.Call("bindTexture", c.texture2D, tex)
	if img == nil {
		d.gl.Call("texImage2D", c.texture2D, 0, c.rgba, width, height, 0, c.rgba, c.unsignedByte, js.Null())
		d.clampLinear()
	} else {
		d.upload(img)
	}
	d.gl.Call("bindTexture", c.texture2D, js.Null())

	t := device.Texture(d.handle())
	d.textures[t] = tex
	return t, nil
}

// UpdateTexture implements device.Device
func (d *Device) UpdateTexture(t device.Texture, img *image.RGBA) {
	tex, ok := d.textures[t]
	if !ok {
		log.WithField("texture", t).Warn("update of unknown texture")
		return
	}
	d.gl.Call("bindTexture", d.consts.texture2D, tex)
	d.upload(img)
	d.gl.Call("bindTexture", d.consts.texture2D, js.Null())
}

func (d *Device) upload(img *image.RGBA) {
	c := d.consts
	w, h := img.Rect.Dx(), img.Rect.Dy()

	pixels := img.Pix
	if img.Stride != w*4 {
		pixels = make([]byte, 0, w*h*4)
		for y := 0; y < h; y++ {
			row := img.Pix[y*img.Stride:]
			pixels = append(pixels, row[:w*4]...)
		}
	}
	arr := js.Global().Get("Uint8Array").New(len(pixels))
	js.CopyBytesToJS(arr, pixels)
	d.gl.Call("texImage2D", c.texture2D, 0, c.rgba, w, h, 0, c.rgba, c.unsignedByte, arr)

	if powerOf2(w) && powerOf2(h) {
		d.gl.Call("generateMipmap", c.texture2D)
		d.gl.Call("texParameteri", c.texture2D, c.textureMinFilter, c.linearMipmap)
		d.gl.Call("texParameteri", c.texture2D, c.textureMagFilter, c.linear)
		return
	}
	d.clampLinear()
}

func (d *Device) clampLinear() {
	c := d.consts
	d.gl.Call("texParameteri", c.texture2D, c.textureMinFilter, c.linear)
	d.gl.Call("texParameteri", c.texture2D, c.textureMagFilter, c.linear)
	d.gl.Call("texParameteri", c.texture2D, c.textureWrapS, c.clampToEdge)
	d.gl.Call("texParameteri", c.texture2D, c.textureWrapT, c.clampToEdge)
}

func powerOf2(v int) bool {
	return v > 0 && v&(v-1) == 0
}

// DeleteTexture implements device.Device
func (d *Device) DeleteTexture(t device.Texture) {
	if tex, ok := d.textures[t]; ok {
		d.gl.Call("deleteTexture", tex)
		delete(d.textures, t)
	}
}

// BindTexture implements device.Device
func (d *Device) BindTexture(unit int, t device.Texture) {
	tex, ok := d.textures[t]
	if !ok {
		tex = js.Null()
	}
	d.gl.Call("activeTexture", d.consts.texture0+unit)
	d.gl.Call("bindTexture", d.consts.texture2D, tex)
}

// CreateFramebuffer implements device.Device
func (d *Device) CreateFramebuffer(color device.Texture) (device.Framebuffer, error) {
	tex, ok := d.textures[color]
	if !ok {
		return 0, fmt.Errorf("%w: unknown colour texture %d", device.ErrIncomplete, color)
	}
	c := d.consts
	fb := d.gl.Call("createFramebuffer")
	if fb.IsNull() {
		return 0, device.ErrAllocation
	}
	d.gl.Call("bindFramebuffer", c.framebuffer, fb)
	d.gl.Call("framebufferTexture2D", c.framebuffer, c.colorAttachment0, c.texture2D, tex, 0)
	status := d.gl.Call("checkFramebufferStatus", c.framebuffer).Int()
	d.gl.Call("bindFramebuffer", c.framebuffer, js.Null())

	if status != c.framebufferDone {
		d.gl.Call("deleteFramebuffer", fb)
		return 0, fmt.Errorf("%w: status 0x%04x", device.ErrIncomplete, status)
	}

	f := device.Framebuffer(d.handle())
	d.framebuffers[f] = fb
	return f, nil
}

// DeleteFramebuffer implements device.Device
func (d *Device) DeleteFramebuffer(f device.Framebuffer) {
	if fb, ok := d.framebuffers[f]; ok {
		d.gl.Call("deleteFramebuffer", fb)
		delete(d.framebuffers, f)
	}
}

// BindFramebuffer implements device.Device
func (d *Device) BindFramebuffer(f device.Framebuffer, width, height int) {
	fb, ok := d.framebuffers[f]
	if !ok {
		fb = js.Null()
	}
	d.gl.Call("bindFramebuffer", d.consts.framebuffer, fb)
	d.gl.Call("viewport", 0, 0, width, height)
}

// Clear implements device.Device
func (d *Device) Clear(r, g, b, a float32) {
	d.gl.Call("clearColor", r, g, b, a)
	d.gl.Call("clear", d.consts.colorBufferBit)
}

// EnableBlend implements device.Device
func (d *Device) EnableBlend(src, dst device.BlendFactor) {
	d.gl.Call("enable", d.consts.blend)
	d.gl.Call("blendFunc", d.blendFactor(src), d.blendFactor(dst))
}

// DisableBlend implements device.Device
func (d *Device) DisableBlend() {
	d.gl.Call("disable", d.consts.blend)
}

// DrawArrays implements device.Device
func (d *Device) DrawArrays(mode device.Primitive, first, count int) {
	d.gl.Call("drawArrays", d.primitive(mode), first, count)
}

func (d *Device) blendFactor(f device.BlendFactor) int {
	switch f {
	case device.One:
		return d.consts.one
	case device.SrcAlpha:
		return d.consts.srcAlpha
	case device.OneMinusSrcAlpha:
		return d.consts.oneMinusSrcAlpha
	default:
		return d.consts.zero
	}
}

func (d *Device) primitive(p device.Primitive) int {
	switch p {
	case device.Points:
		return d.consts.points
	case device.TriangleStrip:
		return d.consts.triangleStrip
	default:
		return d.consts.triangles
	}
}

func float32Array(data []float32) js.Value {
	arr := js.Global().Get("Float32Array").New(len(data))
	if len(data) == 0 {
		return arr
	}
	buf := arr.Get("buffer")
	view := js.Global().Get("Uint8Array").New(buf, arr.Get("byteOffset"), arr.Get("byteLength"))
	js.CopyBytesToJS(view, unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), len(data)*4))
	return arr
}
