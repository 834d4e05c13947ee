package gfx

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/ndev/portfolio/device"
	log "github.com/sirupsen/logrus"
)

// TextureUnit assigns a texture to a sampler uniform. Texture names a
// registered texture, Target the colour texture of an offscreen target.
type TextureUnit struct {
	Unit    int
	Uniform string
	Texture string
	Target  string
}

// Blend is a blend function enabled for the duration of a draw
type Blend struct {
	Src, Dst device.BlendFactor
}

// DrawCall is one draw with everything it binds. Draw unbinds all of it
// again before returning.
type DrawCall struct {
	Shader     string
	Attributes []string
	Textures   []TextureUnit
	Blend      *Blend
	Mode       device.Primitive
	First      int
	Count      int
}

// UseProgram makes the named program current for the Uniform calls
func (c *Context) UseProgram(name string) error {
	p, err := c.Program(name)
	if err != nil {
		c.current = ""
		return err
	}
	if c.current != name {
		c.device.UseProgram(p)
		c.current = name
	}
	return nil
}

func (c *Context) uniform(name string) device.Uniform {
	if c.current == "" {
		return device.NoUniform
	}
	return c.device.UniformLocation(c.programs[c.current], name)
}

// Uniform1f sets a float uniform of the current program, names the
// program does not use are ignored
func (c *Context) Uniform1f(name string, v float32) {
	if u := c.uniform(name); u != device.NoUniform {
		c.device.Uniform1f(u, v)
	}
}

// Uniform1i sets an int or sampler uniform of the current program
func (c *Context) Uniform1i(name string, v int32) {
	if u := c.uniform(name); u != device.NoUniform {
		c.device.Uniform1i(u, v)
	}
}

// Uniform2f sets a vec2 uniform of the current program
func (c *Context) Uniform2f(name string, v mgl32.Vec2) {
	if u := c.uniform(name); u != device.NoUniform {
		c.device.Uniform2f(u, v.X(), v.Y())
	}
}

// RenderTo draws fn into the named offscreen target after clearing it,
// then restores the default surface
func (c *Context) RenderTo(name string, clear mgl32.Vec4, fn func()) error {
	t, err := c.Target(name)
	if err != nil {
		return err
	}

	c.device.BindFramebuffer(t.Framebuffer, t.Width, t.Height)
	c.device.Clear(clear.X(), clear.Y(), clear.Z(), clear.W())
	fn()

	width, height := c.device.Size()
	c.device.BindFramebuffer(0, width, height)
	return nil
}

// RenderToSurface binds the default surface and clears it
func (c *Context) RenderToSurface(clear mgl32.Vec4) {
	width, height := c.device.Size()
	c.device.BindFramebuffer(0, width, height)
	c.device.Clear(clear.X(), clear.Y(), clear.Z(), clear.W())
}

type boundAttribute struct {
	location int
	buffer   device.Buffer
	size     int
}

type boundTexture struct {
	unit    int
	uniform string
	texture device.Texture
}

// Draw issues dc. The shader and attributes are resolved before anything
// is bound, a missing one skips the whole draw and is returned. A texture
// unit that does not resolve is bound to no texture and the draw goes on.
func (c *Context) Draw(dc DrawCall) error {
	if err := c.UseProgram(dc.Shader); err != nil {
		return err
	}

	attributes := make([]boundAttribute, 0, len(dc.Attributes))
	for _, name := range dc.Attributes {
		b, err := c.Binding(name)
		if err != nil {
			return err
		}
		if b.Shader != dc.Shader {
			log.WithFields(log.Fields{
				"attribute": name,
				"bound":     b.Shader,
				"shader":    dc.Shader,
			}).Error("attribute bound to another shader")
			return fmt.Errorf("%s.%s: %w", dc.Shader, name, ErrInvalidBinding)
		}
		buf, err := c.Buffer(b.Buffer)
		if err != nil {
			return err
		}
		attributes = append(attributes, boundAttribute{b.Location, buf, b.Size})
	}

	textures := make([]boundTexture, 0, len(dc.Textures))
	for _, tu := range dc.Textures {
		var (
			tex device.Texture
			err error
		)
		if tu.Target != "" {
			var t Target
			t, err = c.Target(tu.Target)
			tex = t.Texture
		} else {
			tex, err = c.Texture(tu.Texture)
		}
		if err != nil {
			tex = 0
		}
		textures = append(textures, boundTexture{tu.Unit, tu.Uniform, tex})
	}

	for _, t := range textures {
		c.device.BindTexture(t.unit, t.texture)
		c.Uniform1i(t.uniform, int32(t.unit))
	}
	if dc.Blend != nil {
		c.device.EnableBlend(dc.Blend.Src, dc.Blend.Dst)
	}
	for _, a := range attributes {
		c.device.EnableAttrib(a.location, a.buffer, a.size)
	}

	c.device.DrawArrays(dc.Mode, dc.First, dc.Count)

	for _, a := range attributes {
		c.device.DisableAttrib(a.location)
	}
	if dc.Blend != nil {
		c.device.DisableBlend()
	}
	for _, t := range textures {
		c.device.BindTexture(t.unit, 0)
	}
	return nil
}
