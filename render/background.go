package render

import (
	"math/rand"
	"path"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/ndev/portfolio/core"
	"github.com/ndev/portfolio/device"
	"github.com/ndev/portfolio/gfx"
	"github.com/ndev/portfolio/loader"
	"github.com/ndev/portfolio/model"
	"github.com/ndev/portfolio/transition"
	log "github.com/sirupsen/logrus"
)

// Registry names of the background resources
const (
	MainShader     = "main"
	ParticleShader = "particles"

	VertexBuffer   = "vertex"
	TexCoordBuffer = "texCoords"
	SeedBuffer     = "random"

	ParticleTarget = "particles"

	BackgroundTexture = "uSampler"
	MaskTexture       = "uDistortedMask"
)

// Image files of the two static textures
const (
	BackgroundImage = "greeting-bg.png"
	MaskImage       = "greeting-bg-distorted-mask.png"
)

var (
	transparent = mgl32.Vec4{0, 0, 0, 0}
	backdrop    = mgl32.Vec4{18.0 / 255, 18.0 / 255, 18.0 / 255, 1}
)

// Background is the animated home page backdrop: particles drawn into
// an offscreen target, composited over the distorted greeting image.
type Background struct {
	gfx       *gfx.Context
	zoom      *transition.Zoom
	particles int
}

// NewBackground draws count particles with the resources in ctx
func NewBackground(ctx *gfx.Context, count int) *Background {
	return &Background{
		gfx:       ctx,
		zoom:      transition.NewZoom(),
		particles: count,
	}
}

// Setup registers every resource of the background and starts loading
// its textures. Shader sources are read before Setup returns, onReady
// runs on the frame goroutine once both textures resolved. Failures are
// logged and only disable what depends on them.
func Setup(ctx *gfx.Context, l *loader.Loader, cfg core.RendererConfiguration, rnd *rand.Rand, onReady func(error)) *Background {
	for _, ext := range cfg.Extensions {
		ctx.Extension(ext)
	}

	shaders := func(name string) string {
		return path.Join(cfg.ShaderDirectory, name)
	}
	l.Program(MainShader, shaders("vertex.glsl"), shaders("fragment.glsl"))
	l.Program(ParticleShader, shaders("vertexParticles.glsl"), shaders("fragmentParticles.glsl"))

	quad := model.Quad()
	ctx.RegisterBuffer(VertexBuffer, model.Positions(quad))
	ctx.RegisterBuffer(TexCoordBuffer, model.TexCoords(quad))
	ctx.RegisterBuffer(SeedBuffer, model.Seeds(cfg.ParticleCount, rnd))

	width, height := ctx.Size()
	ctx.RegisterFramebuffer(ParticleTarget, width, height)

	ctx.RegisterBinding(VertexBuffer, MainShader, "aPosition", model.PositionSize)
	ctx.RegisterBinding(TexCoordBuffer, MainShader, "aTex", model.TexCoordSize)
	ctx.RegisterBinding(SeedBuffer, ParticleShader, "aRandomSeed", model.SeedSize)

	err := l.All(
		[]string{BackgroundTexture, MaskTexture},
		[]string{path.Join(cfg.ImageDirectory, BackgroundImage), path.Join(cfg.ImageDirectory, MaskImage)},
		func(err error) {
			if err != nil {
				log.WithError(err).Warn("background textures incomplete")
			}
			if onReady != nil {
				onReady(err)
			}
		},
	)
	if err != nil {
		log.WithError(err).Error("background textures not requested")
	}

	return NewBackground(ctx, cfg.ParticleCount)
}

// Zoom returns the transition state sampled every frame
func (b *Background) Zoom() *transition.Zoom {
	return b.zoom
}

// Hide zooms into the background, onComplete runs inside the frame the
// zoom completes in
func (b *Background) Hide(onComplete func()) {
	b.zoom.Hide(onComplete)
}

// Show zooms back out
func (b *Background) Show() {
	b.zoom.Show()
}

// Reveal shows the home section at once, cancelling a running hide
func (b *Background) Reveal() {
	b.zoom.Reset()
}

// Frame implements Scene. The particle pass always runs before the main
// pass samples its target. A missing resource skips the operation that
// needs it, never the frame.
func (b *Background) Frame(elapsed time.Duration) {
	b.gfx.CheckErrors()

	now := float32(elapsed.Seconds())
	width, height := b.gfx.Size()

	b.gfx.RenderTo(ParticleTarget, transparent, func() {
		if err := b.gfx.UseProgram(ParticleShader); err != nil {
			return
		}
		b.gfx.Uniform1f("uTime", now)
		b.gfx.Uniform1f("uParticleCount", float32(b.particles))
		b.gfx.Uniform2f("uResolution", mgl32.Vec2{float32(width), float32(height)})
		b.gfx.Draw(gfx.DrawCall{
			Shader:     ParticleShader,
			Attributes: []string{"aRandomSeed"},
			Blend:      &gfx.Blend{Src: device.SrcAlpha, Dst: device.One},
			Mode:       device.Points,
			Count:      b.particles,
		})
	})

	b.gfx.RenderToSurface(backdrop)
	b.zoom.Step()
	if err := b.gfx.UseProgram(MainShader); err != nil {
		return
	}

	zoom := b.zoom.Uniforms()
	b.gfx.Uniform2f("uZoomCenter", zoom.Center)
	b.gfx.Uniform1f("uZoomLevel", zoom.Level)
	b.gfx.Uniform1f("uZoomProgress", zoom.Progress)
	b.gfx.Uniform1f("uTime", now)
	b.gfx.Draw(gfx.DrawCall{
		Shader:     MainShader,
		Attributes: []string{"aPosition", "aTex"},
		Textures: []gfx.TextureUnit{
			{Unit: 0, Uniform: "uSampler", Texture: BackgroundTexture},
			{Unit: 1, Uniform: "uDistortedMask", Texture: MaskTexture},
			{Unit: 2, Uniform: "uParticles", Target: ParticleTarget},
		},
		Mode:  device.Triangles,
		Count: len(model.Quad()),
	})
}

// Release tears down every GPU resource and resets the zoom
func (b *Background) Release() {
	b.gfx.Teardown()
	b.zoom = transition.NewZoom()
}

var _ core.Releasable = (*Background)(nil)
