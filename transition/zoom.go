// Package transition drives the zoom that hides and reveals the home
// section during page navigation. The renderer steps it once per frame.
package transition

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Directions a zoom can run in
const (
	Hiding  float32 = 1
	Showing float32 = -1
)

// Defaults of the home page zoom
const (
	DefaultSpeed       float32 = 0.03
	DefaultTargetLevel float32 = 0.05
)

// Uniforms are the zoom values pushed to the main shader every frame
type Uniforms struct {
	Center   mgl32.Vec2
	Level    float32
	Progress float32
}

// NewZoom returns an idle zoom with the default speed, center and level
func NewZoom() *Zoom {
	return &Zoom{
		Speed:       DefaultSpeed,
		Direction:   Hiding,
		Center:      mgl32.Vec2{0.5, 0.5},
		TargetLevel: DefaultTargetLevel,
	}
}

// Zoom is the animation state. Progress always stays within [0, 1].
type Zoom struct {
	Active      bool
	Progress    float32
	Speed       float32
	Direction   float32
	Center      mgl32.Vec2
	TargetLevel float32

	onComplete func()
}

// Trigger starts running in direction. Progress is kept, so triggering
// mid animation resumes or reverses from where it is. onComplete runs
// once when progress reaches 1.
func (z *Zoom) Trigger(direction float32, onComplete func()) {
	if direction < 0 {
		z.Direction = Showing
	} else {
		z.Direction = Hiding
	}
	z.Active = true
	z.onComplete = onComplete
}

// Hide zooms in, onComplete runs once the section is fully hidden
func (z *Zoom) Hide(onComplete func()) {
	z.Trigger(Hiding, onComplete)
}

// Show zooms back out
func (z *Zoom) Show() {
	z.Trigger(Showing, nil)
}

// Reset stops the zoom and rewinds it to fully shown without animating,
// a pending completion is dropped
func (z *Zoom) Reset() {
	z.Active = false
	z.Progress = 0
	z.onComplete = nil
}

// Step advances an active zoom by one frame. Reaching either bound stops
// it, reaching 1 also runs the completion before Step returns.
func (z *Zoom) Step() {
	if !z.Active {
		return
	}

	z.Progress = mgl32.Clamp(z.Progress+z.Speed*z.Direction, 0, 1)
	if z.Progress > 0 && z.Progress < 1 {
		return
	}

	z.Active = false
	fn := z.onComplete
	z.onComplete = nil
	if z.Progress >= 1 && fn != nil {
		fn()
	}
}

// Uniforms returns the values for the current frame, also while idle
func (z *Zoom) Uniforms() Uniforms {
	return Uniforms{
		Center:   z.Center,
		Level:    z.TargetLevel,
		Progress: z.Progress,
	}
}
