// Package render runs the frame loop of the portfolio background. The
// Renderer owns scheduling and cancellation, the Background issues the
// two pass draw sequence of every frame.
package render

import (
	"time"

	"github.com/ndev/portfolio/core"
	log "github.com/sirupsen/logrus"
)

// State of the Renderer
type State int

// Renderer states
const (
	Stopped State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "stopped"
}

// Scene draws one frame
type Scene interface {
	Frame(elapsed time.Duration)
}

// New creates a stopped renderer. Every frame first drains queue, so
// background loads complete on the frame goroutine, then draws scene.
func New(scheduler core.FrameScheduler, queue *core.Queue, scene Scene) *Renderer {
	return &Renderer{
		scheduler: scheduler,
		queue:     queue,
		scene:     scene,
	}
}

// Renderer requests one frame per display refresh while running. It is
// driven from a single goroutine, the one the scheduler calls back on.
type Renderer struct {
	scheduler core.FrameScheduler
	queue     *core.Queue
	scene     Scene

	state  State
	token  *core.Token
	frames uint64
}

// Start begins requesting frames, a running renderer is left alone
func (r *Renderer) Start() {
	if r.state == Running {
		return
	}
	r.state = Running
	r.token = core.NewToken()
	r.schedule(r.token)
	log.Debug("renderer started")
}

// Stop cancels the pending frame. A frame already being drawn completes.
func (r *Renderer) Stop() {
	if r.state == Stopped {
		return
	}
	r.state = Stopped
	r.token.Cancel()
	log.WithField("frames", r.frames).Debug("renderer stopped")
}

// State returns whether the renderer is running
func (r *Renderer) State() State {
	return r.state
}

// Frames returns the number of frames drawn
func (r *Renderer) Frames() uint64 {
	return r.frames
}

func (r *Renderer) schedule(token *core.Token) {
	r.scheduler.RequestFrame(func(elapsed time.Duration) {
		r.tick(token, elapsed)
	})
}

func (r *Renderer) tick(token *core.Token, elapsed time.Duration) {
	if token.Cancelled() {
		return
	}
	if r.queue != nil {
		r.queue.Drain()
	}
	r.scene.Frame(elapsed)
	r.frames++

	if !token.Cancelled() {
		r.schedule(token)
	}
}
