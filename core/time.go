package core

import (
	"context"
	"time"
)

// FrameScheduler hands out one callback per display refresh.
// The callback receives the time elapsed since the scheduler started.
type FrameScheduler interface {
	RequestFrame(func(elapsed time.Duration))
}

// NewTime creates a new time service
func NewTime(cfg TimeConfiguration) *Time {
	var interval time.Duration
	if cfg.FramesPerSecond == 0 {
		interval = time.Nanosecond
	} else {
		interval = time.Second / (time.Duration)(cfg.FramesPerSecond)
	}

	return &Time{
		fps:      cfg.FramesPerSecond,
		interval: interval,
		now:      time.Now,
		started:  time.Now(),
	}
}

// Time contains the frame services driven by a ticker. It is a FrameScheduler
// for hosts without a display refresh callback of their own. Callbacks run on
// the goroutine calling Run or Frame.
type Time struct {
	fps      int
	interval time.Duration

	now     func() time.Time
	started time.Time
	pending []func(time.Duration)
}

// Fps gets the set frames per second
func (t *Time) Fps() int {
	return t.fps
}

// Interval is the time between two frames
func (t *Time) Interval() time.Duration {
	return t.interval
}

// Elapsed returns the time since the service was created
func (t *Time) Elapsed() time.Duration {
	return t.now().Sub(t.started)
}

// RequestFrame implements FrameScheduler
func (t *Time) RequestFrame(fn func(time.Duration)) {
	t.pending = append(t.pending, fn)
}

// Pending reports how many callbacks wait for the next frame
func (t *Time) Pending() int {
	return len(t.pending)
}

// Frame runs every callback requested before this call. Callbacks requested
// while running are kept for the next frame.
func (t *Time) Frame() {
	pending := t.pending
	t.pending = nil
	elapsed := t.Elapsed()
	for _, fn := range pending {
		fn(elapsed)
	}
}

// Run calls Frame on every tick until ctx is done. The optional poll
// function runs before every frame, it is where hosts pump their events.
func (t *Time) Run(ctx context.Context, poll func()) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if poll != nil {
				poll()
			}
			t.Frame()
		}
	}
}
