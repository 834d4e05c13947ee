//go:build js && wasm

package webgl

import (
	"syscall/js"
	"time"
)

// AnimationFrames is a core.FrameScheduler backed by requestAnimationFrame.
// Callbacks run on the browser event loop, which is the goroutine owning
// the WebGL device.
type AnimationFrames struct {
	started float64
	window  js.Value
}

// NewAnimationFrames uses the global window
func NewAnimationFrames() *AnimationFrames {
	return &AnimationFrames{started: -1, window: js.Global()}
}

// RequestFrame implements core.FrameScheduler
func (a *AnimationFrames) RequestFrame(fn func(time.Duration)) {
	var cb js.Func
	cb = js.FuncOf(func(this js.Value, args []js.Value) any {
		cb.Release()
		var stamp float64
		if len(args) > 0 {
			stamp = args[0].Float()
		}
		if a.started < 0 {
			a.started = stamp
		}
		fn(time.Duration((stamp - a.started) * float64(time.Millisecond)))
		return nil
	})
	a.window.Call("requestAnimationFrame", cb)
}
