package site

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// DismissAfter is how long a notification stays up
const DismissAfter = 3 * time.Second

// Kind of a notification
type Kind int

// Notification kinds
const (
	Success Kind = iota
	Error
)

func (k Kind) String() string {
	if k == Error {
		return "error"
	}
	return "success"
}

// Notification is a message shown to the visitor
type Notification struct {
	Text string
	Kind Kind
}

// Timer is the part of *time.Timer the notifier uses
type Timer interface {
	Stop() bool
}

// AfterFunc schedules fn after d, time.AfterFunc by default
type AfterFunc func(d time.Duration, fn func()) Timer

// NewNotifier creates a notifier dismissing after delay
func NewNotifier(delay time.Duration) *Notifier {
	return &Notifier{
		delay: delay,
		after: func(d time.Duration, fn func()) Timer {
			return time.AfterFunc(d, fn)
		},
	}
}

// Notifier shows one notification at a time. Posting while one is up
// replaces it and restarts the dismiss timer. Listeners may run on the
// timer goroutine.
type Notifier struct {
	mutex      sync.Mutex
	delay      time.Duration
	after      AfterFunc
	current    Notification
	shown      bool
	timer      Timer
	generation int
	listeners  []func(Notification, bool)
}

// SetTimer replaces the function scheduling dismissals
func (n *Notifier) SetTimer(after AfterFunc) {
	n.mutex.Lock()
	n.after = after
	n.mutex.Unlock()
}

// OnChange registers fn to run whenever a notification is shown or
// dismissed, shown is false on dismissal
func (n *Notifier) OnChange(fn func(note Notification, shown bool)) {
	n.mutex.Lock()
	n.listeners = append(n.listeners, fn)
	n.mutex.Unlock()
}

// Post shows a notification
func (n *Notifier) Post(text string, kind Kind) {
	note := Notification{Text: text, Kind: kind}

	n.mutex.Lock()
	if n.timer != nil {
		n.timer.Stop()
	}
	n.generation++
	generation := n.generation
	n.current, n.shown = note, true
	n.timer = n.after(n.delay, func() {
		n.expire(generation)
	})
	listeners := n.listeners
	n.mutex.Unlock()

	log.WithFields(log.Fields{
		"kind": kind,
		"text": text,
	}).Debug("notification posted")
	for _, fn := range listeners {
		fn(note, true)
	}
}

// Current returns the notification shown now
func (n *Notifier) Current() (Notification, bool) {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	return n.current, n.shown
}

// Dismiss hides the current notification
func (n *Notifier) Dismiss() {
	n.mutex.Lock()
	n.generation++
	n.dismiss()
}

func (n *Notifier) expire(generation int) {
	n.mutex.Lock()
	if generation != n.generation {
		n.mutex.Unlock()
		return
	}
	n.dismiss()
}

// dismiss is entered with the mutex held and releases it
func (n *Notifier) dismiss() {
	if !n.shown {
		n.mutex.Unlock()
		return
	}
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	note := n.current
	n.current, n.shown = Notification{}, false
	listeners := n.listeners
	n.mutex.Unlock()

	for _, fn := range listeners {
		fn(note, false)
	}
}
