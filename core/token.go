package core

import "sync/atomic"

// Token is a cooperative cancellation flag. Whoever holds it checks
// Cancelled at a safe point; nothing is interrupted.
type Token struct {
	cancelled int32
}

// NewToken returns a live token
func NewToken() *Token {
	return &Token{}
}

// Cancel marks the token. Safe to call more than once.
func (t *Token) Cancel() {
	atomic.StoreInt32(&t.cancelled, 1)
}

// Cancelled reports whether Cancel was called. A nil token is never cancelled.
func (t *Token) Cancelled() bool {
	if t == nil {
		return false
	}
	return atomic.LoadInt32(&t.cancelled) == 1
}
