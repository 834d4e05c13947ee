package core

import "sync"

// Queue carries work from background goroutines back to the goroutine that
// owns the graphics context. Post may be called from anywhere, Drain only
// from the owner.
type Queue struct {
	mutex sync.Mutex
	tasks []func()
}

// NewQueue creates an empty queue
func NewQueue() *Queue {
	return &Queue{}
}

// Post appends fn to the queue
func (q *Queue) Post(fn func()) {
	if fn == nil {
		return
	}
	q.mutex.Lock()
	q.tasks = append(q.tasks, fn)
	q.mutex.Unlock()
}

// Len returns the number of queued tasks
func (q *Queue) Len() int {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	return len(q.tasks)
}

// Drain runs every task queued before the call and returns how many ran.
// Tasks posted by a running task wait for the next Drain.
func (q *Queue) Drain() int {
	q.mutex.Lock()
	tasks := q.tasks
	q.tasks = nil
	q.mutex.Unlock()

	for _, fn := range tasks {
		fn()
	}
	return len(tasks)
}
