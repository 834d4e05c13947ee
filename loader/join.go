package loader

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// NewJoin creates a completion barrier over the named members. done fires
// exactly once, after every member resolved or on Expire. A join without
// members fires immediately.
func NewJoin(members []string, done func(error)) *Join {
	j := &Join{
		pending: make(map[string]bool, len(members)),
		done:    done,
	}
	for _, m := range members {
		j.pending[m] = true
	}
	if len(j.pending) == 0 {
		j.fire()
	}
	return j
}

// Join is a counted fan-in barrier. Failed members count as resolved, the
// first failure is what done receives.
type Join struct {
	mutex   sync.Mutex
	pending map[string]bool
	err     error
	fired   bool
	done    func(error)
}

// Resolve marks a member complete. Unknown or already resolved members
// are ignored.
func (j *Join) Resolve(member string, err error) {
	j.mutex.Lock()
	if j.fired || !j.pending[member] {
		j.mutex.Unlock()
		return
	}
	delete(j.pending, member)
	if err != nil && j.err == nil {
		j.err = fmt.Errorf("%s: %w", member, err)
	}
	last := len(j.pending) == 0
	j.mutex.Unlock()

	if last {
		j.fire()
	}
}

// Expire fires the join with ErrTimeout when members are still pending
func (j *Join) Expire() {
	pending := j.Pending()
	if len(pending) == 0 {
		return
	}
	j.mutex.Lock()
	j.err = fmt.Errorf("waiting for %s: %w", strings.Join(pending, ", "), ErrTimeout)
	j.mutex.Unlock()
	j.fire()
}

// Pending returns the unresolved members, sorted
func (j *Join) Pending() []string {
	j.mutex.Lock()
	defer j.mutex.Unlock()
	if j.fired {
		return nil
	}
	names := make([]string, 0, len(j.pending))
	for m := range j.pending {
		names = append(names, m)
	}
	sort.Strings(names)
	return names
}

// Fired reports whether done has been called
func (j *Join) Fired() bool {
	j.mutex.Lock()
	defer j.mutex.Unlock()
	return j.fired
}

func (j *Join) fire() {
	j.mutex.Lock()
	if j.fired {
		j.mutex.Unlock()
		return
	}
	j.fired = true
	err := j.err
	j.mutex.Unlock()

	if j.done != nil {
		j.done(err)
	}
}
