package navigation

import (
	"sync"

	"github.com/pkg/errors"
)

// ErrStaleTransition is returned by Navigator.Go when the state was derived from a state
// that is no longer current (e.g. two UI events raced on the same base state).
var ErrStaleTransition = errors.New("transition derived from a stale navigation state")

// Ticket tags work issued for a navigation state, such as a student list fetch.
type Ticket struct {
	gen   uint64
	state State
}

func (t Ticket) Generation() uint64 { return t.gen }
func (t Ticket) State() State { return t.state }

type Option func(*Navigator)

// WithObserver registers fn to be called after every committed transition.
// fn is called without holding the navigator lock.
func WithObserver(fn func(from, to State)) Option {
	return func(n *Navigator) {
		n.observers = append(n.observers, fn)
	}
}

// Navigator holds the current navigation state of a page.
// Every commit bumps a monotonically increasing generation.
type Navigator struct {
	mu        sync.RWMutex
	state     State
	gen       uint64
	observers []func(from, to State)
}

// New returns a Navigator on the grade list.
func New(opts ...Option) *Navigator {
	n := &Navigator{state: Grades{}}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// State returns the current state. Transitions must be derived from it.
func (n *Navigator) State() State {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.state
}

// Ticket returns a tag for the current state.
func (n *Navigator) Ticket() Ticket {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return Ticket{gen: n.gen, state: n.state}
}

// Current reports whether no transition was committed since t was issued.
func (n *Navigator) Current(t Ticket) bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return t.gen == n.gen
}

// Go commits next, which must be derived from the current state.
// Going from Grades to Grades is a no-op.
func (n *Navigator) Go(next State) (Ticket, error) {
	if next == nil {
		return Ticket{}, errors.New("nil navigation state")
	}

	n.mu.Lock()
	if next.base() != n.gen {
		n.mu.Unlock()
		return Ticket{}, ErrStaleTransition
	}
	prev := n.state
	if prev.View() == ViewGrades && next.View() == ViewGrades {
		t := Ticket{gen: n.gen, state: n.state}
		n.mu.Unlock()
		return t, nil
	}
	n.gen++
	n.state = next.committed(n.gen)
	t := Ticket{gen: n.gen, state: n.state}
	observers := n.observers
	n.mu.Unlock()

	for _, fn := range observers {
		fn(prev, t.state)
	}
	return t, nil
}

// Back goes back from the current state. It is a no-op on the grade list.
func (n *Navigator) Back() Ticket {
	for {
		t, err := n.Go(n.State().Back())
		if err == nil {
			return t
		}
		// lost a race with a concurrent commit; retry on the new state
	}
}
