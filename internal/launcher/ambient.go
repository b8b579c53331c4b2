// SPDX-License-Identifier: MPL-2.0

package launcher

import "sync"

// DefaultSlot is the process-wide slot used by launchers created without
// WithSlot.
var DefaultSlot = &Slot{}

// Slot holds the execution context of the entry point currently running.
//
// A Slot is a single register: launches sharing one Slot must not overlap.
// Code that runs launches concurrently gives each Launcher its own Slot;
// invoked code should prefer ExecutionContextFrom, which is scoped to the
// call.
type Slot struct {
	mu      sync.Mutex
	current ExecutionContext
}

// Current returns the active execution context, or nil.
func (s *Slot) Current() ExecutionContext {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Enter installs ec and returns a function restoring the previous value.
// The returned function is idempotent; callers defer it.
func (s *Slot) Enter(ec ExecutionContext) (release func()) {
	s.mu.Lock()
	prev := s.current
	s.current = ec
	s.mu.Unlock()

	return sync.OnceFunc(func() {
		s.mu.Lock()
		s.current = prev
		s.mu.Unlock()
	})
}
