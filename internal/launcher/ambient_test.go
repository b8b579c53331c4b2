// SPDX-License-Identifier: MPL-2.0

package launcher

import "testing"

func TestSlot_EnterRestoresPrevious(t *testing.T) {
	t.Parallel()

	var s Slot
	outer := newFakeContext("outer", "")
	inner := newFakeContext("inner", "")

	releaseOuter := s.Enter(outer)
	releaseInner := s.Enter(inner)
	if got := s.Current(); got != inner {
		t.Fatalf("Current() = %v, want inner", got)
	}

	releaseInner()
	if got := s.Current(); got != outer {
		t.Errorf("Current() after inner release = %v, want outer", got)
	}

	releaseOuter()
	if got := s.Current(); got != nil {
		t.Errorf("Current() after outer release = %v, want nil", got)
	}
}

func TestSlot_ReleaseIsIdempotent(t *testing.T) {
	t.Parallel()

	var s Slot
	outer := newFakeContext("outer", "")
	s.Enter(outer)

	release := s.Enter(newFakeContext("inner", ""))
	release()
	release()

	if got := s.Current(); got != outer {
		t.Errorf("Current() = %v, want outer", got)
	}
}
