package clock

import (
	"testing"
)

// TestNext_Property_StrictlyIncreasing tests that a chain of Next calls
// always produces a strictly increasing token sequence, even when the
// wall clock stalls or runs backwards.
func TestNext_Property_StrictlyIncreasing(t *testing.T) {
	m := &Manual{Millis: 1000}

	prev := int64(0)
	steps := []int64{0, 0, 5, 0, -3, 100, 0, 1}
	for i, d := range steps {
		m.Millis += d
		next := Next(m, prev)
		if next <= prev {
			t.Fatalf("Step %d: token %d not strictly greater than previous %d", i, next, prev)
		}
		prev = next
	}
}

// TestNext_Property_TracksWallClock tests that Next follows the wall
// clock whenever it is ahead of the previous token, so tokens remain
// meaningful as timestamps.
func TestNext_Property_TracksWallClock(t *testing.T) {
	m := &Manual{Millis: 1000}

	prev := int64(0)
	for i := 0; i < 10; i++ {
		m.Advance(10)
		next := Next(m, prev)
		if next != m.Millis {
			t.Fatalf("Iteration %d: expected token to equal wall time %d, got %d", i, m.Millis, next)
		}
		prev = next
	}
}

// TestCompare_Property_Antisymmetric tests that flipping the operands
// of Compare flips Before and After, and preserves Equal.
func TestCompare_Property_Antisymmetric(t *testing.T) {
	pairs := [][2]int64{{1, 2}, {2, 1}, {3, 3}, {0, 1000}}
	for _, p := range pairs {
		forward := Compare(p[0], p[1])
		backward := Compare(p[1], p[0])

		switch forward {
		case Before:
			if backward != After {
				t.Errorf("Compare(%d,%d)=Before but Compare(%d,%d)=%v, expected After", p[0], p[1], p[1], p[0], backward)
			}
		case After:
			if backward != Before {
				t.Errorf("Compare(%d,%d)=After but Compare(%d,%d)=%v, expected Before", p[0], p[1], p[1], p[0], backward)
			}
		case Equal:
			if backward != Equal {
				t.Errorf("Compare(%d,%d)=Equal but Compare(%d,%d)=%v, expected Equal", p[0], p[1], p[1], p[0], backward)
			}
		}
	}
}
