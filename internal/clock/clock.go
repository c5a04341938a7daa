package clock

import "time"

// Source provides the current time in milliseconds since the Unix epoch.
// The store asks a Source for the wall time and derives ordering tokens
// from it; tests substitute a Manual source for determinism.
type Source interface {
	NowMillis() int64
}

// Wall is a Source backed by the system clock.
type Wall struct{}

// NowMillis returns the current wall time in milliseconds.
func (Wall) NowMillis() int64 {
	return time.Now().UnixMilli()
}

// Manual is a Source whose time is set explicitly. Not safe for
// concurrent use; intended for tests.
type Manual struct {
	Millis int64
}

// NowMillis returns the manually set time.
func (m *Manual) NowMillis() int64 {
	return m.Millis
}

// Advance moves the manual clock forward by d milliseconds.
func (m *Manual) Advance(d int64) {
	m.Millis += d
}

// Next returns the ordering token for a write that supersedes prev.
// The result is the current wall time, bumped to prev+1 if the wall
// clock has not advanced past prev. Tokens issued through Next for a
// single key are therefore strictly increasing.
func Next(src Source, prev int64) int64 {
	now := src.NowMillis()
	if now <= prev {
		return prev + 1
	}
	return now
}

// CompareResult represents the ordering relationship between two tokens.
type CompareResult int

const (
	// Before indicates the first token predates the second.
	Before CompareResult = iota
	// After indicates the first token postdates the second.
	After
	// Equal indicates the tokens are identical.
	Equal
)

// String returns the string representation of a CompareResult.
func (r CompareResult) String() string {
	switch r {
	case Before:
		return "BEFORE"
	case After:
		return "AFTER"
	case Equal:
		return "EQUAL"
	default:
		return "UNKNOWN"
	}
}

// Compare compares two ordering tokens.
func Compare(a, b int64) CompareResult {
	switch {
	case a < b:
		return Before
	case a > b:
		return After
	default:
		return Equal
	}
}
