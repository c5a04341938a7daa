package clock

import (
	"testing"
	"time"
)

func TestWall_NowMillis(t *testing.T) {
	before := time.Now().UnixMilli()
	got := Wall{}.NowMillis()
	after := time.Now().UnixMilli()

	if got < before || got > after {
		t.Errorf("Expected wall time in [%d, %d], got %d", before, after, got)
	}
}

func TestManual_AdvanceAndRead(t *testing.T) {
	m := &Manual{Millis: 1000}
	if m.NowMillis() != 1000 {
		t.Errorf("Expected 1000, got %d", m.NowMillis())
	}

	m.Advance(250)
	if m.NowMillis() != 1250 {
		t.Errorf("Expected 1250 after advance, got %d", m.NowMillis())
	}
}

func TestNext_ClockAdvanced(t *testing.T) {
	m := &Manual{Millis: 2000}
	got := Next(m, 1500)
	if got != 2000 {
		t.Errorf("Expected wall time 2000, got %d", got)
	}
}

func TestNext_ClockStalled(t *testing.T) {
	m := &Manual{Millis: 2000}

	// Wall time equal to the previous token
	if got := Next(m, 2000); got != 2001 {
		t.Errorf("Expected bump to 2001, got %d", got)
	}

	// Wall time behind the previous token (clock skew)
	if got := Next(m, 3000); got != 3001 {
		t.Errorf("Expected bump to 3001, got %d", got)
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name     string
		a, b     int64
		expected CompareResult
	}{
		{name: "a before b", a: 1, b: 2, expected: Before},
		{name: "a after b", a: 5, b: 3, expected: After},
		{name: "equal", a: 7, b: 7, expected: Equal},
		{name: "zero vs positive", a: 0, b: 1, expected: Before},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Compare(tt.a, tt.b); got != tt.expected {
				t.Errorf("Compare(%d, %d): expected %v, got %v", tt.a, tt.b, tt.expected, got)
			}
		})
	}
}

func TestCompareResult_String(t *testing.T) {
	if Before.String() != "BEFORE" {
		t.Errorf("Expected BEFORE, got %s", Before.String())
	}
	if After.String() != "AFTER" {
		t.Errorf("Expected AFTER, got %s", After.String())
	}
	if Equal.String() != "EQUAL" {
		t.Errorf("Expected EQUAL, got %s", Equal.String())
	}
	if CompareResult(42).String() != "UNKNOWN" {
		t.Errorf("Expected UNKNOWN, got %s", CompareResult(42).String())
	}
}
