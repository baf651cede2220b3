package rcscan

import "testing"

func TestInTolerance(t *testing.T) {
	tests := []struct {
		name     string
		measured int
		expected int
		pct      int
		want     bool
	}{
		{"exact", 350, 350, 25, true},
		{"just under above", 436, 350, 25, true},
		{"allowance truncated", 437, 350, 25, false},
		{"just under below", 264, 350, 25, true},
		{"at bound below", 263, 350, 25, false},
		{"zero tolerance never matches", 350, 350, 0, false},
		{"zero expected never matches", 0, 0, 25, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := inTolerance(tt.measured, tt.expected, tt.pct); got != tt.want {
				t.Errorf("inTolerance(%d, %d, %d) = %v, want %v", tt.measured, tt.expected, tt.pct, got, tt.want)
			}
		})
	}
}

func TestMatch(t *testing.T) {
	zero := Ratio{High: 1, Low: 3}

	tests := []struct {
		name       string
		high, low  uint16
		widen      bool
		acceptZero bool
		want       bool
	}{
		{"exact pair", 350, 1050, false, false, true},
		{"high out of tolerance", 440, 1050, false, false, false},
		{"low out of tolerance", 350, 1320, false, false, false},
		{"low within widened tolerance", 350, 1520, true, false, true},
		{"high within widened tolerance", 520, 1050, true, false, true},
		{"high beyond widened tolerance", 525, 1050, true, false, false},
		{"missing low rejected", 350, 0, false, false, false},
		{"missing low accepted", 350, 0, false, true, true},
		{"missing low still needs high", 600, 0, false, true, false},
		{"accept flag ignores non-zero low", 350, 500, false, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Match(tt.high, tt.low, 350, zero, 25, tt.widen, tt.acceptZero)
			if got != tt.want {
				t.Errorf("Match(%d, %d) = %v, want %v", tt.high, tt.low, got, tt.want)
			}
		})
	}
}
