package rcscan

// widenedPositions is the last cursor index that gets doubled tolerance.
// Timing right after capture start is the least reliable.
const widenedPositions = 2

func absDiff(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}

// inTolerance reports whether measured is within pct percent of expected.
// The allowance is truncated to whole microseconds and the bound is exclusive.
func inTolerance(measured, expected, pct int) bool {
	return absDiff(measured, expected) < expected*pct/100
}

// Match reports whether a measured high/low pair matches the symbol want,
// scaled by baseUs. widen doubles the tolerance. acceptMissingLow accepts
// the pair on the high phase alone when the low phase was never captured.
func Match(high, low, baseUs uint16, want Ratio, tolerancePct uint8, widen, acceptMissingLow bool) bool {
	pct := int(tolerancePct)
	if widen {
		pct *= 2
	}
	base := int(baseUs)

	if !inTolerance(int(high), int(want.High)*base, pct) {
		return false
	}
	if acceptMissingLow && low == 0 {
		return true
	}
	return inTolerance(int(low), int(want.Low)*base, pct)
}
