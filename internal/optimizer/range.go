package optimizer

import (
	"math"

	"peakplan/internal/stats"
)

// SelectRange picks the [lo, hi] span of step-aligned candidate capacities
// worth evaluating. It anchors on the distribution's 5th/95th percentiles,
// widens low-variance windows around the median, and always returns at
// least one candidate for any non-empty finite distribution.
func SelectRange(distribution []float64, minKW, maxKW, stepKW int) (lo, hi int) {
	p5 := stats.Percentile(distribution, 0.05)
	p95 := stats.Percentile(distribution, 0.95)

	lo = clampKW(floorToStep(p5, stepKW), minKW, maxKW)
	hi = clampKW(ceilToStep(p95, stepKW), minKW, maxKW)

	// Low-variance distribution: the percentile window collapses onto too
	// few candidates. Recenter a one-step window around the median.
	if hi-lo < 2*stepKW {
		med := floorToStep(stats.Median(distribution), stepKW)
		lo = clampKW(med-stepKW, minKW, maxKW)
		hi = clampKW(med+stepKW, minKW, maxKW)
	}

	// Still degenerate (median outside the bounds, or bounds themselves
	// tight): force a minimum window hugging whichever bound the collapsed
	// window landed on, so a clamped anchor keeps pointing at the nearest
	// in-bounds capacities.
	if hi-lo < 2*stepKW {
		hi = clampKW(lo+2*stepKW, minKW, maxKW)
		lo = clampKW(hi-2*stepKW, minKW, maxKW)
	}

	if hi < lo {
		hi = lo
	}
	return lo, hi
}

// Candidates expands a [lo, hi] span into the ordered candidate list.
func Candidates(lo, hi, stepKW int) []int {
	out := make([]int, 0, (hi-lo)/stepKW+1)
	for kw := lo; kw <= hi; kw += stepKW {
		out = append(out, kw)
	}
	return out
}

func floorToStep(v float64, step int) int {
	return int(math.Floor(v/float64(step))) * step
}

func ceilToStep(v float64, step int) int {
	return int(math.Ceil(v/float64(step))) * step
}

func clampKW(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
