package optimizer

import (
	"math"

	"peakplan/internal/stats"
)

// ShortfallPoint projects one historical daily peak against a candidate
// capacity. SimulatedPeakKW is a heuristic visualization aid, not a
// statistical forecast.
type ShortfallPoint struct {
	Date             string  `json:"date"`
	HistoricalPeakKW float64 `json:"historical_peak_kw"`
	SimulatedPeakKW  float64 `json:"simulated_peak_kw"`
	RiskFactor       float64 `json:"risk_factor"`
}

// ShortfallSimulation quantifies how one candidate would fail: how often the
// forecast exceeds it and by how much, optionally projected onto observed
// daily peaks.
type ShortfallSimulation struct {
	CandidateKW     int              `json:"candidate_kw"`
	OvershootPct    float64          `json:"overshoot_probability"`
	MeanOvershootKW float64          `json:"mean_overshoot_kw"`
	P90OvershootKW  float64          `json:"p90_overshoot_kw"`
	Projection      []ShortfallPoint `json:"projection,omitempty"`
}

// SimulateShortfall measures overshoot probability and magnitude for one
// candidate from the Monte-Carlo distribution, then projects the P90
// overshoot onto the historical peaks: days already near the candidate get
// most of the overshoot, days far below get none.
func SimulateShortfall(candidateKW int, distribution []float64, history []HistoricalPeak) ShortfallSimulation {
	capacity := float64(candidateKW)
	sim := ShortfallSimulation{CandidateKW: candidateKW}

	var overshoots []float64
	for _, sample := range distribution {
		if sample > capacity {
			overshoots = append(overshoots, sample-capacity)
		}
	}
	if len(distribution) > 0 {
		sim.OvershootPct = float64(len(overshoots)) / float64(len(distribution)) * 100
	}
	if len(overshoots) > 0 {
		sim.MeanOvershootKW = stats.Mean(overshoots)
		sim.P90OvershootKW = stats.Percentile(overshoots, 0.90)
	}

	if len(history) == 0 {
		return sim
	}

	margin := math.Max(capacity*0.2, 5)
	overshootTarget := sim.P90OvershootKW

	sim.Projection = make([]ShortfallPoint, 0, len(history))
	for _, day := range history {
		riskFactor := math.Min(math.Max((day.PeakKW-capacity)/margin, 0), 1)
		sim.Projection = append(sim.Projection, ShortfallPoint{
			Date:             day.Date,
			HistoricalPeakKW: day.PeakKW,
			SimulatedPeakKW:  capacity + overshootTarget*riskFactor,
			RiskFactor:       riskFactor,
		})
	}
	return sim
}
