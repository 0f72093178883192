// Package tariff implements the demand-charge cost rules for a committed
// contract capacity: a fixed basic charge per committed kW, a penalty
// multiplier on overage kW, and a non-billed opportunity cost on idle kW.
package tariff

import (
	"math"
	"slices"

	"peakplan/internal/stats"
)

// Rates holds the billing parameters of the tariff.
type Rates struct {
	// BasicRatePerKW is the monthly charge per committed kW.
	BasicRatePerKW float64 `json:"basic_rate_per_kw"`
	// OverageMultiplier scales the basic rate for every kW above the commitment.
	OverageMultiplier float64 `json:"overage_multiplier"`
}

// DefaultRates returns the standard tariff parameters.
func DefaultRates() Rates {
	return Rates{
		BasicRatePerKW:    8320,
		OverageMultiplier: 1.5,
	}
}

// Model evaluates the tariff rules. It is stateless apart from the rates.
type Model struct {
	rates Rates
}

// NewModel builds a Model, defaulting each rate independently so a
// partially-filled Rates cannot zero out the overage penalty.
func NewModel(rates Rates) *Model {
	def := DefaultRates()
	if rates.BasicRatePerKW <= 0 {
		rates.BasicRatePerKW = def.BasicRatePerKW
	}
	if rates.OverageMultiplier <= 0 {
		rates.OverageMultiplier = def.OverageMultiplier
	}
	return &Model{rates: rates}
}

// Rates returns the billing parameters the model was built with.
func (m *Model) Rates() Rates { return m.rates }

// CostBreakdown is the per-month outcome for one (commitment, actual peak) pair.
// TotalCost is what gets billed; OpportunityCost is a decision signal only.
type CostBreakdown struct {
	CommittedKW      float64 `json:"committed_kw"`
	ActualPeakKW     float64 `json:"actual_peak_kw"`
	BasicCost        float64 `json:"basic_cost"`
	OverageCost      float64 `json:"overage_cost"`
	OpportunityCost  float64 `json:"opportunity_cost"`
	TotalCost        float64 `json:"total_cost"`
	IsOvercommitted  bool    `json:"is_overcommitted"`
	IsUndercommitted bool    `json:"is_undercommitted"`
	WasteKW          float64 `json:"waste_kw"`
	OverageKW        float64 `json:"overage_kw"`
}

// MonthlyCost applies the tariff to one month. includeOpportunityCost only
// controls whether idle capacity is priced into OpportunityCost; the
// overcommitment status itself depends purely on the kW figures.
func (m *Model) MonthlyCost(committedKW, actualPeakKW float64, includeOpportunityCost bool) CostBreakdown {
	basic := committedKW * m.rates.BasicRatePerKW

	overageKW := math.Max(0, actualPeakKW-committedKW)
	overageCost := overageKW * m.rates.BasicRatePerKW * m.rates.OverageMultiplier

	wasteKW := math.Max(0, committedKW-actualPeakKW)
	opportunityCost := 0.0
	if includeOpportunityCost {
		opportunityCost = wasteKW * m.rates.BasicRatePerKW
	}

	return CostBreakdown{
		CommittedKW:      committedKW,
		ActualPeakKW:     actualPeakKW,
		BasicCost:        basic,
		OverageCost:      overageCost,
		OpportunityCost:  opportunityCost,
		TotalCost:        basic + overageCost,
		IsOvercommitted:  wasteKW > 0,
		IsUndercommitted: overageKW > 0,
		WasteKW:          wasteKW,
		OverageKW:        overageKW,
	}
}

// AnnualCost is the monthly billed cost times 12. Months are treated as
// statistically identical, a documented simplification of the model.
func (m *Model) AnnualCost(committedKW, actualPeakKW float64) float64 {
	return m.MonthlyCost(committedKW, actualPeakKW, false).TotalCost * 12
}

// Comparison holds the numeric side-by-side of two commitments against the
// same actual peak. Rendering it into text is the recommend package's job.
type Comparison struct {
	Current        CostBreakdown `json:"current"`
	Proposed       CostBreakdown `json:"proposed"`
	MonthlySavings float64       `json:"monthly_savings"`
	AnnualSavings  float64       `json:"annual_savings"`
}

// Compare evaluates the current and a proposed commitment against one
// actual peak. Positive savings mean the proposed commitment bills less.
func (m *Model) Compare(currentKW, newKW, actualPeakKW float64) Comparison {
	cur := m.MonthlyCost(currentKW, actualPeakKW, true)
	prop := m.MonthlyCost(newKW, actualPeakKW, true)
	monthly := cur.TotalCost - prop.TotalCost
	return Comparison{
		Current:        cur,
		Proposed:       prop,
		MonthlySavings: monthly,
		AnnualSavings:  monthly * 12,
	}
}

// Quartiles are the reporting percentiles of a monthly cost distribution.
type Quartiles struct {
	P25 float64 `json:"p25"`
	P50 float64 `json:"p50"`
	P75 float64 `json:"p75"`
	P95 float64 `json:"p95"`
}

// CostStats summarizes the monthly billed cost across every sample of a
// demand distribution for one fixed commitment.
type CostStats struct {
	CommittedKW  float64   `json:"committed_kw"`
	ExpectedCost float64   `json:"expected_cost"`
	CostStd      float64   `json:"cost_std"`
	MinCost      float64   `json:"min_cost"`
	MaxCost      float64   `json:"max_cost"`
	Percentiles  Quartiles `json:"percentiles"`
	OveragePct   float64   `json:"overage_probability"`
	WastePct     float64   `json:"waste_probability"`
	SampleCount  int       `json:"sample_count"`
}

// CostDistribution applies MonthlyCost (opportunity cost excluded) to every
// sample in the demand distribution. The input is read-only; samples are
// assumed pre-validated by the caller.
func (m *Model) CostDistribution(committedKW float64, demandSamples []float64) CostStats {
	n := len(demandSamples)
	if n == 0 {
		return CostStats{CommittedKW: committedKW}
	}

	costs := make([]float64, n)
	overages := 0
	wastes := 0
	for i, peak := range demandSamples {
		bd := m.MonthlyCost(committedKW, peak, false)
		costs[i] = bd.TotalCost
		if bd.OverageKW > 0 {
			overages++
		}
		if bd.WasteKW > 0 {
			wastes++
		}
	}

	sorted := make([]float64, n)
	copy(sorted, costs)
	slices.Sort(sorted)

	return CostStats{
		CommittedKW:  committedKW,
		ExpectedCost: stats.Mean(costs),
		CostStd:      stats.StdDev(costs),
		MinCost:      stats.Min(costs),
		MaxCost:      stats.Max(costs),
		Percentiles: Quartiles{
			P25: stats.PercentileSorted(sorted, 0.25),
			P50: stats.PercentileSorted(sorted, 0.50),
			P75: stats.PercentileSorted(sorted, 0.75),
			P95: stats.PercentileSorted(sorted, 0.95),
		},
		OveragePct:  float64(overages) / float64(n) * 100,
		WastePct:    float64(wastes) / float64(n) * 100,
		SampleCount: n,
	}
}
