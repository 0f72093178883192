// Package optimizer picks the discretized contract capacity that minimizes
// expected billed cost over a Monte-Carlo demand distribution while keeping
// the risk of exceeding the commitment within the caller's tolerance.
package optimizer

import (
	"errors"
	"fmt"
	"math"
	"time"

	"peakplan/internal/tariff"
)

var (
	// ErrInvalidInput marks a request rejected before any computation ran.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNoViableCandidates marks an internal consistency failure: the
	// evaluation stage produced zero candidates for a validated range.
	ErrNoViableCandidates = errors.New("no viable candidates")
)

// Defaults for the candidate grid and the risk dial.
const (
	DefaultMinContractKW = 10
	DefaultMaxContractKW = 200
	DefaultStepKW        = 10
	DefaultRiskTolerance = 0.1
)

// SessionPoint is one finer-grained point prediction, distinct from the
// Monte-Carlo sample set. Timestamps are informational; ordering is the
// caller's responsibility.
type SessionPoint struct {
	Timestamp   time.Time `json:"timestamp"`
	PredictedKW float64   `json:"predicted_kw"`
}

// HistoricalPeak is one observed daily peak, used only for the shortfall
// visualization series.
type HistoricalPeak struct {
	Date   string  `json:"date"`
	PeakKW float64 `json:"peak_kw"`
}

// Request carries everything one optimization call consumes. The demand
// distribution is read-only; nothing is retained between calls.
type Request struct {
	DemandDistribution []float64        `json:"demand_distribution"`
	CurrentContractKW  int              `json:"current_contract_kw,omitempty"` // 0 = no existing commitment
	MinContractKW      int              `json:"min_contract_kw,omitempty"`
	MaxContractKW      int              `json:"max_contract_kw,omitempty"`
	StepKW             int              `json:"step_kw,omitempty"`
	RiskTolerance      float64          `json:"risk_tolerance"`
	SessionSeries      []SessionPoint   `json:"session_series,omitempty"`
	HistoricalPeaks    []HistoricalPeak `json:"historical_peaks,omitempty"`
}

// withDefaults fills unset grid parameters. RiskTolerance keeps an explicit
// zero (it is a meaningful dial position); callers wanting the default pass
// DefaultRiskTolerance.
func (r Request) withDefaults() Request {
	if r.MinContractKW == 0 {
		r.MinContractKW = DefaultMinContractKW
	}
	if r.MaxContractKW == 0 {
		r.MaxContractKW = DefaultMaxContractKW
	}
	if r.StepKW == 0 {
		r.StepKW = DefaultStepKW
	}
	return r
}

// validate fails fast before any computation. A failed request never
// produces a partial result.
func (r Request) validate() error {
	if len(r.DemandDistribution) == 0 {
		return fmt.Errorf("%w: demand distribution is empty", ErrInvalidInput)
	}
	for i, v := range r.DemandDistribution {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: sample %d is not finite", ErrInvalidInput, i)
		}
		if v < 0 {
			return fmt.Errorf("%w: sample %d is negative (%v)", ErrInvalidInput, i, v)
		}
	}
	if r.StepKW <= 0 {
		return fmt.Errorf("%w: step_kw must be > 0, got %d", ErrInvalidInput, r.StepKW)
	}
	if r.MinContractKW >= r.MaxContractKW {
		return fmt.Errorf("%w: min_contract_kw (%d) must be < max_contract_kw (%d)",
			ErrInvalidInput, r.MinContractKW, r.MaxContractKW)
	}
	if r.CurrentContractKW < 0 {
		return fmt.Errorf("%w: current_contract_kw must be positive, got %d", ErrInvalidInput, r.CurrentContractKW)
	}
	if r.RiskTolerance < 0 || r.RiskTolerance > 1 {
		return fmt.Errorf("%w: risk_tolerance must be in [0,1], got %v", ErrInvalidInput, r.RiskTolerance)
	}
	return nil
}

// SessionRisk is the optional finer-grained overage/waste enrichment for one
// candidate, computed from the session point-prediction series.
type SessionRisk struct {
	SampleSize     int     `json:"sample_size"`
	OveragePct     float64 `json:"overage_probability"`
	AvgOvershootKW float64 `json:"avg_overshoot_kw"`
	MaxOvershootKW float64 `json:"max_overshoot_kw"`
	WastePct       float64 `json:"waste_probability"`
	AvgWasteKW     float64 `json:"avg_waste_kw"`
}

// CandidateEvaluation is the full Monte-Carlo verdict for one candidate
// capacity. Computed once, never mutated.
type CandidateEvaluation struct {
	CandidateKW        int              `json:"candidate_kw"`
	ExpectedAnnualCost float64          `json:"expected_annual_cost"`
	CostStd            float64          `json:"cost_std"`
	Percentiles        tariff.Quartiles `json:"cost_percentiles"`
	OveragePct         float64          `json:"overage_probability"`
	WastePct           float64          `json:"waste_probability"`
	RiskScore          float64          `json:"risk_score"`
	SessionRisk        *SessionRisk     `json:"session_risk,omitempty"`
}

// DecisionFactors are the numeric inputs the selection was based on,
// reported for auditability.
type DecisionFactors struct {
	SampleCount      int     `json:"sample_count"`
	DemandMeanKW     float64 `json:"demand_mean_kw"`
	DemandStdKW      float64 `json:"demand_std_kw"`
	DemandP50KW      float64 `json:"demand_p50_kw"`
	DemandP95KW      float64 `json:"demand_p95_kw"`
	RiskTolerance    float64 `json:"risk_tolerance"`
	CandidatesTested int     `json:"candidates_tested"`
}

// OptimizationResult is the numeric outcome of one optimization call. All
// human-readable rendering lives in the recommend package.
type OptimizationResult struct {
	OptimalKW          int                   `json:"optimal_kw"`
	CurrentKW          int                   `json:"current_kw,omitempty"`
	ExpectedAnnualCost float64               `json:"expected_annual_cost"`
	ExpectedSavings    *float64              `json:"expected_savings,omitempty"`
	SavingsPercent     *float64              `json:"savings_percent,omitempty"`
	OveragePct         float64               `json:"overage_probability"`
	WastePct           float64               `json:"waste_probability"`
	ConfidenceLevel    float64               `json:"confidence_level"`
	Evaluations        []CandidateEvaluation `json:"all_evaluations"`
	Optimal            CandidateEvaluation   `json:"optimal_evaluation"`
	Factors            DecisionFactors       `json:"decision_factors"`
}
