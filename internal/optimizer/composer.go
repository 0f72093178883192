package optimizer

import (
	"context"

	"peakplan/internal/stats"
	"peakplan/internal/tariff"
)

// UrgencyThresholds are the annual-savings cutoffs for the urgency
// classification, in the tariff's currency units per year.
type UrgencyThresholds struct {
	High   float64 `json:"high"`
	Medium float64 `json:"medium"`
	Low    float64 `json:"low"`
}

func DefaultUrgencyThresholds() UrgencyThresholds {
	return UrgencyThresholds{High: 1_000_000, Medium: 500_000, Low: 100_000}
}

// Composer orchestrates range selection, Monte-Carlo evaluation and
// candidate selection into one auditable result. It holds only read-only
// configuration; every call builds its output from scratch.
type Composer struct {
	model     *tariff.Model
	estimator *Estimator
}

func NewComposer(model *tariff.Model) *Composer {
	return &Composer{
		model:     model,
		estimator: NewEstimator(model),
	}
}

// Model returns the tariff model the composer evaluates with.
func (c *Composer) Model() *tariff.Model { return c.model }

// Optimize runs the full pipeline: validate, select the candidate range,
// evaluate every candidate against the distribution, pick the optimum, and
// compare against the current commitment if one was given.
func (c *Composer) Optimize(ctx context.Context, req Request) (*OptimizationResult, error) {
	req = req.withDefaults()
	if err := req.validate(); err != nil {
		return nil, err
	}

	lo, hi := SelectRange(req.DemandDistribution, req.MinContractKW, req.MaxContractKW, req.StepKW)

	evals, err := c.estimator.Evaluate(ctx, lo, hi, req.StepKW, req.DemandDistribution, req.RiskTolerance, req.SessionSeries)
	if err != nil {
		return nil, err
	}

	optimal, err := SelectOptimal(evals)
	if err != nil {
		return nil, err
	}

	dist := req.DemandDistribution
	result := &OptimizationResult{
		OptimalKW:          optimal.CandidateKW,
		CurrentKW:          req.CurrentContractKW,
		ExpectedAnnualCost: optimal.ExpectedAnnualCost,
		OveragePct:         optimal.OveragePct,
		WastePct:           optimal.WastePct,
		ConfidenceLevel:    confidenceLevel(len(dist)),
		Evaluations:        evals,
		Optimal:            optimal,
		Factors: DecisionFactors{
			SampleCount:      len(dist),
			DemandMeanKW:     stats.Mean(dist),
			DemandStdKW:      stats.StdDev(dist),
			DemandP50KW:      stats.Percentile(dist, 0.50),
			DemandP95KW:      stats.Percentile(dist, 0.95),
			RiskTolerance:    req.RiskTolerance,
			CandidatesTested: len(evals),
		},
	}

	if req.CurrentContractKW > 0 {
		currentAnnual := c.model.CostDistribution(float64(req.CurrentContractKW), dist).ExpectedCost * 12
		savings := currentAnnual - optimal.ExpectedAnnualCost
		result.ExpectedSavings = &savings
		if currentAnnual > 0 {
			pct := savings / currentAnnual * 100
			result.SavingsPercent = &pct
		}
	}

	return result, nil
}

// ClassifyUrgency maps the savings situation to an action tag. A missing
// current commitment is always urgent: the consumer is billed on an
// uncontracted basis. Large negative savings mean the current contract is
// undercommitted and bleeding penalty charges.
func ClassifyUrgency(result *OptimizationResult, th UrgencyThresholds) string {
	if result.CurrentKW == 0 {
		return "high"
	}
	if result.ExpectedSavings == nil {
		return "none"
	}
	savings := *result.ExpectedSavings
	switch {
	case savings > th.High:
		return "high"
	case savings > th.Medium:
		return "medium"
	case savings > th.Low:
		return "low"
	case savings < -th.High:
		return "high"
	default:
		return "none"
	}
}

// confidenceLevel grades the forecast purely on sample volume. The
// distribution's quality is the forecaster's concern, not ours.
func confidenceLevel(samples int) float64 {
	switch {
	case samples >= 1000:
		return 0.95
	case samples >= 500:
		return 0.90
	case samples >= 100:
		return 0.80
	case samples >= 30:
		return 0.70
	default:
		return 0.50
	}
}
