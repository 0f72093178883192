package optimizer

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"peakplan/internal/tariff"
)

// Estimator runs the Monte-Carlo cost evaluation for every candidate in a
// range. Candidates are independent, so they are fanned out across workers;
// the output is re-ordered by kW and identical to a sequential run.
type Estimator struct {
	model *tariff.Model
}

func NewEstimator(model *tariff.Model) *Estimator {
	return &Estimator{model: model}
}

// Evaluate computes one CandidateEvaluation per candidate from lo to hi by
// stepKW, ordered by ascending kW. No internal randomness: identical inputs
// yield identical output. Cancellation is all-or-nothing; a cancelled
// context returns an error and no partial results.
func (e *Estimator) Evaluate(ctx context.Context, lo, hi, stepKW int, distribution []float64, riskTolerance float64, sessionSeries []SessionPoint) ([]CandidateEvaluation, error) {
	candidates := Candidates(lo, hi, stepKW)
	evals := make([]CandidateEvaluation, len(candidates))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for i, kw := range candidates {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			evals[i] = e.evaluateCandidate(kw, distribution, riskTolerance, sessionSeries)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return evals, nil
}

func (e *Estimator) evaluateCandidate(candidateKW int, distribution []float64, riskTolerance float64, sessionSeries []SessionPoint) CandidateEvaluation {
	cs := e.model.CostDistribution(float64(candidateKW), distribution)

	return CandidateEvaluation{
		CandidateKW:        candidateKW,
		ExpectedAnnualCost: cs.ExpectedCost * 12,
		CostStd:            cs.CostStd,
		Percentiles:        cs.Percentiles,
		OveragePct:         cs.OveragePct,
		WastePct:           cs.WastePct,
		RiskScore:          RiskScore(cs.OveragePct, cs.WastePct, cs.CostStd, riskTolerance),
		SessionRisk:        AnalyzeSessionRisk(candidateKW, sessionSeries),
	}
}
