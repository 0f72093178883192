package optimizer

import "fmt"

// SelectOptimal minimizes the combined cost+risk objective. Each candidate's
// expected annual cost is normalized by the cheapest candidate (cheapest
// maps to 1.0) so the cost and risk terms share a scale. Ties break toward
// the lowest kW.
func SelectOptimal(evals []CandidateEvaluation) (CandidateEvaluation, error) {
	if len(evals) == 0 {
		return CandidateEvaluation{}, fmt.Errorf("%w: evaluation stage produced zero candidates", ErrNoViableCandidates)
	}

	minCost := evals[0].ExpectedAnnualCost
	for _, ev := range evals[1:] {
		if ev.ExpectedAnnualCost < minCost {
			minCost = ev.ExpectedAnnualCost
		}
	}

	best := evals[0]
	bestScore := combinedScore(evals[0], minCost)
	for _, ev := range evals[1:] {
		score := combinedScore(ev, minCost)
		if score < bestScore || (score == bestScore && ev.CandidateKW < best.CandidateKW) {
			best = ev
			bestScore = score
		}
	}
	return best, nil
}

func combinedScore(ev CandidateEvaluation, minCost float64) float64 {
	normalized := 1.0
	if minCost > 0 {
		normalized = ev.ExpectedAnnualCost / minCost
	}
	return normalized + ev.RiskScore
}
