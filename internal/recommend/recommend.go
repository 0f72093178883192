// Package recommend turns a numeric OptimizationResult into a
// presentation-ready Recommendation: rationale sentences, an urgency tag,
// cost comparison and the candidate sweep table. The optimizer stays purely
// numeric; every human-readable string originates here.
package recommend

import (
	"fmt"

	"peakplan/internal/optimizer"
)

// CandidateRow is one line of the candidate sweep table.
type CandidateRow struct {
	CandidateKW        int     `json:"candidate_kw"`
	ExpectedAnnualCost float64 `json:"expected_annual_cost"`
	OveragePct         float64 `json:"overage_probability"`
	WastePct           float64 `json:"waste_probability"`
	RiskScore          float64 `json:"risk_score"`
	Selected           bool    `json:"selected"`
}

// CostComparison summarizes current vs. recommended commitment.
type CostComparison struct {
	CurrentKW             int     `json:"current_kw"`
	RecommendedKW         int     `json:"recommended_kw"`
	CurrentAnnualCost     float64 `json:"current_annual_cost"`
	RecommendedAnnualCost float64 `json:"recommended_annual_cost"`
	AnnualSavings         float64 `json:"annual_savings"`
	SavingsPercent        float64 `json:"savings_percent"`
	Summary               string  `json:"summary"`
}

// Recommendation is the OptimizationResult plus everything a caller needs
// to present the decision without recomputing anything.
type Recommendation struct {
	Result          *optimizer.OptimizationResult   `json:"result"`
	Urgency         string                          `json:"urgency"`
	Reasoning       []string                        `json:"reasoning"`
	RationaleText   string                          `json:"rationale_text"`
	CostComparison  *CostComparison                 `json:"cost_comparison,omitempty"`
	CandidateTable  []CandidateRow                  `json:"candidate_table"`
	ShortfallSeries []optimizer.ShortfallSimulation `json:"shortfall_series,omitempty"`
}

// Build assembles the Recommendation. It derives everything from the result
// and the original request; it never re-runs the optimization.
func Build(res *optimizer.OptimizationResult, req optimizer.Request, thresholds optimizer.UrgencyThresholds) *Recommendation {
	rec := &Recommendation{
		Result:    res,
		Urgency:   optimizer.ClassifyUrgency(res, thresholds),
		Reasoning: buildReasoning(res),
	}
	rec.RationaleText = joinSentences(rec.Reasoning)

	rec.CandidateTable = make([]CandidateRow, 0, len(res.Evaluations))
	for _, ev := range res.Evaluations {
		rec.CandidateTable = append(rec.CandidateTable, CandidateRow{
			CandidateKW:        ev.CandidateKW,
			ExpectedAnnualCost: ev.ExpectedAnnualCost,
			OveragePct:         ev.OveragePct,
			WastePct:           ev.WastePct,
			RiskScore:          ev.RiskScore,
			Selected:           ev.CandidateKW == res.OptimalKW,
		})
	}

	if res.CurrentKW > 0 && res.ExpectedSavings != nil {
		currentAnnual := res.ExpectedAnnualCost + *res.ExpectedSavings
		pct := 0.0
		if res.SavingsPercent != nil {
			pct = *res.SavingsPercent
		}
		rec.CostComparison = &CostComparison{
			CurrentKW:             res.CurrentKW,
			RecommendedKW:         res.OptimalKW,
			CurrentAnnualCost:     currentAnnual,
			RecommendedAnnualCost: res.ExpectedAnnualCost,
			AnnualSavings:         *res.ExpectedSavings,
			SavingsPercent:        pct,
			Summary:               comparisonSummary(res.CurrentKW, res.OptimalKW, *res.ExpectedSavings),
		}
	}

	// Shortfall series is an enrichment: only assembled when the caller
	// supplied auxiliary series to project against.
	if len(req.HistoricalPeaks) > 0 || len(req.SessionSeries) > 0 {
		rec.ShortfallSeries = make([]optimizer.ShortfallSimulation, 0, len(res.Evaluations))
		for _, ev := range res.Evaluations {
			rec.ShortfallSeries = append(rec.ShortfallSeries,
				optimizer.SimulateShortfall(ev.CandidateKW, req.DemandDistribution, req.HistoricalPeaks))
		}
	}

	return rec
}

func buildReasoning(res *optimizer.OptimizationResult) []string {
	f := res.Factors
	statements := []string{
		fmt.Sprintf("Forecast basis: %d demand samples (confidence level %.0f%%).",
			f.SampleCount, res.ConfidenceLevel*100),
		fmt.Sprintf("Predicted peak demand averages %.1f kW with a spread of %.1f kW (P95 %.1f kW).",
			f.DemandMeanKW, f.DemandStdKW, f.DemandP95KW),
		fmt.Sprintf("A %d kW contract minimizes the combined cost and risk objective at an expected %s per year across %d candidates.",
			res.OptimalKW, FormatCurrency(res.ExpectedAnnualCost), f.CandidatesTested),
		fmt.Sprintf("Overage risk at this commitment is %s (%.1f%% of sampled months exceed it).",
			overageRiskTag(res.OveragePct), res.OveragePct),
	}

	if res.ExpectedSavings != nil {
		s := *res.ExpectedSavings
		switch {
		case s > 0:
			statements = append(statements, fmt.Sprintf("Switching from the current %d kW contract saves an expected %s per year.",
				res.CurrentKW, FormatCurrency(s)))
		case s < 0:
			statements = append(statements, fmt.Sprintf("The current %d kW contract already beats the recommended candidate by %s per year; no change is advised.",
				res.CurrentKW, FormatCurrency(-s)))
		default:
			statements = append(statements, fmt.Sprintf("The current %d kW contract is already optimal.", res.CurrentKW))
		}
	}

	return statements
}

// overageRiskTag buckets overage probability for the rationale.
func overageRiskTag(overagePct float64) string {
	switch {
	case overagePct < 5:
		return "low"
	case overagePct < 15:
		return "moderate"
	default:
		return "high"
	}
}

func comparisonSummary(currentKW, recommendedKW int, savings float64) string {
	switch {
	case recommendedKW < currentKW && savings > 0:
		return fmt.Sprintf("Reduce the contract from %d kW to %d kW to save %s per year.",
			currentKW, recommendedKW, FormatCurrency(savings))
	case recommendedKW > currentKW && savings > 0:
		return fmt.Sprintf("Raise the contract from %d kW to %d kW; avoiding overage penalties saves %s per year.",
			currentKW, recommendedKW, FormatCurrency(savings))
	case recommendedKW == currentKW:
		return fmt.Sprintf("Keep the current %d kW contract.", currentKW)
	default:
		return fmt.Sprintf("Keep the current %d kW contract; switching to %d kW would cost %s more per year.",
			currentKW, recommendedKW, FormatCurrency(-savings))
	}
}

func joinSentences(statements []string) string {
	out := ""
	for i, s := range statements {
		if i > 0 {
			out += " "
		}
		out += s
	}
	return out
}

// FormatCurrency renders an amount with thousands separators, e.g.
// "1,081,600". Fractions are dropped; tariff amounts are whole units.
func FormatCurrency(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	s := fmt.Sprintf("%.0f", v)

	n := len(s)
	if n > 3 {
		grouped := make([]byte, 0, n+n/3)
		for i, c := range []byte(s) {
			if i > 0 && (n-i)%3 == 0 {
				grouped = append(grouped, ',')
			}
			grouped = append(grouped, c)
		}
		s = string(grouped)
	}
	if neg {
		return "-" + s
	}
	return s
}
