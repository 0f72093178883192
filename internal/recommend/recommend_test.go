package recommend

import (
	"context"
	"strings"
	"testing"

	"peakplan/internal/optimizer"
	"peakplan/internal/tariff"
)

func optimize(t *testing.T, req optimizer.Request) *optimizer.OptimizationResult {
	t.Helper()
	c := optimizer.NewComposer(tariff.NewModel(tariff.DefaultRates()))
	res, err := c.Optimize(context.Background(), req)
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}
	return res
}

func flatDistribution(n int, kw float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = kw
	}
	return out
}

func TestBuild_Reasoning(t *testing.T) {
	req := optimizer.Request{
		DemandDistribution: flatDistribution(1000, 105),
		CurrentContractKW:  180,
		RiskTolerance:      0.1,
	}
	res := optimize(t, req)

	rec := Build(res, req, optimizer.DefaultUrgencyThresholds())

	if len(rec.Reasoning) < 4 {
		t.Fatalf("expected at least 4 rationale statements, got %d", len(rec.Reasoning))
	}
	if !strings.Contains(rec.Reasoning[0], "1000 demand samples") {
		t.Errorf("first statement should cite the sample size: %q", rec.Reasoning[0])
	}
	if !strings.Contains(rec.RationaleText, rec.Reasoning[0]) {
		t.Errorf("rationale text should include every statement")
	}
	if rec.CostComparison == nil {
		t.Fatal("expected a cost comparison with a current contract")
	}
	if rec.CostComparison.CurrentKW != 180 || rec.CostComparison.RecommendedKW != res.OptimalKW {
		t.Errorf("comparison sides wrong: %+v", rec.CostComparison)
	}
	if rec.CostComparison.Summary == "" {
		t.Errorf("comparison summary must not be empty")
	}
}

func TestBuild_CandidateTable(t *testing.T) {
	req := optimizer.Request{
		DemandDistribution: flatDistribution(200, 105),
		RiskTolerance:      0.1,
	}
	res := optimize(t, req)

	rec := Build(res, req, optimizer.DefaultUrgencyThresholds())

	if len(rec.CandidateTable) != len(res.Evaluations) {
		t.Fatalf("table rows = %d, want %d", len(rec.CandidateTable), len(res.Evaluations))
	}
	selected := 0
	for _, row := range rec.CandidateTable {
		if row.Selected {
			selected++
			if row.CandidateKW != res.OptimalKW {
				t.Errorf("selected row %dkW != optimal %dkW", row.CandidateKW, res.OptimalKW)
			}
		}
	}
	if selected != 1 {
		t.Errorf("exactly one row must be selected, got %d", selected)
	}
}

func TestBuild_ShortfallSeriesOnlyWithAuxData(t *testing.T) {
	base := optimizer.Request{
		DemandDistribution: flatDistribution(200, 105),
		RiskTolerance:      0.1,
	}
	res := optimize(t, base)

	plain := Build(res, base, optimizer.DefaultUrgencyThresholds())
	if plain.ShortfallSeries != nil {
		t.Errorf("shortfall series must be absent without auxiliary series")
	}

	withHistory := base
	withHistory.HistoricalPeaks = []optimizer.HistoricalPeak{{Date: "2026-08-01", PeakKW: 108}}
	enriched := Build(res, withHistory, optimizer.DefaultUrgencyThresholds())
	if len(enriched.ShortfallSeries) != len(res.Evaluations) {
		t.Errorf("shortfall series = %d entries, want one per candidate (%d)",
			len(enriched.ShortfallSeries), len(res.Evaluations))
	}
	for _, s := range enriched.ShortfallSeries {
		if len(s.Projection) != 1 {
			t.Errorf("candidate %dkW projection = %d points, want 1", s.CandidateKW, len(s.Projection))
		}
	}
}

func TestBuild_UrgencyWithoutContract(t *testing.T) {
	req := optimizer.Request{
		DemandDistribution: flatDistribution(50, 105),
		RiskTolerance:      0.1,
	}
	res := optimize(t, req)

	rec := Build(res, req, optimizer.DefaultUrgencyThresholds())
	if rec.Urgency != "high" {
		t.Errorf("urgency = %q, want high with no current contract", rec.Urgency)
	}
}

func TestOverageRiskTag(t *testing.T) {
	tests := []struct {
		pct  float64
		want string
	}{
		{0, "low"}, {4.9, "low"}, {5, "moderate"}, {14.9, "moderate"}, {15, "high"}, {60, "high"},
	}
	for _, tt := range tests {
		if got := overageRiskTag(tt.pct); got != tt.want {
			t.Errorf("overageRiskTag(%v) = %q, want %q", tt.pct, got, tt.want)
		}
	}
}

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{832000, "832,000"},
		{1081600, "1,081,600"},
		{-249600, "-249,600"},
	}
	for _, tt := range tests {
		if got := FormatCurrency(tt.in); got != tt.want {
			t.Errorf("FormatCurrency(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
