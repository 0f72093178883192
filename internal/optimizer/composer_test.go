package optimizer

import (
	"context"
	"errors"
	"math"
	"testing"

	"peakplan/internal/tariff"
)

func newTestComposer() *Composer {
	return NewComposer(tariff.NewModel(tariff.DefaultRates()))
}

func TestOptimize_InvalidInput(t *testing.T) {
	c := newTestComposer()
	ctx := context.Background()

	tests := []struct {
		name string
		req  Request
	}{
		{"EmptyDistribution", Request{RiskTolerance: 0.1}},
		{"NaNSample", Request{DemandDistribution: []float64{100, math.NaN()}, RiskTolerance: 0.1}},
		{"InfSample", Request{DemandDistribution: []float64{100, math.Inf(1)}, RiskTolerance: 0.1}},
		{"NegativeSample", Request{DemandDistribution: []float64{100, -5}, RiskTolerance: 0.1}},
		{"BadBounds", Request{DemandDistribution: []float64{100}, MinContractKW: 200, MaxContractKW: 100, RiskTolerance: 0.1}},
		{"BadStep", Request{DemandDistribution: []float64{100}, StepKW: -10, RiskTolerance: 0.1}},
		{"BadTolerance", Request{DemandDistribution: []float64{100}, RiskTolerance: 1.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := c.Optimize(ctx, tt.req)
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("error = %v, want ErrInvalidInput", err)
			}
			if res != nil {
				t.Errorf("a failed request must not return a partial result")
			}
		})
	}
}

func TestOptimize_BasicRecommendation(t *testing.T) {
	c := newTestComposer()
	dist := normalSamples(1000, 110, 15, 42)

	res, err := c.Optimize(context.Background(), Request{
		DemandDistribution: dist,
		RiskTolerance:      0.1,
	})
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}

	if res.OptimalKW%10 != 0 {
		t.Errorf("optimal %dkW is not a step multiple", res.OptimalKW)
	}
	if res.OptimalKW < 10 || res.OptimalKW > 200 {
		t.Errorf("optimal %dkW outside default bounds", res.OptimalKW)
	}
	if res.ExpectedAnnualCost <= 0 {
		t.Errorf("ExpectedAnnualCost = %v, want > 0", res.ExpectedAnnualCost)
	}
	if res.ConfidenceLevel != 0.95 {
		t.Errorf("ConfidenceLevel = %v, want 0.95 for 1000 samples", res.ConfidenceLevel)
	}
	if res.ExpectedSavings != nil || res.SavingsPercent != nil {
		t.Errorf("savings must be absent without a current commitment")
	}
	if res.Factors.SampleCount != 1000 {
		t.Errorf("SampleCount = %d, want 1000", res.Factors.SampleCount)
	}
	if res.Factors.CandidatesTested != len(res.Evaluations) {
		t.Errorf("CandidatesTested = %d, want %d", res.Factors.CandidatesTested, len(res.Evaluations))
	}
	if math.Abs(res.Factors.DemandMeanKW-110) > 3 {
		t.Errorf("DemandMeanKW = %v, expected near 110", res.Factors.DemandMeanKW)
	}

	// The optimal evaluation must be one of the listed evaluations
	found := false
	for _, ev := range res.Evaluations {
		if ev.CandidateKW == res.OptimalKW {
			found = true
		}
	}
	if !found {
		t.Errorf("optimal %dkW not among evaluations", res.OptimalKW)
	}

	// The dial defaults conservative: risk of crossing the commitment stays moderate
	if res.OveragePct > 50 {
		t.Errorf("OveragePct = %v, too risky for tolerance 0.1", res.OveragePct)
	}
}

func TestOptimize_SavingsSignConsistency(t *testing.T) {
	c := newTestComposer()
	dist := normalSamples(1000, 110, 15, 42)

	// A grossly oversized current contract should yield positive savings
	res, err := c.Optimize(context.Background(), Request{
		DemandDistribution: dist,
		CurrentContractKW:  190,
		RiskTolerance:      0.1,
	})
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}
	if res.ExpectedSavings == nil {
		t.Fatal("expected savings with a current commitment")
	}

	currentAnnual := c.Model().CostDistribution(190, dist).ExpectedCost * 12
	if *res.ExpectedSavings > 0 && res.ExpectedAnnualCost >= currentAnnual {
		t.Errorf("positive savings (%v) but optimal cost %v >= current cost %v",
			*res.ExpectedSavings, res.ExpectedAnnualCost, currentAnnual)
	}
	if math.Abs(*res.ExpectedSavings-(currentAnnual-res.ExpectedAnnualCost)) > 1e-6 {
		t.Errorf("savings %v != current %v - optimal %v", *res.ExpectedSavings, currentAnnual, res.ExpectedAnnualCost)
	}
	if res.SavingsPercent == nil {
		t.Fatal("expected savings percent")
	}
	wantPct := *res.ExpectedSavings / currentAnnual * 100
	if math.Abs(*res.SavingsPercent-wantPct) > 1e-6 {
		t.Errorf("SavingsPercent = %v, want %v", *res.SavingsPercent, wantPct)
	}
}

func TestOptimize_RiskToleranceTradeoff(t *testing.T) {
	c := newTestComposer()
	dist := normalSamples(1000, 110, 15, 42)

	conservative, err := c.Optimize(context.Background(), Request{DemandDistribution: dist, RiskTolerance: 0})
	if err != nil {
		t.Fatalf("Optimize(rt=0): %v", err)
	}
	aggressive, err := c.Optimize(context.Background(), Request{DemandDistribution: dist, RiskTolerance: 1})
	if err != nil {
		t.Fatalf("Optimize(rt=1): %v", err)
	}

	// The aggressive pick may trade cost against overage risk, but must never
	// be simultaneously costlier AND riskier than the conservative pick.
	costlier := aggressive.ExpectedAnnualCost > conservative.ExpectedAnnualCost
	riskier := aggressive.OveragePct > conservative.OveragePct
	if costlier && riskier {
		t.Errorf("rt=1 pick (%dkW, cost %v, overage %v%%) is both costlier and riskier than rt=0 pick (%dkW, cost %v, overage %v%%)",
			aggressive.OptimalKW, aggressive.ExpectedAnnualCost, aggressive.OveragePct,
			conservative.OptimalKW, conservative.ExpectedAnnualCost, conservative.OveragePct)
	}

	// Dial direction: tolerance 1 must not commit to more capacity than tolerance 0
	if aggressive.OptimalKW > conservative.OptimalKW {
		t.Errorf("aggressive pick %dkW above conservative pick %dkW", aggressive.OptimalKW, conservative.OptimalKW)
	}
}

func TestOptimize_DemandAboveBounds(t *testing.T) {
	// Demand pinned far above maxKW: every candidate overruns, so the best
	// recommendation is the largest allowed capacity. The candidate window
	// must reach maxKW instead of snapping back to the lower bound.
	c := newTestComposer()
	dist := make([]float64, 1000)
	for i := range dist {
		dist[i] = 250
	}

	res, err := c.Optimize(context.Background(), Request{
		DemandDistribution: dist,
		RiskTolerance:      0.1,
	})
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}

	if res.OptimalKW != 200 {
		t.Fatalf("OptimalKW = %d, want 200 (the upper bound)", res.OptimalKW)
	}
	// 200*8320*12 basic + 50*8320*1.5*12 overage
	if math.Abs(res.ExpectedAnnualCost-27_456_000) > 1e-6 {
		t.Errorf("ExpectedAnnualCost = %v, want 27456000", res.ExpectedAnnualCost)
	}

	// No evaluated candidate may beat the pick on both cost and overage risk
	optimal := res.Optimal
	for _, ev := range res.Evaluations {
		if ev.ExpectedAnnualCost < optimal.ExpectedAnnualCost && ev.OveragePct < optimal.OveragePct {
			t.Errorf("candidate %dkW dominates the %dkW pick", ev.CandidateKW, optimal.CandidateKW)
		}
	}
}

func TestOptimize_Deterministic(t *testing.T) {
	c := newTestComposer()
	dist := normalSamples(800, 95, 20, 13)
	req := Request{DemandDistribution: dist, CurrentContractKW: 120, RiskTolerance: 0.25}

	a, err := c.Optimize(context.Background(), req)
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}
	b, err := c.Optimize(context.Background(), req)
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}

	if a.OptimalKW != b.OptimalKW || a.ExpectedAnnualCost != b.ExpectedAnnualCost || *a.ExpectedSavings != *b.ExpectedSavings {
		t.Errorf("identical inputs produced different results:\n%+v\n%+v", a, b)
	}
}

func TestClassifyUrgency(t *testing.T) {
	th := DefaultUrgencyThresholds()
	savings := func(v float64) *OptimizationResult {
		return &OptimizationResult{CurrentKW: 100, ExpectedSavings: &v}
	}

	tests := []struct {
		name string
		res  *OptimizationResult
		want string
	}{
		{"NoCurrentContract", &OptimizationResult{CurrentKW: 0}, "high"},
		{"HugeSavings", savings(1_500_000), "high"},
		{"MediumSavings", savings(700_000), "medium"},
		{"LowSavings", savings(200_000), "low"},
		{"Negligible", savings(50_000), "none"},
		{"SlightlyNegative", savings(-200_000), "none"},
		{"HeavilyUndercommitted", savings(-1_500_000), "high"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyUrgency(tt.res, th); got != tt.want {
				t.Errorf("ClassifyUrgency = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSimulateShortfall(t *testing.T) {
	// Distribution: 4 samples above 100, 6 at or below
	dist := []float64{120, 110, 105, 101, 100, 95, 90, 85, 80, 75}

	sim := SimulateShortfall(100, dist, nil)
	if sim.OvershootPct != 40 {
		t.Errorf("OvershootPct = %v, want 40", sim.OvershootPct)
	}
	wantMean := (20.0 + 10 + 5 + 1) / 4
	if math.Abs(sim.MeanOvershootKW-wantMean) > 1e-9 {
		t.Errorf("MeanOvershootKW = %v, want %v", sim.MeanOvershootKW, wantMean)
	}
	if sim.P90OvershootKW != 20 {
		t.Errorf("P90OvershootKW = %v, want 20", sim.P90OvershootKW)
	}
	if sim.Projection != nil {
		t.Errorf("no history given, projection must be absent")
	}
}

func TestSimulateShortfall_Projection(t *testing.T) {
	dist := []float64{120, 110, 90, 80}
	history := []HistoricalPeak{
		{Date: "2026-07-01", PeakKW: 130}, // far above: full risk factor
		{Date: "2026-07-02", PeakKW: 100}, // at capacity: zero risk factor
		{Date: "2026-07-03", PeakKW: 110}, // margin = max(100*0.2, 5) = 20 -> factor 0.5
	}

	sim := SimulateShortfall(100, dist, history)
	if len(sim.Projection) != 3 {
		t.Fatalf("projection length = %d, want 3", len(sim.Projection))
	}

	if sim.Projection[0].RiskFactor != 1 {
		t.Errorf("day 1 risk factor = %v, want 1 (clamped)", sim.Projection[0].RiskFactor)
	}
	if sim.Projection[1].RiskFactor != 0 {
		t.Errorf("day 2 risk factor = %v, want 0", sim.Projection[1].RiskFactor)
	}
	if math.Abs(sim.Projection[2].RiskFactor-0.5) > 1e-9 {
		t.Errorf("day 3 risk factor = %v, want 0.5", sim.Projection[2].RiskFactor)
	}

	// Simulated peak rides the P90 overshoot (20kW) scaled by the factor
	if math.Abs(sim.Projection[2].SimulatedPeakKW-110) > 1e-9 {
		t.Errorf("day 3 simulated peak = %v, want 110", sim.Projection[2].SimulatedPeakKW)
	}
	if sim.Projection[1].SimulatedPeakKW != 100 {
		t.Errorf("day 2 simulated peak = %v, want capacity itself", sim.Projection[1].SimulatedPeakKW)
	}
}
