package optimizer

// AnalyzeSessionRisk classifies every point of the session prediction series
// against one candidate capacity: points above are overshoots, points below
// are waste. Returns nil for an empty series; the enrichment is optional and
// its absence is not an error.
func AnalyzeSessionRisk(candidateKW int, series []SessionPoint) *SessionRisk {
	if len(series) == 0 {
		return nil
	}

	capacity := float64(candidateKW)
	risk := &SessionRisk{SampleSize: len(series)}

	overshoots := 0
	wastes := 0
	var overshootSum, wasteSum float64

	for _, pt := range series {
		switch {
		case pt.PredictedKW > capacity:
			overshoots++
			amount := pt.PredictedKW - capacity
			overshootSum += amount
			if amount > risk.MaxOvershootKW {
				risk.MaxOvershootKW = amount
			}
		case pt.PredictedKW < capacity:
			wastes++
			wasteSum += capacity - pt.PredictedKW
		}
	}

	n := float64(len(series))
	risk.OveragePct = float64(overshoots) / n * 100
	risk.WastePct = float64(wastes) / n * 100
	if overshoots > 0 {
		risk.AvgOvershootKW = overshootSum / float64(overshoots)
	}
	if wastes > 0 {
		risk.AvgWasteKW = wasteSum / float64(wastes)
	}
	return risk
}
