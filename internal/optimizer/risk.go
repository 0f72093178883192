package optimizer

// Risk weighting constants. Overage carries double weight: crossing a
// commitment triggers penalty billing, idle capacity only wastes budget.
const (
	overageWeightFactor    = 2.0
	wasteWeightFactor      = 1.0
	volatilityWeightFactor = 0.5
	volatilityScale        = 1_000_000
)

// RiskScore folds a candidate's risk signals into one scalar (lower is
// better). riskTolerance=0 penalizes overage hardest (conservative, higher
// capacity); riskTolerance=1 penalizes waste hardest (aggressive, lower
// capacity).
func RiskScore(overagePct, wastePct, costStd, riskTolerance float64) float64 {
	overageRisk := overagePct / 100
	wasteRisk := wastePct / 100
	volatility := costStd / volatilityScale

	overageWeight := 1 - riskTolerance
	wasteWeight := riskTolerance

	return overageRisk*overageWeight*overageWeightFactor +
		wasteRisk*wasteWeight*wasteWeightFactor +
		volatility*volatilityWeightFactor
}
