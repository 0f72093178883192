package engine

import (
	"encoding/json"
	"math"
	"math/rand"
	"os"
	"time"
)

type GeneratorConfig struct {
	Scenario          string // "stable", "spiky" or "growing"
	BaseKW            float64
	Count             int
	CurrentContractKW int
	Days              int
	Seed              int64
	Now               time.Time
}

// Request mirrors the JSON shape the optimize tool and the one-shot
// command accept.
type Request struct {
	DemandDistribution []float64        `json:"demand_distribution"`
	CurrentContractKW  int              `json:"current_contract_kw,omitempty"`
	SessionSeries      []SessionPoint   `json:"session_series,omitempty"`
	HistoricalPeaks    []HistoricalPeak `json:"historical_peaks,omitempty"`
}

type SessionPoint struct {
	Timestamp   string  `json:"timestamp"`
	PredictedKW float64 `json:"predicted_kw"`
}

type HistoricalPeak struct {
	Date   string  `json:"date"`
	PeakKW float64 `json:"peak_kw"`
}

func Generate(cfg GeneratorConfig) Request {
	if cfg.Now.IsZero() {
		cfg.Now = time.Now()
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = cfg.Now.UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	samples := make([]float64, cfg.Count)
	for i := range samples {
		samples[i] = sampleDemand(cfg, rng, float64(i)/float64(cfg.Count))
	}

	req := Request{
		DemandDistribution: samples,
		CurrentContractKW:  cfg.CurrentContractKW,
	}

	if cfg.Days > 0 {
		req.HistoricalPeaks = make([]HistoricalPeak, 0, cfg.Days)
		firstDay := cfg.Now.AddDate(0, 0, -cfg.Days)
		for d := 0; d < cfg.Days; d++ {
			day := firstDay.AddDate(0, 0, d)
			peak := sampleDemand(cfg, rng, float64(d)/float64(cfg.Days))
			req.HistoricalPeaks = append(req.HistoricalPeaks, HistoricalPeak{
				Date:   day.Format("2006-01-02"),
				PeakKW: round1(peak),
			})
		}

		// One predicted hourly point per day, on top of a daily sine swing.
		req.SessionSeries = make([]SessionPoint, 0, cfg.Days)
		for h := 0; h < cfg.Days; h++ {
			ts := firstDay.Add(time.Duration(h) * time.Hour)
			swing := 0.15 * cfg.BaseKW * math.Sin(2*math.Pi*float64(h%24)/24)
			predicted := sampleDemand(cfg, rng, float64(h)/float64(cfg.Days)) + swing
			req.SessionSeries = append(req.SessionSeries, SessionPoint{
				Timestamp:   ts.Format(time.RFC3339),
				PredictedKW: round1(math.Max(predicted, 0)),
			})
		}
	}

	return req
}

// sampleDemand draws one peak-demand sample. progress runs 0..1 across the
// generated horizon and only matters for the growing scenario.
func sampleDemand(cfg GeneratorConfig, rng *rand.Rand, progress float64) float64 {
	mean := cfg.BaseKW
	sigma := 0.08 * cfg.BaseKW

	switch cfg.Scenario {
	case "spiky":
		sigma = 0.15 * cfg.BaseKW
	case "growing":
		mean = cfg.BaseKW * (1 + 0.3*progress)
	}

	v := mean + sigma*rng.NormFloat64()
	if cfg.Scenario == "spiky" && rng.Float64() < 0.05 {
		v += cfg.BaseKW * (0.3 + 0.4*rng.Float64())
	}
	return math.Max(v, 0)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func Save(outPath string, req Request) error {
	var f *os.File
	if outPath == "-" {
		f = os.Stdout
	} else {
		var err error
		f, err = os.Create(outPath)
		if err != nil {
			return err
		}
		defer f.Close()
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(req)
}
