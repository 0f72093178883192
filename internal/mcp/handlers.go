package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"peakplan/internal/optimizer"
	"peakplan/internal/recommend"
	"peakplan/internal/resultcache"
	"peakplan/internal/schema"
)

// optimizeArgs is the wire form of an optimization request. Auxiliary series
// stay raw here; the schema package adapts legacy spellings.
type optimizeArgs struct {
	StationID          string          `json:"station_id"`
	DemandDistribution []float64       `json:"demand_distribution"`
	CurrentContractKW  int             `json:"current_contract_kw"`
	MinContractKW      int             `json:"min_contract_kw"`
	MaxContractKW      int             `json:"max_contract_kw"`
	StepKW             int             `json:"step_kw"`
	RiskTolerance      *float64        `json:"risk_tolerance"`
	SessionSeries      json.RawMessage `json:"session_series"`
	HistoricalPeaks    json.RawMessage `json:"historical_peaks"`
}

func decodeArgs[T any](arguments map[string]interface{}) (T, error) {
	var out T
	raw, err := json.Marshal(arguments)
	if err != nil {
		return out, fmt.Errorf("failed to encode arguments: %w", err)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("failed to decode arguments: %w", err)
	}
	return out, nil
}

// buildRequest fills engine defaults from the server configuration. The
// risk tolerance keeps explicit zero apart from absent.
func (s *Server) buildRequest(args optimizeArgs) optimizer.Request {
	req := optimizer.Request{
		DemandDistribution: args.DemandDistribution,
		CurrentContractKW:  args.CurrentContractKW,
		MinContractKW:      args.MinContractKW,
		MaxContractKW:      args.MaxContractKW,
		StepKW:             args.StepKW,
		RiskTolerance:      s.cfg.RiskTolerance,
		SessionSeries:      schema.ParseSessionSeries(args.SessionSeries),
		HistoricalPeaks:    schema.ParseHistoricalPeaks(args.HistoricalPeaks),
	}
	if args.RiskTolerance != nil {
		req.RiskTolerance = *args.RiskTolerance
	}
	if req.MinContractKW == 0 {
		req.MinContractKW = s.cfg.MinContractKW
	}
	if req.MaxContractKW == 0 {
		req.MaxContractKW = s.cfg.MaxContractKW
	}
	if req.StepKW == 0 {
		req.StepKW = s.cfg.StepKW
	}
	return req
}

func (s *Server) handleOptimize(arguments map[string]interface{}, withPresentation bool) (interface{}, error) {
	args, err := decodeArgs[optimizeArgs](arguments)
	if err != nil {
		return nil, err
	}

	cacheKey := ""
	if args.StationID != "" {
		kind := "optimize"
		if withPresentation {
			kind = "recommend"
		}
		cacheKey = resultcache.Key(args.StationID+"/"+kind, arguments)
		if cached, ok := s.cache.Get(cacheKey); ok {
			return cached, nil
		}
	}

	req := s.buildRequest(args)
	result, err := s.composer.Optimize(context.Background(), req)
	if err != nil {
		return nil, err
	}

	var payload interface{} = result
	if withPresentation {
		payload = recommend.Build(result, req, s.cfg.Urgency)
	}

	if cacheKey != "" {
		s.cache.Put(cacheKey, payload)
	}
	return payload, nil
}

func (s *Server) handleCompare(arguments map[string]interface{}) (interface{}, error) {
	args, err := decodeArgs[struct {
		CurrentKW    float64 `json:"current_kw"`
		ProposedKW   float64 `json:"proposed_kw"`
		ActualPeakKW float64 `json:"actual_peak_kw"`
	}](arguments)
	if err != nil {
		return nil, err
	}
	if args.CurrentKW <= 0 || args.ProposedKW <= 0 {
		return nil, fmt.Errorf("current_kw and proposed_kw must be positive")
	}
	return s.composer.Model().Compare(args.CurrentKW, args.ProposedKW, args.ActualPeakKW), nil
}

func (s *Server) handleSimulateCostDistribution(arguments map[string]interface{}) (interface{}, error) {
	args, err := decodeArgs[struct {
		CommittedKW        float64   `json:"committed_kw"`
		DemandDistribution []float64 `json:"demand_distribution"`
	}](arguments)
	if err != nil {
		return nil, err
	}
	if args.CommittedKW <= 0 {
		return nil, fmt.Errorf("committed_kw must be positive")
	}
	if len(args.DemandDistribution) == 0 {
		return nil, fmt.Errorf("demand_distribution is empty")
	}
	return s.composer.Model().CostDistribution(args.CommittedKW, args.DemandDistribution), nil
}
