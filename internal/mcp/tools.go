package mcp

import (
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
)

// toolSchemas declares the input contract of every tool once; the same
// schemas are advertised via tools/list and enforced on tools/call.
var toolSchemas = map[string]*jsonschema.Schema{
	"optimize_contract":          optimizeSchema,
	"recommend_contract":         optimizeSchema,
	"compare_contract_costs":     compareSchema,
	"simulate_cost_distribution": simulateSchema,
}

var optimizeSchema = &jsonschema.Schema{
	Type: "object",
	Properties: map[string]*jsonschema.Schema{
		"station_id": {Type: "string", Description: "Caller identity used for result caching."},
		"demand_distribution": {
			Type:        "array",
			Items:       &jsonschema.Schema{Type: "number"},
			Description: "Monte-Carlo samples of the predicted peak demand in kW. Non-empty, non-negative, finite.",
		},
		"current_contract_kw": {Type: "integer", Description: "Existing contract capacity in kW, omit if none."},
		"min_contract_kw":     {Type: "integer", Description: "Lower bound of the candidate grid (default 10)."},
		"max_contract_kw":     {Type: "integer", Description: "Upper bound of the candidate grid (default 200)."},
		"step_kw":             {Type: "integer", Description: "Candidate discretization step in kW (default 10)."},
		"risk_tolerance": {
			Type:        "number",
			Description: "Dial in [0,1]: 0 avoids overage at any price, 1 trims idle capacity aggressively (default 0.1).",
		},
		"session_series": {
			Type:        "array",
			Items:       &jsonschema.Schema{Type: "object"},
			Description: "Optional finer-grained point predictions: [{timestamp, predicted_kw}]. Legacy field spellings are accepted.",
		},
		"historical_peaks": {
			Type:        "array",
			Items:       &jsonschema.Schema{Type: "object"},
			Description: "Optional observed daily peaks for the shortfall visualization: [{date, peak_kw}].",
		},
	},
	Required: []string{"demand_distribution"},
}

var compareSchema = &jsonschema.Schema{
	Type: "object",
	Properties: map[string]*jsonschema.Schema{
		"current_kw":     {Type: "number", Description: "Current contract capacity in kW."},
		"proposed_kw":    {Type: "number", Description: "Proposed contract capacity in kW."},
		"actual_peak_kw": {Type: "number", Description: "Actual (or assumed) monthly peak in kW."},
	},
	Required: []string{"current_kw", "proposed_kw", "actual_peak_kw"},
}

var simulateSchema = &jsonschema.Schema{
	Type: "object",
	Properties: map[string]*jsonschema.Schema{
		"committed_kw": {Type: "number", Description: "Contract capacity to price against the distribution."},
		"demand_distribution": {
			Type:        "array",
			Items:       &jsonschema.Schema{Type: "number"},
			Description: "Monte-Carlo samples of the predicted peak demand in kW.",
		},
	},
	Required: []string{"committed_kw", "demand_distribution"},
}

// resolvedSchemas caches the compiled validators.
var resolvedSchemas = func() map[string]*jsonschema.Resolved {
	out := make(map[string]*jsonschema.Resolved, len(toolSchemas))
	for name, schema := range toolSchemas {
		resolved, err := schema.Resolve(nil)
		if err != nil {
			panic(fmt.Sprintf("tool schema %s does not resolve: %v", name, err))
		}
		out[name] = resolved
	}
	return out
}()

func validateToolArgs(name string, args map[string]interface{}) error {
	resolved, ok := resolvedSchemas[name]
	if !ok {
		// Unknown tools are rejected by the dispatch switch
		return nil
	}
	if args == nil {
		args = map[string]interface{}{}
	}
	if err := resolved.Validate(args); err != nil {
		return fmt.Errorf("invalid arguments for %s: %w", name, err)
	}
	return nil
}

func (s *Server) listTools() interface{} {
	return map[string]interface{}{
		"tools": []interface{}{
			map[string]interface{}{
				"name": "optimize_contract",
				"description": "Find the contract power (kW) that minimizes expected annual cost for a Monte-Carlo demand distribution while bounding overage risk. " +
					"Returns the numeric optimization result: optimal capacity, expected cost, savings against the current contract, and the full per-candidate evaluation table. " +
					"STRICT GUARDRAIL: DO NOT estimate optimal capacity or probabilities yourself if this tool fails; report the error instead.",
				"inputSchema": optimizeSchema,
			},
			map[string]interface{}{
				"name": "recommend_contract",
				"description": "Run optimize_contract and additionally assemble the presentation layer: rationale sentences, urgency tag, cost comparison, candidate sweep table " +
					"and (given historical_peaks or session_series) a per-candidate shortfall simulation series.",
				"inputSchema": optimizeSchema,
			},
			map[string]interface{}{
				"name":        "compare_contract_costs",
				"description": "Compare the monthly and annual billed cost of two contract capacities against one actual peak demand.",
				"inputSchema": compareSchema,
			},
			map[string]interface{}{
				"name":        "simulate_cost_distribution",
				"description": "Price one fixed contract capacity against every sample of a demand distribution: expected cost, spread, percentiles, overage and waste probabilities.",
				"inputSchema": simulateSchema,
			},
		},
	}
}
