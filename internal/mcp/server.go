// Package mcp exposes the optimization engine as an MCP server speaking
// JSON-RPC over stdio. This layer owns everything the engine refuses to:
// request parsing, legacy input adaptation, result caching and logging.
package mcp

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"peakplan/internal/config"
	"peakplan/internal/optimizer"
	"peakplan/internal/resultcache"
	"peakplan/internal/tariff"
)

// JSONRPCRequest represents a standard MCP/JSON-RPC request.
type JSONRPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// JSONRPCResponse represents a standard MCP/JSON-RPC response.
type JSONRPCResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   interface{} `json:"error,omitempty"`
}

// Server holds the state for the MCP server.
type Server struct {
	cfg      *config.AppConfig
	composer *optimizer.Composer
	cache    *resultcache.Cache
}

// NewServer creates a new MCP server around the configured tariff.
func NewServer(cfg *config.AppConfig) *Server {
	return &Server{
		cfg:      cfg,
		composer: optimizer.NewComposer(tariff.NewModel(cfg.Tariff)),
		cache:    resultcache.New(cfg.CacheTTL),
	}
}

// Serve starts the JSON-RPC loop over Stdio.
func (s *Server) Serve() error {
	reader := bufio.NewReader(os.Stdin)
	for {
		line, err := reader.ReadBytes('\n')
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}

		var req JSONRPCRequest
		if err := json.Unmarshal(line, &req); err != nil {
			log.Error().Err(err).Msg("Failed to unmarshal request")
			continue
		}

		s.handleRequest(req)
	}
}

func (s *Server) handleRequest(req JSONRPCRequest) {
	var result interface{}
	var errRes interface{}

	switch req.Method {
	case "initialize":
		result = map[string]interface{}{
			"protocolVersion": "2024-11-05",
			"capabilities":    map[string]interface{}{},
			"serverInfo": map[string]interface{}{
				"name":    "peakplan",
				"version": "0.1.0",
			},
		}
	case "tools/list":
		result = s.listTools()
	case "tools/call":
		result, errRes = s.callTool(req.Params)
	default:
		errRes = map[string]interface{}{
			"code":    -32601,
			"message": fmt.Sprintf("Method %s not found", req.Method),
		}
	}

	resp := JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result:  result,
		Error:   errRes,
	}

	out, _ := json.Marshal(resp)
	fmt.Fprintf(os.Stdout, "%s\n", out)
}

func (s *Server) callTool(params json.RawMessage) (interface{}, interface{}) {
	var call struct {
		Name      string                 `json:"name"`
		Arguments map[string]interface{} `json:"arguments"`
	}
	if err := json.Unmarshal(params, &call); err != nil {
		return nil, map[string]interface{}{"code": -32602, "message": "Invalid params"}
	}

	requestID := uuid.NewString()
	start := time.Now()

	if err := validateToolArgs(call.Name, call.Arguments); err != nil {
		log.Warn().Str("requestId", requestID).Str("tool", call.Name).Err(err).Msg("Rejected tool arguments")
		return nil, map[string]interface{}{"code": -32602, "message": err.Error()}
	}

	var data interface{}
	var err error

	switch call.Name {
	case "optimize_contract":
		data, err = s.handleOptimize(call.Arguments, false)
	case "recommend_contract":
		data, err = s.handleOptimize(call.Arguments, true)
	case "compare_contract_costs":
		data, err = s.handleCompare(call.Arguments)
	case "simulate_cost_distribution":
		data, err = s.handleSimulateCostDistribution(call.Arguments)
	default:
		return nil, map[string]interface{}{"code": -32601, "message": "Tool not found"}
	}

	if err != nil {
		log.Warn().Str("requestId", requestID).Str("tool", call.Name).Err(err).Msg("Tool call failed")
		return nil, map[string]interface{}{"code": -32000, "message": err.Error()}
	}

	log.Info().
		Str("requestId", requestID).
		Str("tool", call.Name).
		Dur("duration", time.Since(start)).
		Msg("Tool call completed")

	return map[string]interface{}{
		"content": []interface{}{
			map[string]interface{}{
				"type": "text",
				"text": s.formatResult(data),
			},
		},
	}, nil
}

func (s *Server) formatResult(data interface{}) string {
	out, _ := json.MarshalIndent(data, "", "  ")
	return string(out)
}
