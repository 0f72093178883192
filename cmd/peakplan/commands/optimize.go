package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"peakplan/internal/optimizer"
	"peakplan/internal/recommend"
	"peakplan/internal/schema"
	"peakplan/internal/tariff"
)

var (
	optimizeInputPath string
	optimizeNarrate   bool
)

// optimizeInput is the on-disk request shape accepted by the one-shot command.
// Session series and historical peaks are kept raw so the boundary adapter can
// absorb legacy field names.
type optimizeInput struct {
	DemandDistribution []float64       `json:"demand_distribution"`
	CurrentContractKW  int             `json:"current_contract_kw"`
	MinContractKW      int             `json:"min_contract_kw"`
	MaxContractKW      int             `json:"max_contract_kw"`
	StepKW             int             `json:"step_kw"`
	RiskTolerance      *float64        `json:"risk_tolerance"`
	SessionSeries      json.RawMessage `json:"session_series"`
	HistoricalPeaks    json.RawMessage `json:"historical_peaks"`
}

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Run a one-shot contract power optimization from a JSON request file",
	Long: `Reads an optimization request from a JSON file (or stdin with --input -),
runs the full candidate evaluation, and prints the result as JSON. With
--recommend the output additionally carries the human-readable rationale,
urgency tag, and per-candidate decision table.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var data []byte
		var err error
		if optimizeInputPath == "-" {
			data, err = io.ReadAll(os.Stdin)
		} else {
			data, err = os.ReadFile(optimizeInputPath)
		}
		if err != nil {
			return fmt.Errorf("reading request: %w", err)
		}

		var in optimizeInput
		if err := json.Unmarshal(data, &in); err != nil {
			return fmt.Errorf("parsing request: %w", err)
		}

		req := optimizer.Request{
			DemandDistribution: in.DemandDistribution,
			CurrentContractKW:  in.CurrentContractKW,
			MinContractKW:      in.MinContractKW,
			MaxContractKW:      in.MaxContractKW,
			StepKW:             in.StepKW,
			RiskTolerance:      cfg.RiskTolerance,
			SessionSeries:      schema.ParseSessionSeries(in.SessionSeries),
			HistoricalPeaks:    schema.ParseHistoricalPeaks(in.HistoricalPeaks),
		}
		if in.RiskTolerance != nil {
			req.RiskTolerance = *in.RiskTolerance
		}
		if req.MinContractKW == 0 {
			req.MinContractKW = cfg.MinContractKW
		}
		if req.MaxContractKW == 0 {
			req.MaxContractKW = cfg.MaxContractKW
		}
		if req.StepKW == 0 {
			req.StepKW = cfg.StepKW
		}

		composer := optimizer.NewComposer(tariff.NewModel(cfg.Tariff))
		result, err := composer.Optimize(context.Background(), req)
		if err != nil {
			return fmt.Errorf("optimization failed: %w", err)
		}

		log.Info().
			Int("optimalKW", result.OptimalKW).
			Int("candidates", len(result.Evaluations)).
			Msg("Optimization complete")

		var out any = result
		if optimizeNarrate {
			out = recommend.Build(result, req, cfg.Urgency)
		}

		encoded, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding result: %w", err)
		}
		fmt.Println(string(encoded))
		return nil
	},
}

func init() {
	optimizeCmd.Flags().StringVarP(&optimizeInputPath, "input", "i", "-", "path to JSON request file ('-' for stdin)")
	optimizeCmd.Flags().BoolVar(&optimizeNarrate, "recommend", false, "include narrative recommendation in the output")
	rootCmd.AddCommand(optimizeCmd)
}
