package commands

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"peakplan/internal/config"
	"peakplan/internal/logging"
	"peakplan/internal/mcp"
)

var (
	// Version, Commit, and BuildDate are set at build time via ldflags.
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"

	verbose bool
	cfg     *config.AppConfig
)

var rootCmd = &cobra.Command{
	Use:   "peakplan",
	Short: "peakplan is a contract power optimization MCP server",
	Long: `An MCP server that recommends the optimal contract power (kW) for an
electricity consumer with uncertain peak demand: Monte-Carlo cost evaluation
over a forecast distribution, a tunable overage/waste risk dial, and an
auditable per-candidate decision trail.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init(verbose)

		var err error
		cfg, err = config.Load()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load configuration")
		}

		log.Info().
			Str("version", Version).
			Str("commit", Commit).
			Str("buildDate", BuildDate).
			Float64("basicRate", cfg.Tariff.BasicRatePerKW).
			Msg("peakplan starting")
	},
	Run: func(cmd *cobra.Command, args []string) {
		log.Info().Msg("MCP Server starting Stdio loop")
		server := mcp.NewServer(cfg)
		if err := server.Serve(); err != nil {
			log.Fatal().Err(err).Msg("Stdio loop terminated")
		}
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}
