package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"peakplan/internal/optimizer"
	"peakplan/internal/tariff"
)

// AppConfig holds the complete application configuration.
type AppConfig struct {
	Tariff        tariff.Rates
	MinContractKW int
	MaxContractKW int
	StepKW        int
	RiskTolerance float64
	Urgency       optimizer.UrgencyThresholds
	CacheTTL      time.Duration
	DataPath      string
	LogDir        string
}

// Load loads the configuration from .env files and environment variables.
func Load() (*AppConfig, error) {
	// 1. Try to load from the executable's directory (highest priority for MCP servers)
	exePath, err := os.Executable()
	exeDir := ""
	if err == nil {
		exeDir = filepath.Dir(exePath)
		envPath := filepath.Join(exeDir, ".env")
		if err := godotenv.Load(envPath); err == nil {
			log.Debug().Str("path", envPath).Msg("Loaded configuration from binary directory")
		}
	}

	// 2. Fallback to current working directory (useful for development/go run)
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found in working directory, relying on environment variables or binary-relative .env")
	}

	// 3. Resolve data paths
	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		if exeDir != "" {
			dataPath = exeDir
		} else {
			dataPath = "."
		}
	}

	logDir := filepath.Join(dataPath, "logs")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		log.Warn().Err(err).Str("path", logDir).Msg("Failed to create log directory")
	}

	cacheTTLSecs := getEnvInt("PEAKPLAN_CACHE_TTL_SECONDS", 900)

	cfg := &AppConfig{
		Tariff: tariff.Rates{
			BasicRatePerKW:    getEnvFloat("PEAKPLAN_BASIC_RATE", 8320),
			OverageMultiplier: getEnvFloat("PEAKPLAN_OVERAGE_MULTIPLIER", 1.5),
		},
		MinContractKW: getEnvInt("PEAKPLAN_MIN_CONTRACT_KW", optimizer.DefaultMinContractKW),
		MaxContractKW: getEnvInt("PEAKPLAN_MAX_CONTRACT_KW", optimizer.DefaultMaxContractKW),
		StepKW:        getEnvInt("PEAKPLAN_STEP_KW", optimizer.DefaultStepKW),
		RiskTolerance: getEnvFloat("PEAKPLAN_RISK_TOLERANCE", optimizer.DefaultRiskTolerance),
		Urgency: optimizer.UrgencyThresholds{
			High:   getEnvFloat("PEAKPLAN_URGENCY_HIGH", 1_000_000),
			Medium: getEnvFloat("PEAKPLAN_URGENCY_MEDIUM", 500_000),
			Low:    getEnvFloat("PEAKPLAN_URGENCY_LOW", 100_000),
		},
		CacheTTL: time.Duration(cacheTTLSecs) * time.Second,
		DataPath: dataPath,
		LogDir:   logDir,
	}

	return cfg, nil
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return fallback
}
