package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/credohq/credo/internal/runtime"
	"github.com/joho/godotenv"
)

// Load reads the .env file specified by CREDO_ENV (or .env by default),
// then loads the corresponding .secret file if it exists.
// All config is flat env vars read via os.Getenv after loading.
func Load() error {
	envFile := os.Getenv("CREDO_ENV")
	if envFile == "" {
		envFile = ".env"
	}

	// Load main env file (ignore error if file doesn't exist)
	_ = godotenv.Load(envFile)

	// Load secret sidecar if it exists
	_ = godotenv.Load(envFile + ".secret")

	return nil
}

func ServerPort() int {
	port, err := strconv.Atoi(os.Getenv("SERVER_PORT"))
	if err != nil {
		return 8080
	}
	return port
}

func ServerAddr() string {
	return fmt.Sprintf(":%d", ServerPort())
}

// APIKey returns the optional static key for authenticated routes.
// Empty disables auth.
func APIKey() string {
	return os.Getenv("CREDO_API_KEY")
}

// RateLimitRPS returns requests per second limit.
// Defaults to 100 if not set.
func RateLimitRPS() float64 {
	rps, err := strconv.ParseFloat(os.Getenv("RATE_LIMIT_RPS"), 64)
	if err != nil || rps <= 0 {
		return 100
	}
	return rps
}

// RateLimitBurst returns the burst size for rate limiting.
// Defaults to 20 if not set.
func RateLimitBurst() int {
	burst, err := strconv.Atoi(os.Getenv("RATE_LIMIT_BURST"))
	if err != nil || burst <= 0 {
		return 20
	}
	return burst
}

// LogLevel returns the log level (debug, info, warn, error).
// Defaults to "info" if not set.
func LogLevel() string {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		return "info"
	}
	return level
}

// Flags assembles the substrate feature flags from env. Every flag
// defaults to on; set the var to "false" to turn a subsystem off.
func Flags() runtime.Flags {
	flags := runtime.DefaultFlags()
	flags.Enabled = boolFlag("CREDO_ENABLED", true)
	flags.AssertionGraph = boolFlag("CREDO_ASSERTION_GRAPH", true)
	flags.BeliefEngine = boolFlag("CREDO_BELIEF_ENGINE", true)
	flags.ContradictionDetection = boolFlag("CREDO_CONTRADICTION_DETECTION", true)
	flags.HumanGovernance = boolFlag("CREDO_HUMAN_GOVERNANCE", true)
	flags.EconomicSignals = boolFlag("CREDO_ECONOMIC_SIGNALS", true)
	flags.PatternDetection = boolFlag("CREDO_PATTERN_DETECTION", true)
	flags.EnforcementMode = enforcementMode()
	flags.TelemetrySamplingRate = samplingRate()
	return flags
}

func boolFlag(name string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(name))
	if err != nil {
		return fallback
	}
	return v
}

// enforcementMode is informational only; the substrate never enforces.
func enforcementMode() runtime.EnforcementMode {
	switch runtime.EnforcementMode(os.Getenv("CREDO_ENFORCEMENT_MODE")) {
	case runtime.EnforceWarn:
		return runtime.EnforceWarn
	case runtime.EnforceBlock:
		return runtime.EnforceBlock
	default:
		return runtime.EnforceObserve
	}
}

// samplingRate returns the telemetry sampling rate in [0,1].
// Defaults to 1.0 (keep everything).
func samplingRate() float64 {
	rate, err := strconv.ParseFloat(os.Getenv("CREDO_TELEMETRY_SAMPLING_RATE"), 64)
	if err != nil || rate < 0 || rate > 1 {
		return 1.0
	}
	return rate
}
