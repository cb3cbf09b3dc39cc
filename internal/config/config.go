// Package config provides pipeline configuration with support for environment
// variables, .env files, and a single optional input-path argument.
package config

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/listenupapp/bookclusters/internal/errors"
	"github.com/listenupapp/bookclusters/internal/validation"
)

// Config holds the pipeline configuration.
type Config struct {
	App        AppConfig
	Logger     LoggerConfig
	Catalog    CatalogConfig
	Features   FeaturesConfig
	Cluster    ClusterConfig
	Validation ValidationConfig
	Recommend  RecommendConfig
	Report     ReportConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string `env:"ENV" validate:"oneof=development staging production"`
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string `env:"LOG_LEVEL" validate:"oneof=debug info warn error"`
}

// CatalogConfig holds the location of the book metadata file.
type CatalogConfig struct {
	Path string `env:"CATALOG_PATH" validate:"required"`
}

// FeaturesConfig controls text vectorization and dimensionality reduction.
type FeaturesConfig struct {
	MaxFeatures int `env:"TFIDF_MAX_FEATURES" validate:"gte=1"` // vocabulary cap per text column (default: 100)
	Components  int `env:"PCA_COMPONENTS" validate:"gte=1"`     // PCA target before rank clipping (default: 50)
}

// ClusterConfig controls k-means.
type ClusterConfig struct {
	Count         int     `env:"CLUSTER_COUNT" validate:"gte=1"`          // k (default: 5)
	MaxIterations int     `env:"CLUSTER_MAX_ITERATIONS" validate:"gte=1"` // per restart (default: 300)
	Tolerance     float64 `env:"CLUSTER_TOLERANCE" validate:"gte=0"`      // centroid shift to stop at (default: 1e-4)
	InitRuns      int     `env:"CLUSTER_INIT_RUNS" validate:"gte=1"`      // k-means++ restarts (default: 10)
	Seed          int64   `env:"RANDOM_SEED"`                             // shared by clustering and fold shuffling (default: 42)
}

// ValidationConfig controls cross-validation.
type ValidationConfig struct {
	Folds int `env:"CV_FOLDS" validate:"gte=2"` // default: 5
}

// RecommendConfig controls the recommendation stage.
type RecommendConfig struct {
	Count int `env:"RECOMMENDATION_COUNT" validate:"gte=1"` // default: 5
}

// ReportConfig controls console output.
type ReportConfig struct {
	ProfileTopGenres int `env:"PROFILE_TOP_GENRES" validate:"gte=1"` // default: 3
	ChartTopGenres   int `env:"CHART_TOP_GENRES" validate:"gte=1"`   // default: 10
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. The input path given as `-input` or as the single positional argument.
// 2. Environment variables.
// 3. .env file (path from ENV_FILE, default ".env").
// 4. Default values.
func LoadConfig(args []string) (*Config, error) {
	fs := flag.NewFlagSet("bookclusters", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	input := fs.String("input", "", "Path to the book metadata JSON file")

	if err := fs.Parse(args); err != nil {
		return nil, errors.Wrap(err, errors.CodeValidation, "parse arguments")
	}
	if fs.NArg() > 1 {
		return nil, errors.Validationf("expected at most one input path, got %d arguments", fs.NArg())
	}
	inputPath := *input
	if inputPath == "" {
		inputPath = fs.Arg(0)
	}

	// Missing .env files are fine; a malformed one is not.
	envFile := getConfigValue("", "ENV_FILE", ".env")
	if err := loadEnvFile(envFile); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, errors.CodeValidation, "load env file")
	}

	d := Default()
	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue("", "ENV", d.App.Environment),
		},
		Logger: LoggerConfig{
			Level: strings.ToLower(getConfigValue("", "LOG_LEVEL", d.Logger.Level)),
		},
		Catalog: CatalogConfig{
			Path: getConfigValue(inputPath, "CATALOG_PATH", d.Catalog.Path),
		},
		Features: FeaturesConfig{
			MaxFeatures: getIntConfigValue("", "TFIDF_MAX_FEATURES", d.Features.MaxFeatures),
			Components:  getIntConfigValue("", "PCA_COMPONENTS", d.Features.Components),
		},
		Cluster: ClusterConfig{
			Count:         getIntConfigValue("", "CLUSTER_COUNT", d.Cluster.Count),
			MaxIterations: getIntConfigValue("", "CLUSTER_MAX_ITERATIONS", d.Cluster.MaxIterations),
			Tolerance:     getFloatConfigValue("", "CLUSTER_TOLERANCE", d.Cluster.Tolerance),
			InitRuns:      getIntConfigValue("", "CLUSTER_INIT_RUNS", d.Cluster.InitRuns),
			Seed:          int64(getIntConfigValue("", "RANDOM_SEED", int(d.Cluster.Seed))),
		},
		Validation: ValidationConfig{
			Folds: getIntConfigValue("", "CV_FOLDS", d.Validation.Folds),
		},
		Recommend: RecommendConfig{
			Count: getIntConfigValue("", "RECOMMENDATION_COUNT", d.Recommend.Count),
		},
		Report: ReportConfig{
			ProfileTopGenres: getIntConfigValue("", "PROFILE_TOP_GENRES", d.Report.ProfileTopGenres),
			ChartTopGenres:   getIntConfigValue("", "CHART_TOP_GENRES", d.Report.ChartTopGenres),
		},
	}

	expanded, err := expandPath(cfg.Catalog.Path)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog path: %w", err)
	}
	cfg.Catalog.Path = expanded

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Default returns the values LoadConfig falls back to when nothing is overridden.
func Default() *Config {
	return &Config{
		App:        AppConfig{Environment: "development"},
		Logger:     LoggerConfig{Level: "info"},
		Catalog:    CatalogConfig{Path: filepath.Join("data", "bookMeta.json")},
		Features:   FeaturesConfig{MaxFeatures: 100, Components: 50},
		Cluster:    ClusterConfig{Count: 5, MaxIterations: 300, Tolerance: 1e-4, InitRuns: 10, Seed: 42},
		Validation: ValidationConfig{Folds: 5},
		Recommend:  RecommendConfig{Count: 5},
		Report:     ReportConfig{ProfileTopGenres: 3, ChartTopGenres: 10},
	}
}

// Validate checks that all config values are present and in range.
func (c *Config) Validate() error {
	return validation.New().Validate(c)
}

// expandPath expands ~ and makes the path absolute.
func expandPath(path string) (string, error) {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getIntConfigValue returns an int from flag, env var, or default.
// Unparseable values fall back to the default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	result, err := strconv.Atoi(strings.TrimSpace(strValue))
	if err != nil {
		return defaultValue
	}
	return result
}

// getFloatConfigValue returns a float from flag, env var, or default.
// Unparseable values fall back to the default.
func getFloatConfigValue(flagValue, envKey string, defaultValue float64) float64 {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	result, err := strconv.ParseFloat(strings.TrimSpace(strValue), 64)
	if err != nil {
		return defaultValue
	}
	return result
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)

		// Real environment variables win over the file.
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
