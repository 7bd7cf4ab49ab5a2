// Package config resolves settings from three layers: a YAML config file,
// IMSG_* environment variables, and CLI flags, in rising precedence. String
// settings carry provenance so "config show" can say where a value came from.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type ValueSource string

const (
	SourceUnknown ValueSource = "unknown"
	SourceConfig  ValueSource = "config"
	SourceEnv     ValueSource = "env"
	SourceCLI     ValueSource = "cli"
	SourceDefault ValueSource = "default"
)

// ResolvedValue is a string setting with its origin.
type ResolvedValue struct {
	Value  string      `json:"value"`
	Source ValueSource `json:"source"`
	From   string      `json:"from,omitempty"`
}

// ResolveOptions carries the CLI-layer overrides.
type ResolveOptions struct {
	ConfigPath           string
	CLIDBPath            string
	CLISentimentEndpoint string
	CLISentimentModel    string
}

// Tuning holds the numeric analysis knobs with their defaults applied.
type Tuning struct {
	ResponseWindow    time.Duration `json:"response_window"`
	DoubleTextWindow  time.Duration `json:"double_text_window"`
	ThreadGap         time.Duration `json:"thread_gap"`
	JokeMinRepeats    int           `json:"inside_joke_min_repeats"`
	TopicMinRepeats   int           `json:"topic_min_repeats"`
	IQRMultiplier     float64       `json:"big_day_iqr_multiplier"`
	ArgumentThreshold float64       `json:"argument_score_threshold"`
}

// DefaultTuning returns the built-in analysis knobs.
func DefaultTuning() Tuning {
	return Tuning{
		ResponseWindow:    168 * time.Hour,
		DoubleTextWindow:  5 * time.Minute,
		ThreadGap:         30 * time.Minute,
		JokeMinRepeats:    3,
		TopicMinRepeats:   5,
		IQRMultiplier:     1.5,
		ArgumentThreshold: 0.5,
	}
}

// ResolvedConfig is the final layered configuration.
type ResolvedConfig struct {
	ConfigPath string `json:"config_path"`

	DBPath ResolvedValue `json:"db_path"`

	SentimentEndpoint ResolvedValue `json:"sentiment_endpoint"`
	SentimentModel    ResolvedValue `json:"sentiment_model"`
	SentimentAPIKey   ResolvedValue `json:"sentiment_api_key"`

	Tuning Tuning `json:"tuning"`
}

type fileConfig struct {
	DBPath    string `yaml:"db_path"`
	Sentiment struct {
		Endpoint string `yaml:"endpoint"`
		Model    string `yaml:"model"`
		APIKey   string `yaml:"api_key"`
	} `yaml:"sentiment"`
	Analysis struct {
		ResponseWindowHours    string `yaml:"response_window_hours"`
		DoubleTextWindowMins   string `yaml:"double_text_window_minutes"`
		ThreadGapMins          string `yaml:"thread_gap_minutes"`
		InsideJokeMinRepeats   string `yaml:"inside_joke_min_repeats"`
		TopicMinRepeats        string `yaml:"topic_min_repeats"`
		BigDayIQRMultiplier    string `yaml:"big_day_iqr_multiplier"`
		ArgumentScoreThreshold string `yaml:"argument_score_threshold"`
	} `yaml:"analysis"`
}

// DefaultConfigPath is ~/.imsg/config.yaml.
func DefaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".imsg", "config.yaml")
}

// ResolveConfig layers file, environment, and CLI settings.
func ResolveConfig(opts ResolveOptions) (ResolvedConfig, error) {
	path := strings.TrimSpace(opts.ConfigPath)
	if path == "" {
		path = DefaultConfigPath()
	}

	out := ResolvedConfig{
		ConfigPath: path,
		Tuning:     DefaultTuning(),
	}

	cfg, err := loadConfig(path)
	if err != nil {
		return out, err
	}

	if cfg != nil {
		apply(&out.DBPath, cfg.DBPath, SourceConfig, path)
		apply(&out.SentimentEndpoint, cfg.Sentiment.Endpoint, SourceConfig, path)
		apply(&out.SentimentModel, cfg.Sentiment.Model, SourceConfig, path)
		apply(&out.SentimentAPIKey, cfg.Sentiment.APIKey, SourceConfig, path)

		if err := applyTuning(&out.Tuning, cfg, path); err != nil {
			return out, err
		}
	}

	applyEnv(&out.DBPath, "IMSG_DB")
	applyEnv(&out.DBPath, "IMSG_DB_PATH")
	applyEnv(&out.SentimentEndpoint, "IMSG_SENTIMENT_ENDPOINT")
	applyEnv(&out.SentimentModel, "IMSG_SENTIMENT_MODEL")
	applyEnv(&out.SentimentAPIKey, "IMSG_SENTIMENT_API_KEY")

	if err := applyTuningEnv(&out.Tuning); err != nil {
		return out, err
	}

	apply(&out.DBPath, opts.CLIDBPath, SourceCLI, "--db")
	apply(&out.SentimentEndpoint, opts.CLISentimentEndpoint, SourceCLI, "--sentiment-endpoint")
	apply(&out.SentimentModel, opts.CLISentimentModel, SourceCLI, "--sentiment-model")

	if out.DBPath.Value != "" {
		out.DBPath.Value = expandUserPath(out.DBPath.Value)
	}

	return out, nil
}

func applyTuning(t *Tuning, cfg *fileConfig, path string) error {
	fields := []struct {
		raw string
		key string
		set func(float64)
	}{
		{cfg.Analysis.ResponseWindowHours, "response_window_hours",
			func(v float64) { t.ResponseWindow = time.Duration(v * float64(time.Hour)) }},
		{cfg.Analysis.DoubleTextWindowMins, "double_text_window_minutes",
			func(v float64) { t.DoubleTextWindow = time.Duration(v * float64(time.Minute)) }},
		{cfg.Analysis.ThreadGapMins, "thread_gap_minutes",
			func(v float64) { t.ThreadGap = time.Duration(v * float64(time.Minute)) }},
		{cfg.Analysis.InsideJokeMinRepeats, "inside_joke_min_repeats",
			func(v float64) { t.JokeMinRepeats = int(v) }},
		{cfg.Analysis.TopicMinRepeats, "topic_min_repeats",
			func(v float64) { t.TopicMinRepeats = int(v) }},
		{cfg.Analysis.BigDayIQRMultiplier, "big_day_iqr_multiplier",
			func(v float64) { t.IQRMultiplier = v }},
		{cfg.Analysis.ArgumentScoreThreshold, "argument_score_threshold",
			func(v float64) { t.ArgumentThreshold = v }},
	}
	for _, f := range fields {
		raw := strings.TrimSpace(f.raw)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("parsing %s in %s: %w", f.key, path, err)
		}
		if v <= 0 {
			return fmt.Errorf("%s in %s must be positive, got %v", f.key, path, v)
		}
		f.set(v)
	}
	return nil
}

func applyTuningEnv(t *Tuning) error {
	fields := []struct {
		env string
		set func(float64)
	}{
		{"IMSG_RESPONSE_WINDOW_HOURS",
			func(v float64) { t.ResponseWindow = time.Duration(v * float64(time.Hour)) }},
		{"IMSG_DOUBLE_TEXT_WINDOW_MINUTES",
			func(v float64) { t.DoubleTextWindow = time.Duration(v * float64(time.Minute)) }},
		{"IMSG_THREAD_GAP_MINUTES",
			func(v float64) { t.ThreadGap = time.Duration(v * float64(time.Minute)) }},
		{"IMSG_INSIDE_JOKE_MIN_REPEATS",
			func(v float64) { t.JokeMinRepeats = int(v) }},
		{"IMSG_TOPIC_MIN_REPEATS",
			func(v float64) { t.TopicMinRepeats = int(v) }},
		{"IMSG_BIG_DAY_IQR_MULTIPLIER",
			func(v float64) { t.IQRMultiplier = v }},
		{"IMSG_ARGUMENT_SCORE_THRESHOLD",
			func(v float64) { t.ArgumentThreshold = v }},
	}
	for _, f := range fields {
		raw := strings.TrimSpace(os.Getenv(f.env))
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", f.env, err)
		}
		if v <= 0 {
			return fmt.Errorf("%s must be positive, got %v", f.env, v)
		}
		f.set(v)
	}
	return nil
}

func apply(dst *ResolvedValue, raw string, source ValueSource, from string) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return
	}
	*dst = ResolvedValue{Value: v, Source: source, From: from}
}

func applyEnv(dst *ResolvedValue, envKey string) {
	if v := strings.TrimSpace(os.Getenv(envKey)); v != "" {
		*dst = ResolvedValue{Value: v, Source: SourceEnv, From: envKey}
	}
}

func loadConfig(path string) (*fileConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var cfg fileConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &cfg, nil
}

func expandUserPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
