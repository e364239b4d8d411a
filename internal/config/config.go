// Package config loads the baseline run configuration from an optional YAML
// file with NB_* environment-variable overrides.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Store drivers.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite3"
)

// Config is the top-level configuration of a run.
type Config struct {
	Corpus     CorpusConfig     `yaml:"corpus"`
	Vectorizer VectorizerConfig `yaml:"vectorizer"`
	Classifier ClassifierConfig `yaml:"classifier"`
	Store      StoreConfig      `yaml:"store"`
	Logging    LoggingConfig    `yaml:"logging"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Workers    int              `yaml:"workers"`
}

// CorpusConfig holds the train and test corpus file paths.
type CorpusConfig struct {
	Train string `yaml:"train"`
	Test  string `yaml:"test"`
}

// VectorizerConfig controls vocabulary building.
type VectorizerConfig struct {
	MinDF int `yaml:"minDF"`
}

// ClassifierConfig controls the naive Bayes estimator.
type ClassifierConfig struct {
	Smoothing float64 `yaml:"smoothing"`
}

// StoreConfig selects where fit counts are aggregated.
type StoreConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls where run metrics are written. An empty Textfile
// disables the export.
type MetricsConfig struct {
	Textfile string `yaml:"textfile"`
}

// Load reads a YAML config file (if provided) and applies environment-variable
// overrides on top of the defaults.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Corpus: CorpusConfig{
			Train: "20newsgroup_train.txt",
			Test:  "20newsgroup_test.txt",
		},
		Vectorizer: VectorizerConfig{
			MinDF: 1,
		},
		Classifier: ClassifierConfig{
			Smoothing: 1.0,
		},
		Store: StoreConfig{
			Driver: DriverMemory,
			DSN:    ":memory:",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.Corpus.Train == "" || c.Corpus.Test == "":
		return errors.New("config: corpus.train and corpus.test are required")
	case c.Vectorizer.MinDF < 1:
		return fmt.Errorf("config: vectorizer.minDF must be at least 1, got %d", c.Vectorizer.MinDF)
	case c.Classifier.Smoothing < 0 || math.IsNaN(c.Classifier.Smoothing) || math.IsInf(c.Classifier.Smoothing, 0):
		return fmt.Errorf("config: classifier.smoothing must be finite and not negative, got %g", c.Classifier.Smoothing)
	case c.Store.Driver != DriverMemory && c.Store.Driver != DriverSQLite:
		return fmt.Errorf("config: unknown store.driver %q", c.Store.Driver)
	case c.Workers < 0:
		return fmt.Errorf("config: workers must not be negative, got %d", c.Workers)
	}
	return nil
}

// applyEnvOverrides reads NB_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("NB_CORPUS_TRAIN"); v != "" {
		cfg.Corpus.Train = v
	}
	if v := os.Getenv("NB_CORPUS_TEST"); v != "" {
		cfg.Corpus.Test = v
	}
	if v := os.Getenv("NB_VECTORIZER_MIN_DF"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: NB_VECTORIZER_MIN_DF: %w", err)
		}
		cfg.Vectorizer.MinDF = n
	}
	if v := os.Getenv("NB_CLASSIFIER_SMOOTHING"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("config: NB_CLASSIFIER_SMOOTHING: %w", err)
		}
		cfg.Classifier.Smoothing = f
	}
	if v := os.Getenv("NB_STORE_DRIVER"); v != "" {
		cfg.Store.Driver = v
	}
	if v := os.Getenv("NB_STORE_DSN"); v != "" {
		cfg.Store.DSN = v
	}
	if v := os.Getenv("NB_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("NB_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("NB_METRICS_TEXTFILE"); v != "" {
		cfg.Metrics.Textfile = v
	}
	if v := os.Getenv("NB_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: NB_WORKERS: %w", err)
		}
		cfg.Workers = n
	}
	return nil
}
