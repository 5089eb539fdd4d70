package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix namespaces every environment variable, e.g. ENERGY_SUMMARY_YEARS.
const EnvPrefix = "ENERGY"

// Config represents the complete application configuration
type Config struct {
	Source    SourceConfig    `yaml:"source" envconfig:"SOURCE"`
	Summary   SummaryConfig   `yaml:"summary" envconfig:"SUMMARY"`
	Storage   StorageConfig   `yaml:"storage" envconfig:"STORAGE"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Publish   PublishConfig   `yaml:"publish" envconfig:"PUBLISH"`
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// SourceConfig selects and configures the row source.
type SourceConfig struct {
	Kind      string        `yaml:"kind" envconfig:"KIND" validate:"required,oneof=owid ember file"`
	URL       string        `yaml:"url" envconfig:"URL" validate:"required,url"`
	Entity    string        `yaml:"entity" envconfig:"ENTITY" validate:"required,max=16"`
	InputFile string        `yaml:"input_file" envconfig:"INPUT_FILE"`
	Timeout   time.Duration `yaml:"timeout" envconfig:"TIMEOUT" validate:"gt=0"`
	Ember     EmberConfig   `yaml:"ember" envconfig:"EMBER"`
}

// EmberConfig configures the Ember yearly generation API source.
type EmberConfig struct {
	BaseURL   string `yaml:"base_url" envconfig:"BASE_URL" validate:"required,url"`
	APIKey    string `yaml:"api_key" envconfig:"API_KEY"`
	StartYear int    `yaml:"start_year" envconfig:"START_YEAR" validate:"gte=1900"`
}

// SummaryConfig controls the summary window and share computation.
type SummaryConfig struct {
	Years     int    `yaml:"years" envconfig:"YEARS" validate:"gte=1"`
	ShareMode string `yaml:"share_mode" envconfig:"SHARE_MODE" validate:"oneof=unified legacy"`
}

// StorageConfig controls where and how the summary blob is written.
type StorageConfig struct {
	Backend  string `yaml:"backend" envconfig:"BACKEND" validate:"oneof=file mysql"`
	File     string `yaml:"file" envconfig:"FILE" validate:"required"`
	Compress bool   `yaml:"compress" envconfig:"COMPRESS"`
	DSN      string `yaml:"dsn" envconfig:"DSN"`
}

// PublishConfig announces each persisted summary on a message bus.
type PublishConfig struct {
	Kind     string        `yaml:"kind" envconfig:"KIND" validate:"oneof=none kafka mqtt"`
	Brokers  []string      `yaml:"brokers" envconfig:"BROKERS"`
	Topic    string        `yaml:"topic" envconfig:"TOPIC"`
	ClientID string        `yaml:"client_id" envconfig:"CLIENT_ID"`
	QoS      int           `yaml:"qos" envconfig:"QOS" validate:"gte=0,lte=2"`
	Timeout  time.Duration `yaml:"timeout" envconfig:"TIMEOUT" validate:"gte=0"`
}

// PathsConfig contains file system paths configuration. Relative paths are
// resolved against BaseDir.
type PathsConfig struct {
	BaseDir    string `yaml:"base_dir" envconfig:"BASE_DIR"`
	DataDir    string `yaml:"data_dir" envconfig:"DATA_DIR" validate:"required"`
	LogsDir    string `yaml:"logs_dir" envconfig:"LOGS_DIR" validate:"required"`
	ExportsDir string `yaml:"exports_dir" envconfig:"EXPORTS_DIR" validate:"required"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int             `yaml:"port" envconfig:"PORT" validate:"gte=1,lte=65535"`
	ReadTimeout     time.Duration   `yaml:"read_timeout" envconfig:"READ_TIMEOUT" validate:"gt=0"`
	WriteTimeout    time.Duration   `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" validate:"gt=0"`
	IdleTimeout     time.Duration   `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration   `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	RateLimit       RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" validate:"gte=0"`
	Burst   int     `yaml:"burst" envconfig:"BURST" validate:"gte=0"`
}

// LoggingConfig contains logging configuration. Output is "console"
// (stderr), "file" or "both"; stdout stays reserved for command output.
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format      string `yaml:"format" envconfig:"FORMAT"`
	Output      string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT"`
}

// TelemetryConfig toggles tracing and metrics.
type TelemetryConfig struct {
	Enabled        bool    `yaml:"enabled" envconfig:"ENABLED"`
	Environment    string  `yaml:"environment" envconfig:"ENVIRONMENT"`
	TraceExporter  string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"oneof=stdout none"`
	MetricExporter string  `yaml:"metric_exporter" envconfig:"METRIC_EXPORTER" validate:"oneof=prometheus none"`
	SampleRatio    float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO" validate:"gte=0,lte=1"`
}

// Load builds the configuration from defaults, then the YAML file (if any),
// then environment variables. An empty configFile searches the usual
// locations.
func Load(configFile string) (*Config, error) {
	cfg := Default()

	if configFile == "" {
		configFile = getConfigFilePath()
	}
	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	// Unprefixed EMBER_API_KEY is accepted as a fallback.
	if cfg.Source.Ember.APIKey == "" {
		cfg.Source.Ember.APIKey = os.Getenv("EMBER_API_KEY")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg; keys absent from the file
// keep their current value.
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate checks struct tags and the cross-field rules the tags cannot
// express.
func (c *Config) Validate() error {
	c.Logging.Level = strings.ToLower(c.Logging.Level)
	// JSON is the only supported log format
	c.Logging.Format = "json"

	if err := validator.New().Struct(c); err != nil {
		return err
	}

	switch c.Source.Kind {
	case SourceFile:
		if c.Source.InputFile == "" {
			return fmt.Errorf("source kind %q requires an input file", SourceFile)
		}
	case SourceEmber:
		if c.Source.Ember.APIKey == "" {
			return fmt.Errorf("source kind %q requires an API key", SourceEmber)
		}
	}

	if c.Storage.Backend == StorageMySQL && c.Storage.DSN == "" {
		return fmt.Errorf("storage backend %q requires a dsn", StorageMySQL)
	}
	if c.Publish.Kind != PublishNone {
		if len(c.Publish.Brokers) == 0 || c.Publish.Topic == "" {
			return fmt.Errorf("publish kind %q requires brokers and a topic", c.Publish.Kind)
		}
	}

	if c.Logging.Output != "console" && c.Logging.FilePath == "" {
		return fmt.Errorf("logging output %q requires a file path", c.Logging.Output)
	}

	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if path := os.Getenv(EnvPrefix + "_CONFIG_FILE"); path != "" {
		return path
	}

	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return ""
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Source: SourceConfig{
			Kind:    SourceOWID,
			URL:     DefaultOWIDURL,
			Entity:  DefaultEntity,
			Timeout: DefaultHTTPTimeout,
			Ember: EmberConfig{
				BaseURL:   DefaultEmberBaseURL,
				StartYear: 2000,
			},
		},
		Summary: SummaryConfig{
			Years:     DefaultWindowYears,
			ShareMode: "unified",
		},
		Storage: StorageConfig{
			Backend: StorageFile,
			File:    DefaultSummaryFile,
		},
		Publish: PublishConfig{
			Kind:    PublishNone,
			Topic:   DefaultPublishTopic,
			QoS:     1,
			Timeout: 10 * time.Second,
		},
		Paths: PathsConfig{
			DataDir:    DefaultDataDir,
			LogsDir:    DefaultLogsDir,
			ExportsDir: DefaultExportsDir,
		},
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     100,
				Burst:   50,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/energy.log",
		},
		Telemetry: TelemetryConfig{
			Enabled:        true,
			Environment:    "development",
			TraceExporter:  "none",
			MetricExporter: "prometheus",
			SampleRatio:    1.0,
		},
	}
}
