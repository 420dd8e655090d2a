package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/spektr-org/launchboard/dataset"
	"github.com/spektr-org/launchboard/engine"
	"github.com/spektr-org/launchboard/schema"
)

// Config holds the full application configuration.
type Config struct {
	Dataset DatasetConfig `yaml:"dataset" mapstructure:"dataset"`
	Slider  SliderConfig  `yaml:"slider" mapstructure:"slider"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// DatasetConfig locates the launch table and its column schema.
type DatasetConfig struct {
	Source      string   `yaml:"source" mapstructure:"source"` // csv, xlsx, sqlite, postgres
	Path        string   `yaml:"path" mapstructure:"path"`
	Sheet       string   `yaml:"sheet" mapstructure:"sheet"`
	Table       string   `yaml:"table" mapstructure:"table"`
	DatabaseURL string   `yaml:"database_url" mapstructure:"database_url"`
	SchemaFile  string   `yaml:"schema_file" mapstructure:"schema_file"`
	BoosterCol  string   `yaml:"booster_column" mapstructure:"booster_column"`
	Sites       []string `yaml:"sites" mapstructure:"sites"`
}

// SliderConfig is the payload slider's display domain in kg.
type SliderConfig struct {
	Min  float64 `yaml:"min" mapstructure:"min"`
	Max  float64 `yaml:"max" mapstructure:"max"`
	Step float64 `yaml:"step" mapstructure:"step"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port              int      `yaml:"port" mapstructure:"port"`
	SessionTTLMinutes int      `yaml:"session_ttl_minutes" mapstructure:"session_ttl_minutes"`
	MaxSessions       int      `yaml:"max_sessions" mapstructure:"max_sessions"`
	SignalRate        float64  `yaml:"signal_rate" mapstructure:"signal_rate"` // signal updates per second per session
	SignalBurst       int      `yaml:"signal_burst" mapstructure:"signal_burst"`
	CORSOrigins       []string `yaml:"cors_origins" mapstructure:"cors_origins"`
	ShutdownTimeout   int      `yaml:"shutdown_timeout_secs" mapstructure:"shutdown_timeout_secs"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"` // json or console
}

// Load reads configuration from launchboard.yaml (optional) and
// LAUNCHBOARD_* environment variables.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("launchboard")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LAUNCHBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("dataset.source", "csv")
	v.SetDefault("dataset.path", "spacex_launch_dash.csv")
	v.SetDefault("dataset.sheet", "")
	v.SetDefault("dataset.table", "launches")
	v.SetDefault("dataset.database_url", "")
	v.SetDefault("dataset.schema_file", "")
	v.SetDefault("dataset.booster_column", "")
	v.SetDefault("dataset.sites", []string{})
	v.SetDefault("slider.min", engine.DefaultSlider.Min)
	v.SetDefault("slider.max", engine.DefaultSlider.Max)
	v.SetDefault("slider.step", engine.DefaultSlider.Step)
	v.SetDefault("server.port", 8050)
	v.SetDefault("server.session_ttl_minutes", 30)
	v.SetDefault("server.max_sessions", 1000)
	v.SetDefault("server.signal_rate", 20)
	v.SetDefault("server.signal_burst", 40)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.shutdown_timeout_secs", 10)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// Validate checks values Load cannot type-check.
func (c *Config) Validate() error {
	switch dataset.Kind(strings.ToLower(c.Dataset.Source)) {
	case dataset.KindCSV, dataset.KindXLSX, dataset.KindSQLite:
		if c.Dataset.Path == "" {
			return eris.Errorf("config: dataset.path is required for source %q", c.Dataset.Source)
		}
	case dataset.KindPostgres:
		if c.Dataset.DatabaseURL == "" {
			return eris.New("config: dataset.database_url is required for source \"postgres\"")
		}
	default:
		return eris.Errorf("config: unknown dataset.source %q", c.Dataset.Source)
	}
	if c.Slider.Max < c.Slider.Min {
		return eris.Errorf("config: slider.max (%v) is below slider.min (%v)", c.Slider.Max, c.Slider.Min)
	}
	if c.Slider.Min < 0 || c.Slider.Step < 0 {
		return eris.New("config: slider.min and slider.step must not be negative")
	}
	if n := c.Slider.Engine().StepCount(); n > engine.MaxSliderMarks {
		return eris.Errorf("config: slider.step %v gives %.0f marks, at most %d allowed", c.Slider.Step, n, engine.MaxSliderMarks)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return eris.Errorf("config: server.port %d out of range", c.Server.Port)
	}
	if c.Server.SignalRate <= 0 || c.Server.SignalBurst <= 0 {
		return eris.New("config: server.signal_rate and server.signal_burst must be positive")
	}
	return nil
}

// Spec converts the dataset section for dataset.Open.
func (d DatasetConfig) Spec() dataset.Spec {
	return dataset.Spec{
		Kind:        dataset.Kind(strings.ToLower(d.Source)),
		Path:        d.Path,
		Sheet:       d.Sheet,
		Table:       d.Table,
		DatabaseURL: d.DatabaseURL,
	}
}

// Schema returns the column schema: schema_file when set, otherwise the
// built-in one. booster_column and sites override the file.
func (d DatasetConfig) Schema() (schema.Config, error) {
	sch := schema.Default()
	if d.SchemaFile != "" {
		loaded, err := schema.LoadFile(d.SchemaFile)
		if err != nil {
			return schema.Config{}, eris.Wrapf(err, "config: load schema %s", d.SchemaFile)
		}
		sch = loaded
	}
	if d.BoosterCol != "" {
		sch = sch.WithBoosterColumn(d.BoosterCol)
	}
	if len(d.Sites) > 0 {
		sch.Sites = append([]string(nil), d.Sites...)
	}
	return sch, nil
}

// Engine converts the slider section for engine.BuildLayout.
func (s SliderConfig) Engine() engine.SliderConfig {
	return engine.SliderConfig{Min: s.Min, Max: s.Max, Step: s.Step}
}

// SessionTTL is the idle time after which a session expires.
func (s ServerConfig) SessionTTL() time.Duration {
	return time.Duration(s.SessionTTLMinutes) * time.Minute
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
