package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spektr-org/launchboard/dataset"
	"github.com/spektr-org/launchboard/engine"
	"github.com/spektr-org/launchboard/schema"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "csv", cfg.Dataset.Source)
	assert.Equal(t, "spacex_launch_dash.csv", cfg.Dataset.Path)
	assert.Equal(t, "launches", cfg.Dataset.Table)
	assert.Empty(t, cfg.Dataset.Sites)
	assert.Equal(t, 0.0, cfg.Slider.Min)
	assert.Equal(t, 10000.0, cfg.Slider.Max)
	assert.Equal(t, 1000.0, cfg.Slider.Step)
	assert.Equal(t, 8050, cfg.Server.Port)
	assert.Equal(t, 30, cfg.Server.SessionTTLMinutes)
	assert.Equal(t, 1000, cfg.Server.MaxSessions)
	assert.InDelta(t, 20, cfg.Server.SignalRate, 0.001)
	assert.Equal(t, 40, cfg.Server.SignalBurst)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
dataset:
  source: xlsx
  path: launches.xlsx
  sheet: Launches
  sites: [CCAFS LC-40, KSC LC-39A]
slider:
  max: 16000
server:
  port: 9090
log:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "launchboard.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "xlsx", cfg.Dataset.Source)
	assert.Equal(t, "Launches", cfg.Dataset.Sheet)
	assert.Equal(t, []string{"CCAFS LC-40", "KSC LC-39A"}, cfg.Dataset.Sites)
	assert.Equal(t, 16000.0, cfg.Slider.Max)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
	// Defaults still apply for unset values
	assert.Equal(t, 1000.0, cfg.Slider.Step)
	assert.Equal(t, 30, cfg.Server.SessionTTLMinutes)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "launchboard.yaml"), []byte("server:\n  port: 9090\n"), 0644))
	t.Setenv("LAUNCHBOARD_SERVER_PORT", "7070")
	t.Setenv("LAUNCHBOARD_DATASET_SOURCE", "sqlite")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Dataset.Source)
}

func TestLoadBadFile(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "launchboard.yaml"), []byte("server: [unclosed"), 0644))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config: read file")
}

func TestValidate(t *testing.T) {
	chdirTemp(t)
	base, err := Load()
	require.NoError(t, err)

	cases := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"unknown source", func(c *Config) { c.Dataset.Source = "parquet" }, "unknown dataset.source"},
		{"postgres without url", func(c *Config) { c.Dataset.Source = "postgres" }, "database_url is required"},
		{"csv without path", func(c *Config) { c.Dataset.Path = "" }, "dataset.path is required"},
		{"inverted slider", func(c *Config) { c.Slider.Min = 5000; c.Slider.Max = 100 }, "below slider.min"},
		{"negative step", func(c *Config) { c.Slider.Step = -1 }, "must not be negative"},
		{"step too fine", func(c *Config) { c.Slider.Max = 1e9; c.Slider.Step = 1 }, "at most 101 allowed"},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, "out of range"},
		{"zero rate", func(c *Config) { c.Server.SignalRate = 0 }, "must be positive"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := *base
			tc.mutate(&c)
			err := c.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestConversions(t *testing.T) {
	d := DatasetConfig{Source: "SQLite", Path: "l.db", Table: "launches"}
	assert.Equal(t, dataset.Spec{Kind: dataset.KindSQLite, Path: "l.db", Table: "launches"}, d.Spec())

	s := SliderConfig{Min: 0, Max: 10000, Step: 1000}
	assert.Equal(t, engine.DefaultSlider, s.Engine())

	assert.Equal(t, 30*time.Minute, ServerConfig{SessionTTLMinutes: 30}.SessionTTL())
}

func TestInitLogger(t *testing.T) {
	t.Cleanup(func() { zap.ReplaceGlobals(zap.NewNop()) })

	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	assert.True(t, zap.L().Core().Enabled(zap.DebugLevel))

	require.NoError(t, InitLogger(LogConfig{Level: "warn", Format: "json"}))
	assert.False(t, zap.L().Core().Enabled(zap.InfoLevel))

	err := InitLogger(LogConfig{Level: "loud"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse log level")
}

func TestDatasetSchema(t *testing.T) {
	sch, err := DatasetConfig{}.Schema()
	require.NoError(t, err)
	col, _, ok := sch.Column(schema.RoleBooster)
	require.True(t, ok)
	assert.Equal(t, "Booster Version", col)

	path := filepath.Join(t.TempDir(), "launches.yaml")
	require.NoError(t, os.WriteFile(path, []byte("measures:\n  - role: outcome\n    column: Landed\n"), 0644))

	sch, err = DatasetConfig{SchemaFile: path, BoosterCol: "Booster Version Category", Sites: []string{"A", "B"}}.Schema()
	require.NoError(t, err)
	col, _, _ = sch.Column(schema.RoleOutcome)
	assert.Equal(t, "Landed", col)
	col, _, _ = sch.Column(schema.RoleBooster)
	assert.Equal(t, "Booster Version Category", col)
	assert.Equal(t, []string{"A", "B"}, sch.Sites)

	_, err = DatasetConfig{SchemaFile: filepath.Join(t.TempDir(), "missing.yaml")}.Schema()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config: load schema")
}
