package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spektr-org/launchboard/dataset"
	"github.com/spektr-org/launchboard/engine"
)

const scenarioCSV = `Launch Site,class,Payload Mass (kg),Booster Version
A,1,2000,v1
A,0,9000,v2
B,1,3000,v1
`

func scenarioTable(t *testing.T) *dataset.Dataset {
	t.Helper()
	d, err := dataset.New([]engine.Record{
		{Site: "A", PayloadMass: 2000, Outcome: engine.Success, BoosterVersion: "v1"},
		{Site: "A", PayloadMass: 9000, Outcome: engine.Failure, BoosterVersion: "v2"},
		{Site: "B", PayloadMass: 3000, Outcome: engine.Success, BoosterVersion: "v1"},
	}, nil)
	require.NoError(t, err)
	return d
}

// setupWorkdir writes launches.csv and a launchboard.yaml pointing at it into
// a temp dir and makes it the working directory.
func setupWorkdir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "launches.csv"), []byte(scenarioCSV), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "launchboard.yaml"),
		[]byte("dataset:\n  path: launches.csv\nlog:\n  level: error\n"), 0644))

	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		os.Chdir(origDir)
		zap.ReplaceGlobals(zap.NewNop())
	})
	return dir
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	renderSite, renderRange, renderOutput, renderFormat, renderOut = "", "", "all", "json", ""
	describeFormat, describeDiscover = "pretty", false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	setupWorkdir(t)
	out, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "launchboard "+version+"\n", out)
}

func TestRenderCommand(t *testing.T) {
	setupWorkdir(t)

	out, err := runCLI(t, "render", "--site", "A", "--range", "0,5000", "--output", "scatter", "--format", "json")
	require.NoError(t, err)

	var doc struct {
		Site    string `json:"site"`
		Outputs []struct {
			ID       string                 `json:"id"`
			Artifact engine.ScatterArtifact `json:"artifact"`
		} `json:"outputs"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "A", doc.Site)
	require.Len(t, doc.Outputs, 1)
	assert.Equal(t, []engine.ScatterPoint{{X: 2000, Y: engine.Success, Group: "v1"}}, doc.Outputs[0].Artifact.Points)
	assert.Equal(t, "0 kg - 5,000 kg", doc.Outputs[0].Artifact.RangeLabel)
}

func TestRenderCommandToFile(t *testing.T) {
	dir := setupWorkdir(t)
	path := filepath.Join(dir, "pie.png")

	_, err := runCLI(t, "render", "--output", "pie", "--format", "png", "--out", path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")))
}

func TestRenderCommandRejects(t *testing.T) {
	setupWorkdir(t)

	_, err := runCLI(t, "render", "--site", "C")
	assert.ErrorIs(t, err, engine.ErrInvalidSignal)

	_, err = runCLI(t, "render", "--range", "0,50000")
	assert.ErrorIs(t, err, engine.ErrInvalidSignal)

	_, err = runCLI(t, "render", "--format", "png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--format png needs")
}

func TestDescribeCommand(t *testing.T) {
	setupWorkdir(t)

	out, err := runCLI(t, "describe", "--format", "json")
	require.NoError(t, err)

	var doc describeDoc
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, 3, doc.Summary.Records)
	assert.Equal(t, []string{"A", "B"}, doc.Summary.Sites)
	assert.Equal(t, 9000.0, doc.Summary.MaxPayload)
	assert.Equal(t, "SpaceX Launch Records Dashboard", doc.Layout.Heading)
	assert.Len(t, doc.Layout.Slider.Marks, 11)
}

func TestDescribeDiscover(t *testing.T) {
	setupWorkdir(t)

	out, err := runCLI(t, "describe", "--discover", "--format", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "discoveredFrom: launches.csv")
	assert.Contains(t, out, "column: Payload Mass (kg)")
}

func TestBadConfig(t *testing.T) {
	dir := setupWorkdir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "launchboard.yaml"), []byte("dataset:\n  source: parquet\n"), 0644))

	_, err := runCLI(t, "version")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown dataset.source")
}
