package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeConfig создает конфигурацию с файловым хранилищем во временном каталоге
func writeConfig(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	scenFile := filepath.Join(dir, "scenarios.json")
	cfgPath := filepath.Join(dir, "config.yaml")

	content := fmt.Sprintf("storage:\n  backend: file\n  file: %q\n", scenFile)
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o644))
	return cfgPath, scenFile
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestPredictCommand(t *testing.T) {
	cfgPath, scenFile := writeConfig(t)

	out, err := execute(t, "--config", cfgPath, "predict", "--input", `{"vandens_ml": 2100, "stresas": 4}`)
	require.NoError(t, err)

	var res map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &res), out)
	assert.Contains(t, res, "hidratacijos_indeksas")
	assert.Equal(t, 2100.0, res["ivestis"].(map[string]any)["vandens_ml"])
	assert.Contains(t, res, "stress_insights")

	// predict не создает файл сценариев
	assert.NoFileExists(t, scenFile)
}

func TestPredictCommand_InvalidInput(t *testing.T) {
	cfgPath, _ := writeConfig(t)

	_, err := execute(t, "--config", cfgPath, "predict", "--input", `{"vandens_ml": "daug"}`)
	assert.ErrorContains(t, err, "vandens_ml")

	_, err = execute(t, "--config", cfgPath, "predict", "--input", `[1]`)
	assert.Error(t, err)
}

func TestStatsCommand(t *testing.T) {
	cfgPath, _ := writeConfig(t)

	out, err := execute(t, "--config", cfgPath, "stats")
	require.NoError(t, err)

	var st map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &st), out)
	assert.Equal(t, 30.0, st["irasu_skaicius"])
	assert.Contains(t, st, "metrikos")
}

func TestScenariosCommands(t *testing.T) {
	cfgPath, scenFile := writeConfig(t)

	out, err := execute(t, "--config", cfgPath, "scenarios", "list")
	require.NoError(t, err)
	assert.JSONEq(t, `{"scenarios": []}`, out)

	out, err = execute(t, "--config", cfgPath, "scenarios", "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "3")
	assert.FileExists(t, scenFile)

	require.NoError(t, os.WriteFile(scenFile, []byte(`[{"name":"x","payload":{}}]`), 0o644))
	out, err = execute(t, "--config", cfgPath, "scenarios", "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "1")

	out, err = execute(t, "--config", cfgPath, "scenarios", "reset")
	require.NoError(t, err)
	assert.Contains(t, out, "3")

	out, err = execute(t, "--config", cfgPath, "scenarios", "list")
	require.NoError(t, err)
	var listed struct {
		Scenarios []struct {
			Name string `json:"name"`
		} `json:"scenarios"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &listed))
	require.Len(t, listed.Scenarios, 3)
	assert.Equal(t, "Puikiai pailsėjęs", listed.Scenarios[0].Name)
}

func TestInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("port: 0\n"), 0o644))

	_, err := execute(t, "--config", cfgPath, "stats")
	assert.ErrorContains(t, err, "port")
}
