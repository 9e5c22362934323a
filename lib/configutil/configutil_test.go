package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Port   int `json:"port"`
	Portal struct {
		BaseURL string `json:"base_url"`
		Marker  string `json:"marker"`
	} `json:"portal"`
}

func writeFile(t testing.TB, path, contents string) {
	err := os.WriteFile(path, []byte(contents), 0644)
	if err != nil {
		t.Fatal(err)
	}
}

func TestReadConfigMergesLocal(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "config.json5")

	writeFile(t, name, `{
		// comments are allowed
		port: 5000,
		portal: { base_url: "http://mitsims.in/", marker: "#studentName" },
	}`)
	writeFile(t, filepath.Join(dir, "config.local.json5"), `{ port: 8080 }`)

	cfg, err := ReadConfig[testConfig](name)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, "http://mitsims.in/", cfg.Portal.BaseURL)
	require.Equal(t, "#studentName", cfg.Portal.Marker)
}

func TestReadConfigMissing(t *testing.T) {
	_, err := ReadConfig[testConfig](filepath.Join(t.TempDir(), "config.json5"))
	require.ErrorIs(t, err, os.ErrNotExist)

	cfg, err := ReadOptional[testConfig](filepath.Join(t.TempDir(), "config.json5"))
	require.NoError(t, err)
	require.Equal(t, testConfig{}, cfg)
}

func TestReadConfigInvalid(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "config.json5")
	writeFile(t, name, `{ port: `)

	_, err := ReadConfig[testConfig](name)
	require.Error(t, err)
}

func TestLocalName(t *testing.T) {
	require.Equal(t, "a/config.local.json5", localName("a/config.json5"))
	require.Equal(t, "telemetry.local.json5", localName("telemetry.json5"))
}
