package configutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type portalConfig struct {
	BaseUrl  string   `json:"base_url" envconfig:"BASE_URL" validate:"required,url"`
	Timeout  Duration `json:"timeout" envconfig:"TIMEOUT"`
	Idle     Duration `json:"idle" envconfig:"IDLE"`
	Retries  int      `json:"retries" envconfig:"RETRIES"`
	Headless *bool    `json:"headless" envconfig:"HEADLESS"`
}

type testConfig struct {
	Portal portalConfig `json:"portal" envconfig:"PORTAL"`
	Name   string       `json:"name" envconfig:"NAME"`
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(contents), 0600))
}

func TestReadConfig(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "config.json5")

	writeFile(t, name, `{
		// comments are allowed
		portal: { base_url: "https://erp.example.com", retries: 2 },
		name: "default",
	}`)
	writeFile(t, filepath.Join(dir, "config.local.json5"), `{
		portal: { retries: 5 },
	}`)

	cfg, err := ReadConfig[testConfig](name)
	require.NoError(t, err)
	require.Equal(t, "https://erp.example.com", cfg.Portal.BaseUrl)
	require.Equal(t, 5, cfg.Portal.Retries)
	require.Equal(t, "default", cfg.Name)
}

func TestReadConfigLocalZeroValues(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "config.json5")

	writeFile(t, name, `{ portal: { base_url: "https://erp.example.com", retries: 3, headless: true } }`)
	writeFile(t, filepath.Join(dir, "config.local.json5"), `{ portal: { retries: 0, headless: false } }`)

	cfg, err := ReadConfig[testConfig](name)
	require.NoError(t, err)
	require.Equal(t, 0, cfg.Portal.Retries)
	require.NotNil(t, cfg.Portal.Headless)
	require.False(t, *cfg.Portal.Headless)
	require.Equal(t, "https://erp.example.com", cfg.Portal.BaseUrl)
}

func TestApplyDefaults(t *testing.T) {
	headless := true
	defaults := testConfig{
		Portal: portalConfig{BaseUrl: "https://erp.example.com", Retries: 2, Headless: &headless},
		Name:   "default",
	}

	off := false
	cfg := testConfig{Portal: portalConfig{Headless: &off}, Name: "custom"}
	require.NoError(t, ApplyDefaults(&cfg, defaults))
	require.Equal(t, "https://erp.example.com", cfg.Portal.BaseUrl)
	require.Equal(t, 2, cfg.Portal.Retries)
	require.False(t, *cfg.Portal.Headless)
	require.Equal(t, "custom", cfg.Name)

	cfg = testConfig{}
	require.NoError(t, ApplyDefaults(&cfg, defaults))
	require.True(t, *cfg.Portal.Headless)
}

func TestReadConfigMissing(t *testing.T) {
	_, err := ReadConfig[testConfig](filepath.Join(t.TempDir(), "config.json5"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadConfigMalformed(t *testing.T) {
	name := filepath.Join(t.TempDir(), "config.json5")
	writeFile(t, name, `{ portal: `)

	_, err := ReadConfig[testConfig](name)
	require.Error(t, err)
	require.NotErrorIs(t, err, os.ErrNotExist)
}

func TestLoadEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "config.json5")
	writeFile(t, name, `{ portal: { base_url: "https://erp.example.com", retries: 2, idle: "750ms", timeout: 10 }, name: "file" }`)

	t.Setenv("TESTCFG_PORTAL_RETRIES", "9")
	t.Setenv("TESTCFG_PORTAL_TIMEOUT", "90s")

	cfg, err := Load[testConfig](name, "TESTCFG")
	require.NoError(t, err)
	require.Equal(t, 9, cfg.Portal.Retries)
	require.Equal(t, 90*time.Second, cfg.Portal.Timeout.Std())
	require.Equal(t, 750*time.Millisecond, cfg.Portal.Idle.Std())
	require.Equal(t, "https://erp.example.com", cfg.Portal.BaseUrl)
	require.Equal(t, "file", cfg.Name)
}

func TestLoadWithoutFile(t *testing.T) {
	t.Setenv("TESTCFG_NAME", "from-env")

	cfg, err := Load[testConfig](filepath.Join(t.TempDir(), "config.json5"), "TESTCFG")
	require.NoError(t, err)
	require.Equal(t, "from-env", cfg.Name)
}

func TestValidate(t *testing.T) {
	require.Error(t, Validate(portalConfig{BaseUrl: "not a url"}))
	require.NoError(t, Validate(portalConfig{BaseUrl: "https://erp.example.com"}))
}
