package common

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/pdf-fields/constants"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "pdftotext", cfg.Text.Engine)
	assert.Equal(t, 300, cfg.Raster.DPI)
	assert.Equal(t, "por", cfg.OCR.Lang)
	assert.Equal(t, 1, cfg.Batch.Workers)
	assert.Equal(t, 3*time.Minute, cfg.Batch.DocumentTimeout)
	assert.Equal(t, "resultado_ocr.xlsx", cfg.Export.Output)
	assert.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(c *Config) {}},
		{name: "bad text engine", mutate: func(c *Config) { c.Text.Engine = "pdfium" }, wantErr: true},
		{name: "dpi too low", mutate: func(c *Config) { c.Raster.DPI = 10 }, wantErr: true},
		{name: "bad raster format", mutate: func(c *Config) { c.Raster.Format = "jpeg" }, wantErr: true},
		{name: "empty ocr lang", mutate: func(c *Config) { c.OCR.Lang = "" }, wantErr: true},
		{name: "zero workers", mutate: func(c *Config) { c.Batch.Workers = 0 }, wantErr: true},
		{name: "driver without dsn", mutate: func(c *Config) { c.Store.Driver = "sqlite" }, wantErr: true},
		{name: "unknown driver", mutate: func(c *Config) { c.Store.Driver = "mysql"; c.Store.DSN = "x" }, wantErr: true},
		{name: "sqlite store", mutate: func(c *Config) { c.Store.Driver = "sqlite"; c.Store.DSN = "runs.db" }},
		{name: "bad log level", mutate: func(c *Config) { c.Log.Level = "trace" }, wantErr: true},
		{
			name: "portuguese direction label",
			mutate: func(c *Config) {
				c.Rules = []RuleConfig{{Keyword: "Total:", Direction: "lado direito"}}
			},
		},
		{
			name: "unknown direction",
			mutate: func(c *Config) {
				c.Rules = []RuleConfig{{Keyword: "Total:", Direction: "diagonal"}}
			},
			wantErr: true,
		},
		{
			name: "negative skip",
			mutate: func(c *Config) {
				c.Rules = []RuleConfig{{Keyword: "Total:", Direction: "right", Skip: -1}}
			},
			wantErr: true,
		},
		{
			name: "empty keyword",
			mutate: func(c *Config) {
				c.Rules = []RuleConfig{{Direction: "right"}}
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				var appErr *AppError
				assert.True(t, errors.As(err, &appErr))
				assert.Equal(t, CodeConfig, appErr.Code)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestParseRuleSpec(t *testing.T) {
	rc, err := ParseRuleSpec("Total:|right|numeric|skip=1|limit=5")
	require.NoError(t, err)
	assert.Equal(t, RuleConfig{Keyword: "Total:", Direction: "right", NumericOnly: true, Skip: 1, CharLimit: 5}, rc)

	rc, err = ParseRuleSpec("Nome |baixo")
	require.NoError(t, err)
	assert.Equal(t, "Nome ", rc.Keyword, "keyword whitespace is significant")

	for _, bad := range []string{"Total:", "Total:|right|skip=-1", "Total:|right|limit=x", "Total:|right|bold"} {
		_, err := ParseRuleSpec(bad)
		assert.ErrorIs(t, err, ErrInvalidInput, bad)
	}
}

func TestKeywordRules_Canonicalizes(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Rules = []RuleConfig{
		{Keyword: "A", Direction: "lado esquerdo"},
		{Keyword: "B", Direction: "Cima"},
		{Keyword: "C", Direction: "below", NumericOnly: true, Skip: 2, CharLimit: 4},
	}
	rules, err := cfg.KeywordRules()
	require.NoError(t, err)
	require.Len(t, rules, 3)
	assert.Equal(t, constants.Left, rules[0].Direction)
	assert.Equal(t, constants.Above, rules[1].Direction)
	assert.Equal(t, constants.Below, rules[2].Direction)
	assert.True(t, rules[2].NumericOnly)
	assert.Equal(t, 2, rules[2].Skip)
	assert.Equal(t, 4, rules[2].CharLimit)
}

func TestLoadConfig_FileFlagsAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fields.yaml")
	content := `
ocr:
  lang: eng
batch:
  workers: 2
rules:
  - keyword: "Total:"
    direction: lado direito
    numeric_only: true
  - keyword: "Nome:"
    direction: right
    char_limit: 10
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("PDF_FIELDS_RASTER_DPI", "150")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	DefineFlags(fs)
	require.NoError(t, fs.Parse([]string{"--config", path, "--workers", "4", "--rule", "CPF|below"}))

	v := NewViper()
	BindFlags(v, fs)
	cfg, err := LoadConfig(v, fs)
	require.NoError(t, err)

	assert.Equal(t, "eng", cfg.OCR.Lang, "config file overrides default")
	assert.Equal(t, 4, cfg.Batch.Workers, "flag overrides config file")
	assert.Equal(t, 150, cfg.Raster.DPI, "env overrides default")
	require.Len(t, cfg.Rules, 3)
	assert.Equal(t, "Total:", cfg.Rules[0].Keyword)
	assert.True(t, cfg.Rules[0].NumericOnly)
	assert.Equal(t, 10, cfg.Rules[1].CharLimit)
	assert.Equal(t, "CPF", cfg.Rules[2].Keyword)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	DefineFlags(fs)
	require.NoError(t, fs.Parse([]string{"--config", filepath.Join(t.TempDir(), "nope.yaml")}))

	v := NewViper()
	BindFlags(v, fs)
	_, err := LoadConfig(v, fs)
	require.Error(t, err)
}
