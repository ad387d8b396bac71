package common

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/joseph-ayodele/pdf-fields/constants"
	"github.com/joseph-ayodele/pdf-fields/internal/entity"
)

// EnvPrefix is prepended to every environment override, e.g. PDF_FIELDS_OCR_LANG.
const EnvPrefix = "PDF_FIELDS"

// Config holds all application configuration
type Config struct {
	Text   TextConfig   `mapstructure:"text"`
	Raster RasterConfig `mapstructure:"raster"`
	OCR    OCRConfig    `mapstructure:"ocr"`
	Batch  BatchConfig  `mapstructure:"batch"`
	Export ExportConfig `mapstructure:"export"`
	Store  StoreConfig  `mapstructure:"store"`
	Log    LogConfig    `mapstructure:"log"`

	LayoutFile string       `mapstructure:"layout"`
	Rules      []RuleConfig `mapstructure:"rules" validate:"dive"`
}

// TextConfig holds PDF text layer extraction settings
type TextConfig struct {
	Engine    string `mapstructure:"engine" validate:"oneof=pdftotext native"`
	Pdftotext string `mapstructure:"pdftotext"`
	Layout    bool   `mapstructure:"layout"`
}

// RasterConfig holds first-page rasterization settings
type RasterConfig struct {
	Pdftoppm string `mapstructure:"pdftoppm"`
	DPI      int    `mapstructure:"dpi" validate:"min=36,max=1200"`
	Format   string `mapstructure:"format" validate:"oneof=png tiff"`
}

// OCRConfig holds region recognition settings
type OCRConfig struct {
	Engine      string `mapstructure:"engine" validate:"oneof=tesseract gosseract"`
	Tesseract   string `mapstructure:"tesseract"`
	Lang        string `mapstructure:"lang" validate:"required"`
	TessdataDir string `mapstructure:"tessdata_dir"`
	PSM         int    `mapstructure:"psm" validate:"min=0,max=13"`
	CropDir     string `mapstructure:"crop_dir"`
}

// BatchConfig holds batch orchestration settings
type BatchConfig struct {
	Workers         int           `mapstructure:"workers" validate:"min=1,max=64"`
	DocumentTimeout time.Duration `mapstructure:"document_timeout" validate:"min=0"`
	Recursive       bool          `mapstructure:"recursive"`
	SkipHidden      bool          `mapstructure:"skip_hidden"`
}

// ExportConfig holds spreadsheet export settings
type ExportConfig struct {
	Output string `mapstructure:"output" validate:"required"`
}

// StoreConfig holds the optional run store settings
type StoreConfig struct {
	Driver string `mapstructure:"driver" validate:"omitempty,oneof=sqlite pgx"`
	DSN    string `mapstructure:"dsn" validate:"required_with=Driver"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=text json"`
}

// RuleConfig is a keyword rule as written in a config file. Direction accepts any
// label understood by constants.CanonicalizeDirection.
type RuleConfig struct {
	Keyword     string `mapstructure:"keyword" validate:"required"`
	Direction   string `mapstructure:"direction" validate:"required"`
	NumericOnly bool   `mapstructure:"numeric_only"`
	Skip        int    `mapstructure:"skip" validate:"min=0"`
	CharLimit   int    `mapstructure:"char_limit" validate:"min=0"`
}

// DefaultConfig returns the built-in defaults: 300 DPI, Portuguese OCR, one worker
func DefaultConfig() *Config {
	return &Config{
		Text: TextConfig{
			Engine:    "pdftotext",
			Pdftotext: "pdftotext",
		},
		Raster: RasterConfig{
			Pdftoppm: "pdftoppm",
			DPI:      constants.DefaultDPI,
			Format:   "png",
		},
		OCR: OCRConfig{
			Engine:    "tesseract",
			Tesseract: "tesseract",
			Lang:      constants.DefaultOCRLang,
		},
		Batch: BatchConfig{
			Workers:         1,
			DocumentTimeout: 3 * time.Minute,
			Recursive:       false,
			SkipHidden:      true,
		},
		Export: ExportConfig{
			Output: constants.DefaultOutputFile,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// NewViper returns a viper instance seeded with defaults and environment overrides.
func NewViper() *viper.Viper {
	v := viper.New()
	def := DefaultConfig()

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("text.engine", def.Text.Engine)
	v.SetDefault("text.pdftotext", def.Text.Pdftotext)
	v.SetDefault("text.layout", def.Text.Layout)
	v.SetDefault("raster.pdftoppm", def.Raster.Pdftoppm)
	v.SetDefault("raster.dpi", def.Raster.DPI)
	v.SetDefault("raster.format", def.Raster.Format)
	v.SetDefault("ocr.engine", def.OCR.Engine)
	v.SetDefault("ocr.tesseract", def.OCR.Tesseract)
	v.SetDefault("ocr.lang", def.OCR.Lang)
	v.SetDefault("ocr.tessdata_dir", "")
	v.SetDefault("ocr.psm", def.OCR.PSM)
	v.SetDefault("ocr.crop_dir", "")
	v.SetDefault("batch.workers", def.Batch.Workers)
	v.SetDefault("batch.document_timeout", def.Batch.DocumentTimeout)
	v.SetDefault("batch.recursive", def.Batch.Recursive)
	v.SetDefault("batch.skip_hidden", def.Batch.SkipHidden)
	v.SetDefault("export.output", def.Export.Output)
	v.SetDefault("store.driver", "")
	v.SetDefault("store.dsn", "")
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.format", def.Log.Format)
	v.SetDefault("layout", "")
	return v
}

// flagBindings maps command line flags to config keys.
var flagBindings = map[string]string{
	"config":           "",
	"layout":           "layout",
	"text-engine":      "text.engine",
	"text-layout":      "text.layout",
	"dpi":              "raster.dpi",
	"raster-format":    "raster.format",
	"ocr-engine":       "ocr.engine",
	"lang":             "ocr.lang",
	"tessdata-dir":     "ocr.tessdata_dir",
	"psm":              "ocr.psm",
	"crops-dir":        "ocr.crop_dir",
	"workers":          "batch.workers",
	"document-timeout": "batch.document_timeout",
	"recursive":        "batch.recursive",
	"out":              "export.output",
	"db-driver":        "store.driver",
	"db-dsn":           "store.dsn",
	"log-level":        "log.level",
	"log-format":       "log.format",
}

// DefineFlags registers the shared flags on fs.
func DefineFlags(fs *pflag.FlagSet) {
	def := DefaultConfig()
	fs.String("config", "", "YAML/JSON config file with tool settings and rules")
	fs.String("layout", "", "layout JSON file ([{\"title\":..., \"coords\":[x,y,w,h]}])")
	fs.StringArray("rule", nil, "keyword rule KEYWORD|DIRECTION[|numeric][|skip=N][|limit=N] (repeatable)")
	fs.String("text-engine", def.Text.Engine, "text layer engine: pdftotext | native")
	fs.Bool("text-layout", def.Text.Layout, "pass -layout to pdftotext")
	fs.Int("dpi", def.Raster.DPI, "rasterization resolution the layout coordinates refer to")
	fs.String("raster-format", def.Raster.Format, "intermediate raster format: png | tiff")
	fs.String("ocr-engine", def.OCR.Engine, "OCR engine: tesseract | gosseract")
	fs.String("lang", def.OCR.Lang, "OCR language")
	fs.String("tessdata-dir", "", "tesseract data directory")
	fs.Int("psm", def.OCR.PSM, "tesseract page segmentation mode (0 = engine default)")
	fs.String("crops-dir", "", "write every region crop as PNG into this directory")
	fs.Int("workers", def.Batch.Workers, "documents processed concurrently")
	fs.Duration("document-timeout", def.Batch.DocumentTimeout, "per-document processing timeout (0 = none)")
	fs.Bool("recursive", def.Batch.Recursive, "walk input directories recursively")
	fs.String("out", def.Export.Output, "XLSX output path")
	fs.String("db-driver", "", "optional run store driver: sqlite | pgx")
	fs.String("db-dsn", "", "run store DSN")
	fs.String("log-level", def.Log.Level, "log level (debug, info, warn, error)")
	fs.String("log-format", def.Log.Format, "log format (text, json)")
}

// BindFlags binds the flags registered by DefineFlags that exist in fs.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) {
	for name, key := range flagBindings {
		if key == "" {
			continue
		}
		if f := fs.Lookup(name); f != nil {
			_ = v.BindPFlag(key, f)
		}
	}
}

// LoadConfig reads the optional config file, unmarshals and validates the configuration.
// Rules given with --rule are appended after the rules of the config file.
func LoadConfig(v *viper.Viper, fs *pflag.FlagSet) (*Config, error) {
	if fs != nil {
		if f := fs.Lookup("config"); f != nil && f.Value.String() != "" {
			v.SetConfigFile(f.Value.String())
			if err := v.ReadInConfig(); err != nil {
				return nil, NewAppError(CodeConfig, "read config file", err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, NewAppError(CodeConfig, "decode config", err)
	}

	if fs != nil {
		if specs, err := fs.GetStringArray("rule"); err == nil {
			for _, s := range specs {
				rc, err := ParseRuleSpec(s)
				if err != nil {
					return nil, err
				}
				cfg.Rules = append(cfg.Rules, rc)
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseRuleSpec parses KEYWORD|DIRECTION[|numeric][|skip=N][|limit=N].
func ParseRuleSpec(spec string) (RuleConfig, error) {
	parts := strings.Split(spec, "|")
	if len(parts) < 2 {
		return RuleConfig{}, NewAppError(CodeConfig, fmt.Sprintf("rule %q: want KEYWORD|DIRECTION[|options]", spec), ErrInvalidInput)
	}
	rc := RuleConfig{Keyword: parts[0], Direction: strings.TrimSpace(parts[1])}
	for _, opt := range parts[2:] {
		opt = strings.TrimSpace(opt)
		key, val, hasVal := strings.Cut(opt, "=")
		switch {
		case opt == "numeric" || opt == "numeric_only":
			rc.NumericOnly = true
		case hasVal && (key == "skip" || key == "limit"):
			n, err := strconv.Atoi(val)
			if err != nil || n < 0 {
				return RuleConfig{}, NewAppError(CodeConfig, fmt.Sprintf("rule %q: %s must be a non-negative integer", spec, key), ErrInvalidInput)
			}
			if key == "skip" {
				rc.Skip = n
			} else {
				rc.CharLimit = n
			}
		default:
			return RuleConfig{}, NewAppError(CodeConfig, fmt.Sprintf("rule %q: unknown option %q", spec, opt), ErrInvalidInput)
		}
	}
	return rc, nil
}

// KeywordRules converts the configured rules, canonicalizing direction labels.
func (c *Config) KeywordRules() ([]entity.KeywordRule, error) {
	out := make([]entity.KeywordRule, 0, len(c.Rules))
	var errs []error
	for i, rc := range c.Rules {
		d, ok := constants.CanonicalizeDirection(rc.Direction)
		if !ok {
			errs = append(errs, fmt.Errorf("rules[%d] %q: unknown direction %q (want one of %s)",
				i, rc.Keyword, rc.Direction, strings.Join(constants.DirectionsAsStringSlice(), ", ")))
			continue
		}
		out = append(out, entity.KeywordRule{
			Keyword:     rc.Keyword,
			Direction:   d,
			NumericOnly: rc.NumericOnly,
			Skip:        rc.Skip,
			CharLimit:   rc.CharLimit,
		})
	}
	if len(errs) > 0 {
		return nil, NewAppError(CodeConfig, "invalid rules", errors.Join(append([]error{ErrInvalidInput}, errs...)...))
	}
	return out, nil
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if err := ValidateStruct(c); err != nil {
		return NewAppError(CodeConfig, "invalid configuration", err)
	}
	if _, err := c.KeywordRules(); err != nil {
		return err
	}
	return nil
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.Log.Level == "debug"
}
