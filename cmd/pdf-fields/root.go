package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/pdf-fields/internal/common"
	"github.com/joseph-ayodele/pdf-fields/internal/entity"
	"github.com/joseph-ayodele/pdf-fields/internal/layout"
)

// app is the state shared by the subcommands once flags and config are loaded.
type app struct {
	cfg    *common.Config
	logger *slog.Logger
	rules  []entity.KeywordRule
	layout *layout.Store
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "pdf-fields",
		Short: "Extract fields from PDFs by keyword rules and OCR regions",
		Long: `pdf-fields reads named values out of PDF documents. Keyword rules pick a value next to a
label in the text layer; layout regions are OCRed on the first page rendered at a fixed DPI.
Preview the configuration on one document, then run it over a batch and export XLSX.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
	}
	common.DefineFlags(root.PersistentFlags())

	root.AddCommand(
		newPreviewCmd(a),
		newBatchCmd(a),
		newWatchCmd(a),
		newLayoutCmd(a),
		newRunsCmd(a),
	)
	return root
}

func (a *app) load(cmd *cobra.Command) error {
	v := common.NewViper()
	common.BindFlags(v, cmd.Flags())
	cfg, err := common.LoadConfig(v, cmd.Flags())
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = newLogger(cfg.Log, cmd.ErrOrStderr())
	slog.SetDefault(a.logger)

	a.rules, err = cfg.KeywordRules()
	if err != nil {
		return err
	}

	var l entity.Layout
	if cfg.LayoutFile != "" {
		l, err = layout.ImportFile(cfg.LayoutFile)
		if err != nil {
			return err
		}
		a.logger.Info("layout loaded", "file", cfg.LayoutFile, "regions", len(l))
	}
	a.layout = layout.NewStore(l)
	return layout.ValidateConfig(a.rules, l)
}

func newLogger(cfg common.LogConfig, w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func printf(cmd *cobra.Command, format string, args ...any) {
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}
