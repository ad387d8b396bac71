package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/pdf-fields/internal/core"
	"github.com/joseph-ayodele/pdf-fields/internal/entity"
	"github.com/joseph-ayodele/pdf-fields/internal/layout"
)

func newPreviewCmd(a *app) *cobra.Command {
	var (
		showText   bool
		saveLayout string
	)
	cmd := &cobra.Command{
		Use:   "preview <file.pdf>",
		Short: "Show what the current rules and layout extract from one document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := os.Stat(args[0])
			if err != nil {
				return err
			}
			stages, err := core.NewStages(a.cfg, nil, a.logger)
			if err != nil {
				return err
			}
			defer func() { _ = stages.Close() }()

			l := a.layout.Current()
			proc, err := core.NewProcessorFromConfig(a.cfg, stages, l, a.logger)
			if err != nil {
				return err
			}
			res := proc.Process(cmd.Context(), entity.NewDocument(args[0], st.Size()))
			rec := res.Record

			if showText {
				printf(cmd, "== Texto extraído ==\n%s\n", res.Text)
			}
			if len(a.rules) > 0 {
				printf(cmd, "== Campos por palavra-chave ==\n")
			}
			for _, r := range a.rules {
				v, _ := rec.Get(r.Keyword)
				if v.Cell() == "" {
					printf(cmd, "%s: Nada encontrado.\n", r.Keyword)
					continue
				}
				printf(cmd, "%s: %s\n", r.Keyword, v.Text)
			}
			if len(l) > 0 {
				printf(cmd, "== OCR do layout ==\n")
			}
			for _, rg := range l {
				v, _ := rec.Get(rg.Title)
				text := v.Cell()
				if text == "" {
					text = "Nada reconhecido"
				}
				printf(cmd, "%s [%d,%d,%d,%d]: %s\n", rg.Title, rg.X, rg.Y, rg.W, rg.H, text)
			}

			if saveLayout != "" {
				if err := layout.ExportFile(saveLayout, l); err != nil {
					return err
				}
				a.logger.Info("layout saved", "file", saveLayout, "regions", len(l))
			}
			if rec.Failed() {
				return errors.New(rec.Error)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showText, "show-text", false, "print the extracted text layer")
	cmd.Flags().StringVar(&saveLayout, "save-layout", "", "write the layout in use to this JSON file")
	return cmd
}
