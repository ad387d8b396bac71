package main

import (
	"context"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/pdf-fields/internal/common"
	"github.com/joseph-ayodele/pdf-fields/internal/core"
	"github.com/joseph-ayodele/pdf-fields/internal/entity"
	"github.com/joseph-ayodele/pdf-fields/internal/export"
	"github.com/joseph-ayodele/pdf-fields/internal/ingest"
	"github.com/joseph-ayodele/pdf-fields/internal/table"
)

func newWatchCmd(a *app) *cobra.Command {
	var (
		initialScan bool
		debounce    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "watch <dir>...",
		Short: "Process PDFs as they arrive in the given directories, rewriting the XLSX after each one",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runID := uuid.New()
			ctx := common.WithRunID(cmd.Context(), runID.String())
			started := time.Now()

			stages, err := core.NewStages(a.cfg, nil, a.logger)
			if err != nil {
				return err
			}
			defer func() { _ = stages.Close() }()

			proc, err := core.NewProcessorFromConfig(a.cfg, stages, a.layout.Current(), a.logger)
			if err != nil {
				return err
			}

			events, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
				Roots:       args,
				InitialScan: initialScan,
				SkipHidden:  a.cfg.Batch.SkipHidden,
				Debounce:    debounce,
				Logger:      a.logger,
			})
			if err != nil {
				return err
			}
			a.logger.Info("watching", "roots", args, "out", a.cfg.Export.Output)

			exporter := export.NewService(a.logger)
			var records []*entity.Record
			for {
				select {
				case path, ok := <-events:
					if !ok {
						tbl := table.Assemble(proc.Rules(), proc.Layout(), records)
						// the command context is done; the run is still saved
						return a.saveRun(context.WithoutCancel(ctx), runID, started, tbl)
					}
					st, err := os.Stat(path)
					if err != nil {
						a.logger.Warn("watched file vanished", "path", path, "error", err)
						continue
					}
					rec := a.processOne(ctx, proc, entity.NewDocument(path, st.Size()))
					records = append(records, rec)
					tbl := table.Assemble(proc.Rules(), proc.Layout(), records)
					if err := exporter.WriteFile(ctx, a.cfg.Export.Output, tbl); err != nil {
						a.logger.Error("export failed", "error", err)
					}
					printf(cmd, "%s: %s\n", rec.Filename(), rec.Status)
				case err, ok := <-errs:
					if !ok {
						errs = nil
						continue
					}
					a.logger.Warn("watch error", "error", err)
				}
			}
		},
	}
	cmd.Flags().BoolVar(&initialScan, "initial-scan", true, "process the PDFs already present at start")
	cmd.Flags().DurationVar(&debounce, "debounce", 500*time.Millisecond, "wait this long after the last write to a file before processing it")
	return cmd
}

func (a *app) processOne(ctx context.Context, proc *core.Processor, doc entity.Document) *entity.Record {
	if d := a.cfg.Batch.DocumentTimeout; d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}
	return proc.ProcessDocument(common.WithDocument(ctx, doc.Filename), doc)
}
