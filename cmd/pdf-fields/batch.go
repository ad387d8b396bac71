package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/pdf-fields/internal/common"
	"github.com/joseph-ayodele/pdf-fields/internal/core"
	"github.com/joseph-ayodele/pdf-fields/internal/core/async"
	"github.com/joseph-ayodele/pdf-fields/internal/export"
	"github.com/joseph-ayodele/pdf-fields/internal/ingest"
	"github.com/joseph-ayodele/pdf-fields/internal/repository"
	"github.com/joseph-ayodele/pdf-fields/internal/table"
)

func newBatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "batch <file.pdf|dir>...",
		Short: "Run the rules and layout over many PDFs and export one XLSX row per document",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			docs, stats, err := ingest.Collect(args, ingest.CollectOptions{
				Recursive:  a.cfg.Batch.Recursive,
				SkipHidden: a.cfg.Batch.SkipHidden,
			})
			if err != nil {
				return err
			}
			a.logger.Info("inputs collected", "matched", stats.Matched, "skipped", stats.Skipped, "failed", stats.Failed)
			if len(docs) == 0 {
				return fmt.Errorf("no PDF found in %v: %w", args, common.ErrInvalidInput)
			}

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
			b := async.NewBatch(proc, a.logger,
				async.WithWorkers(a.cfg.Batch.Workers),
				async.WithDocumentTimeout(a.cfg.Batch.DocumentTimeout),
			)
			records, sum := b.Run(ctx, docs)

			tbl := table.Assemble(proc.Rules(), proc.Layout(), records)
			if err := export.NewService(a.logger).WriteFile(ctx, a.cfg.Export.Output, tbl); err != nil {
				return err
			}
			if err := a.saveRun(ctx, runID, started, tbl); err != nil {
				return err
			}

			printf(cmd, "%d documentos, %d com falha -> %s\n", sum.Processed, sum.Failed, a.cfg.Export.Output)
			if a.cfg.Store.Driver != "" {
				printf(cmd, "run %s\n", runID)
			}
			return nil
		},
	}
}

// saveRun persists the run when a store is configured.
func (a *app) saveRun(ctx context.Context, runID uuid.UUID, started time.Time, tbl table.Table) error {
	if a.cfg.Store.Driver == "" {
		return nil
	}
	db, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer db.Close(a.logger)

	sum := async.Summarize(tbl.Records, time.Since(started))
	run := repository.Run{
		ID:         runID,
		StartedAt:  started,
		FinishedAt: time.Now(),
		Documents:  sum.Processed,
		Failed:     sum.Failed,
		Columns:    tbl.Columns,
	}
	if err := repository.NewRunRepository(db, a.logger).SaveRun(ctx, run, tbl.Records); err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	a.logger.Info("run saved", "run_id", runID, "documents", run.Documents, "failed", run.Failed)
	return nil
}

// openStore opens the configured run store and makes sure its tables exist.
func (a *app) openStore(ctx context.Context) (*repository.DB, error) {
	if a.cfg.Store.Driver == "" {
		return nil, fmt.Errorf("no run store configured (set --db-driver and --db-dsn): %w", common.ErrInvalidInput)
	}
	db, err := repository.Open(ctx, repository.Config{
		Driver:      a.cfg.Store.Driver,
		DSN:         a.cfg.Store.DSN,
		DialTimeout: 10 * time.Second,
	}, a.logger)
	if err != nil {
		return nil, fmt.Errorf("open run store: %w", err)
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close(a.logger)
		return nil, err
	}
	return db, nil
}
