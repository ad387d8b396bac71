package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/pdf-fields/internal/common"
	"github.com/joseph-ayodele/pdf-fields/internal/export"
	"github.com/joseph-ayodele/pdf-fields/internal/repository"
	"github.com/joseph-ayodele/pdf-fields/internal/table"
)

func newRunsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect batch runs kept in the run store",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "health",
		Short: "Ping the run store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close(a.logger)

			if err := db.HealthCheck(cmd.Context(), time.Second, a.logger); err != nil {
				return fmt.Errorf("store health: %w", err)
			}
			printf(cmd, "store %s: OK\n", db.Driver)
			return nil
		},
	})

	var out string
	show := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Print a stored run and optionally export its rows again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return common.NewAppError(common.CodeConfig, fmt.Sprintf("run id %q", args[0]), common.ErrInvalidInput)
			}
			db, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close(a.logger)

			repo := repository.NewRunRepository(db, a.logger)
			run, err := repo.GetRun(cmd.Context(), id)
			if err != nil {
				return err
			}
			records, err := repo.ListRecords(cmd.Context(), id)
			if err != nil {
				return err
			}

			printf(cmd, "run %s\n", run.ID)
			printf(cmd, "  started:   %s\n", run.StartedAt.Format(time.RFC3339))
			printf(cmd, "  finished:  %s\n", run.FinishedAt.Format(time.RFC3339))
			printf(cmd, "  documents: %d (%d com falha)\n", run.Documents, run.Failed)
			for _, rec := range records {
				if rec.Failed() {
					printf(cmd, "  - %s: %s (%s)\n", rec.Filename(), rec.Status, rec.Error)
					continue
				}
				printf(cmd, "  - %s: %s\n", rec.Filename(), rec.Status)
			}

			if out != "" {
				tbl := table.FromColumns(run.Columns, records)
				if err := export.NewService(a.logger).WriteFile(cmd.Context(), out, tbl); err != nil {
					return err
				}
				printf(cmd, "-> %s\n", out)
			}
			return nil
		},
	}
	show.Flags().StringVar(&out, "xlsx", "", "export the stored rows to this XLSX file")
	cmd.AddCommand(show)
	return cmd
}
