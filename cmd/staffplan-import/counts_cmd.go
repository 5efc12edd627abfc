package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/nusuk-platform/staffplan/modules/staffplan/domain"
	"github.com/nusuk-platform/staffplan/modules/staffplan/infrastructure/persistence"
	"github.com/nusuk-platform/staffplan/pkg/composables"
	"github.com/nusuk-platform/staffplan/pkg/configuration"
)

type countsSummary struct {
	Status string              `json:"status"`
	Counts []domain.TableCount `json:"counts"`
}

func newCountsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "counts",
		Short: "Print row counts of the imported tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf := configuration.Use()
			defer conf.Unload()
			return runCounts(cmd.Context(), conf.Database.Opts)
		},
	}
}

func runCounts(ctx context.Context, dsn string) error {
	pool, err := connectDB(ctx, dsn)
	if err != nil {
		return withCode(exitDB, err)
	}
	defer pool.Close()

	counts, err := persistence.NewStaffplanRepository().CountRows(composables.WithPool(ctx, pool))
	if err != nil {
		return withCode(exitDB, err)
	}
	return writeJSONLine(countsSummary{Status: "ok", Counts: counts})
}
