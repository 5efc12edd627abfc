package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/nusuk-platform/staffplan/modules/staffplan/domain"
	"github.com/nusuk-platform/staffplan/modules/staffplan/infrastructure/persistence"
	"github.com/nusuk-platform/staffplan/modules/staffplan/services"
	"github.com/nusuk-platform/staffplan/modules/staffplan/vocabulary"
	"github.com/nusuk-platform/staffplan/pkg/composables"
	"github.com/nusuk-platform/staffplan/pkg/configuration"
	"github.com/nusuk-platform/staffplan/pkg/ids"
	"github.com/nusuk-platform/staffplan/pkg/logging"
	"github.com/nusuk-platform/staffplan/pkg/workbook"
)

type importOptions struct {
	workbookPath string
	outputDir    string
	metricsFile  string
	apply        bool

	dsn    string
	logger *logrus.Logger
}

func newImportCmd() *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import the staffing-plan workbook (.xlsx file or directory of sheet CSVs)",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf := configuration.Use()
			defer conf.Unload()

			if opts.workbookPath == "" {
				opts.workbookPath = conf.WorkbookPath
			}
			if opts.outputDir == "" {
				opts.outputDir = conf.OutputDir
			}
			if opts.metricsFile == "" {
				opts.metricsFile = conf.MetricsTextfile
			}
			opts.dsn = conf.Database.Opts
			opts.logger = conf.Logger()

			ctx := cmd.Context()
			if conf.OpenTelemetry.Enabled {
				cleanup := logging.SetupTracing(ctx, conf.OpenTelemetry.ServiceName, conf.OpenTelemetry.TempoURL)
				defer cleanup()
			}
			return runImport(ctx, opts)
		},
	}

	cmd.Flags().StringVar(&opts.workbookPath, "workbook", "", "Workbook .xlsx file or CSV directory (default: $EXCEL_PATH)")
	cmd.Flags().StringVar(&opts.outputDir, "output", "", "Output directory for the manifest (default: $IMPORT_OUTPUT_DIR)")
	cmd.Flags().BoolVar(&opts.apply, "apply", false, "Apply changes to DB (default is dry-run)")
	cmd.Flags().StringVar(&opts.metricsFile, "metrics-file", "", "Write import metrics in textfile format (default: $METRICS_TEXTFILE)")
	return cmd
}

type importManifestStage struct {
	Stage    services.Stage      `json:"stage"`
	Inserted map[string][]string `json:"inserted"`
}

type importManifestV1 struct {
	Version    int                   `json:"version"`
	RunID      string                `json:"run_id"`
	Workbook   string                `json:"workbook"`
	StartedAt  time.Time             `json:"started_at"`
	FinishedAt time.Time             `json:"finished_at"`
	Status     string                `json:"status"`
	Stages     []importManifestStage `json:"stages"`
}

type importSummary struct {
	Status        string                 `json:"status"`
	RunID         string                 `json:"run_id"`
	Apply         bool                   `json:"apply"`
	Workbook      string                 `json:"workbook"`
	Manifest      string                 `json:"manifest,omitempty"`
	Stages        []services.StageReport `json:"stages"`
	Counts        []domain.TableCount    `json:"counts,omitempty"`
	ContractTotal string                 `json:"contract_total"`
	Warnings      []string               `json:"warnings,omitempty"`
	Error         string                 `json:"error,omitempty"`
}

func runImport(ctx context.Context, opts importOptions) error {
	if strings.TrimSpace(opts.workbookPath) == "" {
		return withCode(exitUsage, fmt.Errorf("--workbook or EXCEL_PATH is required"))
	}
	if opts.logger == nil {
		opts.logger = logrus.StandardLogger()
	}

	startedAt := time.Now().UTC()
	runID := uuid.New()
	log := opts.logger.WithField("run_id", runID.String())

	wb, err := openWorkbook(opts.workbookPath)
	if err != nil {
		return withCode(exitValidation, err)
	}

	pool, err := connectDB(ctx, opts.dsn)
	if err != nil {
		return withCode(exitDB, err)
	}
	defer pool.Close()
	ctx = composables.WithPool(ctx, pool)

	store := persistence.NewStaffplanRepository()
	var (
		repo domain.Repository = store
		inTx services.TxFunc   = composables.InTx
	)
	if !opts.apply {
		dry, err := newDryRunRepository(ctx, store)
		if err != nil {
			return withCode(exitDB, err)
		}
		repo, inTx = dry, dry.InTx
	}

	log.WithFields(logrus.Fields{"workbook": opts.workbookPath, "apply": opts.apply}).Info("import started")
	report, runErr := services.NewImporter(repo, inTx, ids.UUIDv7(), vocabulary.Default(), log).Run(ctx, wb)

	summary := importSummary{
		Status:        "applied",
		RunID:         runID.String(),
		Apply:         opts.apply,
		Workbook:      opts.workbookPath,
		Stages:        report.Stages,
		ContractTotal: report.ContractTotal.StringFixed(2),
		Warnings:      report.Warnings,
	}
	if !opts.apply {
		summary.Status = "dry_run"
	}
	if runErr != nil {
		summary.Status = "failed"
		summary.Error = runErr.Error()
	}

	if counts, err := store.CountRows(ctx); err != nil {
		log.WithError(err).Warn("count rows")
	} else {
		if !opts.apply {
			counts = projectCounts(counts, report)
		}
		summary.Counts = counts
	}

	if opts.apply && len(report.Manifest) > 0 {
		manifest := buildManifest(runID.String(), opts.workbookPath, startedAt, summary.Status, report)
		path, err := writeManifest(opts.outputDir, manifest)
		if err != nil {
			return err
		}
		summary.Manifest = path
	}

	if opts.metricsFile != "" {
		if err := services.WriteMetrics(opts.metricsFile); err != nil {
			log.WithError(err).Warn("write metrics textfile")
		}
	}

	if err := writeJSONLine(summary); err != nil {
		return err
	}
	return classifyRunError(runErr)
}

func openWorkbook(path string) (workbook.Workbook, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("workbook: %w", err)
	}
	if info.IsDir() {
		return workbook.OpenCSVDir(path)
	}
	return workbook.OpenExcel(path)
}

// classifyRunError maps importer failures to exit codes.
func classifyRunError(err error) error {
	if err == nil {
		return nil
	}
	var stageErr *services.StageError
	switch {
	case as(err, &stageErr):
		return withCode(exitDBWrite, err)
	case is(err, services.ErrSheetMissing), is(err, services.ErrUnrecognizedShape):
		return withCode(exitValidation, err)
	default:
		return withCode(exitDB, err)
	}
}

// projectCounts adds the rows a dry run would have inserted to the store's counts.
func projectCounts(base []domain.TableCount, report *services.Report) []domain.TableCount {
	out := make([]domain.TableCount, 0, len(base))
	for _, c := range base {
		out = append(out, domain.TableCount{Table: c.Table, Rows: c.Rows + int64(report.Inserted(c.Table))})
	}
	return out
}

func buildManifest(runID, workbookPath string, startedAt time.Time, status string, report *services.Report) *importManifestV1 {
	m := &importManifestV1{
		Version:    1,
		RunID:      runID,
		Workbook:   workbookPath,
		StartedAt:  startedAt,
		FinishedAt: time.Now().UTC(),
		Status:     status,
	}
	for _, stage := range services.Stages {
		inserted, ok := report.Manifest[stage]
		if !ok {
			continue
		}
		m.Stages = append(m.Stages, importManifestStage{Stage: stage, Inserted: inserted})
	}
	return m
}
