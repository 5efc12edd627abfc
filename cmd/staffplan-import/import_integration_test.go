package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	logrustest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/nusuk-platform/staffplan/pkg/itf"
)

func writeFixtureWorkbook(t *testing.T, path string) {
	t.Helper()
	f := excelize.NewFile()
	t.Cleanup(func() { _ = f.Close() })

	sheets := map[string][][]any{
		"الخطة الرئيسية": {
			{"#", "المسار الرئيسي", "المسمى الوظيفي", "قائد المسار", "المسار الفرعي", "الوظيفة", "المدير المباشر", "العدد", "الموظف", "حالة التعاقد", "الوصف الوظيفي", "KPI", "المخرجات", "الغرامات"},
			{1, "التدريب", nil, "أحمد", "التطوير", "مدرب", "سعيد", 1, "سارة", "تم التعاقد", nil, "رضا المتدربين"},
			{2, nil, nil, nil, nil, "منسق", nil, 1, "يحدد لاحقا"},
		},
		"مسار التدريب": {
			{"", "", "", "", "", "", "", "", "KPI", "المخرج", "الوصف", "المؤشر", "الغرامة", "النطاق"},
			{"", "", "", "", "", "", "", "", "KPI", "المخرج", "الوصف", "المؤشر", "الغرامة", "النطاق"},
			{"", "", "", "", "", "", "", "", "رضا المتدربين", "خطة تدريب", "خطة", "معتمدة", "تأخير", "تدريب الموظفين"},
		},
		"التوقيع حتى الان": {
			{"م", "الاسم", "المنصب", "المسار", "نوع العقد", "شهري", "الشهور", "الإجمالي"},
			{1, "سارة", "مدرب", "التدريب", "دائم", 12000.5, 12, 144006},
		},
		"التكاليف المالية للموارد البشري": {
			{"#", "المسار", "البنود", "المهام", "النوع", "المدة", "الكمية"},
			{1, "التدريب", "مدرب", "تدريب", "خارجي", 6, 2},
		},
	}
	for name, rows := range sheets {
		_, err := f.NewSheet(name)
		require.NoError(t, err)
		for i, r := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(name, cell, &r))
		}
	}
	require.NoError(t, f.SaveAs(path))
}

func TestRunImport_ApplyThenDryRun(t *testing.T) {
	dm := itf.NewDatabaseManager(t)
	dm.Migrate(t, filepath.Join("..", "..", "modules", "staffplan", "infrastructure", "persistence", "testdata", "migrations"))

	ctx := context.Background()
	_, err := dm.Pool().Exec(ctx, `INSERT INTO users (id, role) VALUES ('u-admin', 'admin')`)
	require.NoError(t, err)

	dir := t.TempDir()
	wbPath := filepath.Join(dir, "plan.xlsx")
	writeFixtureWorkbook(t, wbPath)

	var out bytes.Buffer
	prev := stdout
	stdout = &out
	t.Cleanup(func() { stdout = prev })

	logger, _ := logrustest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	opts := importOptions{
		workbookPath: wbPath,
		outputDir:    filepath.Join(dir, "out"),
		apply:        true,
		dsn:          itf.DbOpts(t.Name()),
		logger:       logger,
	}
	require.NoError(t, runImport(ctx, opts))

	var applied importSummary
	require.NoError(t, json.Unmarshal(out.Bytes(), &applied))
	require.Equal(t, "applied", applied.Status)
	require.NotEmpty(t, applied.Manifest)
	require.Equal(t, "144006.00", applied.ContractTotal)

	counts := map[string]int64{}
	for _, c := range applied.Counts {
		counts[c.Table] = c.Rows
	}
	require.Equal(t, int64(9), counts["tracks"])
	require.Equal(t, int64(1), counts["employees"])
	require.Equal(t, int64(1), counts["records"])
	require.Equal(t, int64(1), counts["deliverables"])
	require.Equal(t, int64(1), counts["track_kpis"])
	require.Equal(t, int64(1), counts["contracts"])
	require.Equal(t, int64(1), counts["financial_costs"])

	var linked int
	require.NoError(t, dm.Pool().QueryRow(ctx, `SELECT COUNT(*) FROM contracts WHERE employee_id IS NOT NULL`).Scan(&linked))
	require.Equal(t, 1, linked)

	out.Reset()
	opts.apply = false
	require.NoError(t, runImport(ctx, opts))

	var dry importSummary
	require.NoError(t, json.Unmarshal(out.Bytes(), &dry))
	require.Equal(t, "dry_run", dry.Status)
	require.Empty(t, dry.Manifest)
	for _, c := range dry.Counts {
		if c.Table == "tracks" {
			require.Equal(t, int64(9), c.Rows)
		}
		if c.Table == "employees" {
			require.Equal(t, int64(2), c.Rows)
		}
	}

	var employees int
	require.NoError(t, dm.Pool().QueryRow(ctx, `SELECT COUNT(*) FROM employees`).Scan(&employees))
	require.Equal(t, 1, employees)
}
