package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nusuk-platform/staffplan/pkg/workbook"
)

func row(cells ...string) []string { return cells }

func TestClean(t *testing.T) {
	for _, in := range []string{"", "   ", "nan", "NaN", "None", " None "} {
		require.Nil(t, Clean(in), "%q", in)
	}
	got := Clean("  سارة ")
	require.NotNil(t, got)
	require.Equal(t, "سارة", *got)

	// only the exact markers are nulls
	require.NotNil(t, Clean("none"))
}

func TestParseNumber(t *testing.T) {
	s := "12000.50"
	v, bad := ParseNumber(&s)
	require.False(t, bad)
	require.InDelta(t, 12000.5, *v, 1e-9)

	s = "1.5E+3"
	v, bad = ParseNumber(&s)
	require.False(t, bad)
	require.InDelta(t, 1500.0, *v, 1e-9)

	s = "اثنا عشر"
	v, bad = ParseNumber(&s)
	require.True(t, bad)
	require.Nil(t, v)

	v, bad = ParseNumber(nil)
	require.False(t, bad)
	require.Nil(t, v)
}

func TestLayout_ShapeGatedExtraction(t *testing.T) {
	// 11 columns: cells at 11 and beyond are outside the sheet even when present.
	sheet := &workbook.Sheet{
		Name: "مسار التدريب",
		Rows: [][]string{
			row("skipped"),
			row("", "", "", "", "", "", "", "", "kpi", "تقرير", "مخرجات", "مؤشر", "p", "s"),
		},
		Columns: 11,
	}

	rows, err := LayoutFor(TrackSheetLayout).Rows(sheet)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	r := rows[0]
	require.Equal(t, 0, r.Index)
	require.Equal(t, "kpi", *r.Get(FieldKPI))
	require.Equal(t, "تقرير", *r.Get(FieldDeliverable))
	require.Equal(t, "مخرجات", *r.Get(FieldOutputs))
	require.Nil(t, r.Get(FieldIndicators))
	require.Nil(t, r.Get(FieldPenalty))
	require.Nil(t, r.Get(FieldScope))
}

func TestLayout_RejectsNarrowSheet(t *testing.T) {
	sheet := workbook.NewSheet("مسار الطباعة ", [][]string{row("a", "b", "c")}, 0)

	_, err := LayoutFor(TrackSheetLayout).Rows(sheet)
	require.True(t, errors.Is(err, ErrUnrecognizedShape))
	require.Contains(t, err.Error(), "track_sheet")
}

func TestLayout_ForwardFill(t *testing.T) {
	sheet := workbook.NewSheet("الخطة الرئيسية", [][]string{
		make([]string, 12),
		row("1", "إدارة المشروع", "", "القائد", "الحوكمة", "مدير", "سعيد", "1", "سارة"),
		row("2", "", "", "", "", "محلل", "nan", "1", "خالد"),
		row("3", "التدريب", "", "", "التطوير", "مدرب", "", "1", "نورة"),
	}, 12)

	rows, err := LayoutFor(MainPlanLayout).Rows(sheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	require.Equal(t, "إدارة المشروع", *rows[1].Get(FieldMainTrack))
	require.Equal(t, "القائد", *rows[1].Get(FieldTrackLead))
	require.Equal(t, "الحوكمة", *rows[1].Get(FieldSubTrack))
	require.Equal(t, "سعيد", *rows[1].Get(FieldDirectManager))
	// job title is not a hierarchy column
	require.Equal(t, "محلل", *rows[1].Get(FieldJobTitle))

	require.Equal(t, "التدريب", *rows[2].Get(FieldMainTrack))
	require.Equal(t, "القائد", *rows[2].Get(FieldTrackLead))
	require.Equal(t, "التطوير", *rows[2].Get(FieldSubTrack))
	require.Equal(t, "سعيد", *rows[2].Get(FieldDirectManager))
	require.Nil(t, rows[2].Get(FieldContractStatus))
}

func TestLayout_CamerasLastColumn(t *testing.T) {
	sheet := workbook.NewSheet("مسار كاميرات النوارية", [][]string{
		make([]string, 5),
		row("", "", "", "كاميرا", "kpi"),
	}, 5)

	rows, err := LayoutFor(CamerasLayout).Rows(sheet)
	require.NoError(t, err)
	require.Equal(t, "كاميرا", *rows[0].Get(FieldDeliverable))
	require.Equal(t, "kpi", *rows[0].Get(FieldKPI))
	require.Nil(t, rows[0].Get(FieldIndicators))
}

func TestLayout_Number(t *testing.T) {
	sheet := workbook.NewSheet("التوقيع حتى الان", [][]string{
		make([]string, 8),
		row("1", "سارة", "", "", "", "12000", "abc", ""),
	}, 8)

	rows, err := LayoutFor(ContractsLayout).Rows(sheet)
	require.NoError(t, err)

	v, bad := rows[0].Number(FieldMonthlySalary)
	require.False(t, bad)
	require.InDelta(t, 12000.0, *v, 0)

	v, bad = rows[0].Number(FieldMonths)
	require.True(t, bad)
	require.Nil(t, v)

	v, bad = rows[0].Number(FieldTotalValue)
	require.False(t, bad)
	require.Nil(t, v)
}
