package workbook

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestNewSheet_SplitsHeaderAndWidth(t *testing.T) {
	s := NewSheet("plan", [][]string{
		{"#", "track", "name"},
		{"1", "", "A"},
		{"2", "x", "B", "", "extra"},
	}, 0)

	require.Equal(t, []string{"#", "track", "name"}, s.Header)
	require.Len(t, s.Rows, 2)
	require.Equal(t, 5, s.Columns)
	require.Equal(t, "A", s.Cell(0, 2))
	require.Equal(t, "", s.Cell(0, 4), "cells past the row end read as blank")
	require.Equal(t, "", s.Cell(9, 0))
}

func TestNewSheet_DeclaredWidthWins(t *testing.T) {
	s := NewSheet("plan", [][]string{{"a"}, {"b"}}, 14)
	require.Equal(t, 14, s.Columns)
}

func TestMemory_SheetLookup(t *testing.T) {
	wb := NewMemory(
		NewSheet("مسار الطباعة ", [][]string{{"h"}}, 0),
		NewSheet("contracts", [][]string{{"h"}}, 0),
	)

	require.Equal(t, []string{"مسار الطباعة ", "contracts"}, wb.SheetNames())

	s, err := wb.Sheet("مسار الطباعة")
	require.NoError(t, err)
	require.Equal(t, "مسار الطباعة ", s.Name)

	_, err = wb.Sheet("missing")
	require.True(t, errors.Is(err, ErrSheetNotFound))
}

func TestOpenExcel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.xlsx")

	f := excelize.NewFile()
	_, err := f.NewSheet("التوقيع حتى الان")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("التوقيع حتى الان", "A1", &[]any{"م", "الاسم", "المنصب", "المسار", "نوع العقد", "شهري", "الشهور", "الإجمالي"}))
	require.NoError(t, f.SetSheetRow("التوقيع حتى الان", "A2", &[]any{1, "أحمد", "محلل", "التدريب", "دوام كامل", 12000.5, 12, 144006}))
	require.NoError(t, f.SetSheetRow("التوقيع حتى الان", "A3", &[]any{2, "سارة"}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	wb, err := OpenExcel(path)
	require.NoError(t, err)
	require.Contains(t, wb.SheetNames(), "التوقيع حتى الان")

	s, err := wb.Sheet("التوقيع حتى الان")
	require.NoError(t, err)
	require.Equal(t, 8, s.Columns)
	require.Len(t, s.Rows, 2)
	require.Equal(t, "أحمد", s.Cell(0, 1))
	require.Equal(t, "12000.5", s.Cell(0, 5))
	require.Equal(t, "144006", s.Cell(0, 7))
	require.Equal(t, "", s.Cell(1, 5))
}

func TestOpenCSVDir(t *testing.T) {
	dir := t.TempDir()
	bom := "\xEF\xBB\xBF"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "التكاليف المالية للموارد البشري.csv"),
		[]byte(bom+"#,المسار,البنود\n1,التدريب,مدرب\n2,,مساعد\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	wb, err := OpenCSVDir(dir)
	require.NoError(t, err)
	require.Equal(t, []string{"التكاليف المالية للموارد البشري"}, wb.SheetNames())

	s, err := wb.Sheet("التكاليف المالية للموارد البشري")
	require.NoError(t, err)
	require.Equal(t, "#", s.Header[0], "BOM must be stripped from the first header cell")
	require.Equal(t, 3, s.Columns)
	require.Equal(t, "", s.Cell(1, 1))
}
