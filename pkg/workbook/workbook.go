// Package workbook exposes spreadsheet workbooks as named sheets of raw text
// cells. Readers load every sheet eagerly; the result is immutable.
package workbook

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var ErrSheetNotFound = errors.New("sheet not found")

type Workbook interface {
	SheetNames() []string
	// Sheet returns the named sheet or an error wrapping ErrSheetNotFound.
	Sheet(name string) (*Sheet, error)
}

// Sheet holds one worksheet. The first row of the source is the header; Rows
// are the data rows below it, in sheet order. Rows may be shorter than
// Columns: trailing blank cells are not materialized.
type Sheet struct {
	Name    string
	Header  []string
	Rows    [][]string
	Columns int
}

// NewSheet splits raw rows into header and data rows. The column count is the
// larger of declaredColumns and the widest row.
func NewSheet(name string, raw [][]string, declaredColumns int) *Sheet {
	s := &Sheet{Name: name, Columns: declaredColumns}
	for _, r := range raw {
		if len(r) > s.Columns {
			s.Columns = len(r)
		}
	}
	if len(raw) > 0 {
		s.Header = raw[0]
		s.Rows = raw[1:]
	}
	return s
}

// Cell returns the raw value at (row, col) of the data rows, or "" when the
// position lies outside the materialized cells.
func (s *Sheet) Cell(row, col int) string {
	if row < 0 || row >= len(s.Rows) || col < 0 {
		return ""
	}
	r := s.Rows[row]
	if col >= len(r) {
		return ""
	}
	return r[col]
}

// Memory is an in-memory Workbook; every reader in this package produces one.
type Memory struct {
	names  []string
	sheets map[string]*Sheet
}

func NewMemory(sheets ...*Sheet) *Memory {
	m := &Memory{sheets: make(map[string]*Sheet, len(sheets))}
	for _, s := range sheets {
		if _, dup := m.sheets[s.Name]; !dup {
			m.names = append(m.names, s.Name)
		}
		m.sheets[s.Name] = s
	}
	return m
}

func (m *Memory) SheetNames() []string {
	out := make([]string, len(m.names))
	copy(out, m.names)
	return out
}

// Sheet matches name exactly first, then by trimmed NFC form, so titles
// saved with a trailing space or a different Unicode composition still match.
func (m *Memory) Sheet(name string) (*Sheet, error) {
	if s, ok := m.sheets[name]; ok {
		return s, nil
	}
	want := canonicalName(name)
	for _, n := range m.names {
		if canonicalName(n) == want {
			return m.sheets[n], nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrSheetNotFound, name)
}

func canonicalName(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}
