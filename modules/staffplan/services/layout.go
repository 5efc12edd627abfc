package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/nusuk-platform/staffplan/pkg/workbook"
)

var ErrUnrecognizedShape = errors.New("unrecognized sheet shape")

// LayoutKind enumerates the positional sheet layouts of the workbook.
type LayoutKind int

const (
	MainPlanLayout LayoutKind = iota
	TrackSheetLayout
	CamerasLayout
	ContractsLayout
	FinancialCostsLayout
)

func (k LayoutKind) String() string {
	switch k {
	case MainPlanLayout:
		return "main_plan"
	case TrackSheetLayout:
		return "track_sheet"
	case CamerasLayout:
		return "cameras"
	case ContractsLayout:
		return "contracts"
	case FinancialCostsLayout:
		return "financial_costs"
	default:
		return fmt.Sprintf("layout(%d)", int(k))
	}
}

type Field string

const (
	FieldMainTrack      Field = "main_track"
	FieldTrackLead      Field = "track_lead"
	FieldSubTrack       Field = "sub_track"
	FieldJobTitle       Field = "job_title"
	FieldDirectManager  Field = "direct_manager"
	FieldEmployee       Field = "employee"
	FieldContractStatus Field = "contract_status"
	FieldJobDescription Field = "job_description"
	FieldKPI            Field = "kpi"
	FieldDeliverable    Field = "deliverable"
	FieldOutputs        Field = "outputs"
	FieldIndicators     Field = "indicators"
	FieldPenalty        Field = "penalty"
	FieldScope          Field = "scope"
	FieldName           Field = "name"
	FieldPosition       Field = "position"
	FieldTrack          Field = "track"
	FieldContractType   Field = "contract_type"
	FieldMonthlySalary  Field = "monthly_salary"
	FieldMonths         Field = "months"
	FieldTotalValue     Field = "total_value"
	FieldItemDetail     Field = "item_detail"
	FieldTasks          Field = "tasks"
	FieldCostType       Field = "cost_type"
	FieldQuantity       Field = "quantity"
)

// LastColumn addresses the sheet's last column whatever its width.
const LastColumn = -1

// Layout is the extraction rule set of one sheet shape. Columns are
// zero-based; SkipRows data rows are dropped after the header.
type Layout struct {
	Kind        LayoutKind
	MinColumns  int
	SkipRows    int
	Columns     map[Field]int
	ForwardFill []Field
}

var layouts = map[LayoutKind]Layout{
	MainPlanLayout: {
		Kind:       MainPlanLayout,
		MinColumns: 12,
		Columns: map[Field]int{
			FieldMainTrack:      1,
			FieldTrackLead:      3,
			FieldSubTrack:       4,
			FieldJobTitle:       5,
			FieldDirectManager:  6,
			FieldEmployee:       8,
			FieldContractStatus: 9,
			FieldJobDescription: 10,
			FieldKPI:            11,
		},
		ForwardFill: []Field{FieldMainTrack, FieldTrackLead, FieldSubTrack, FieldDirectManager},
	},
	TrackSheetLayout: {
		Kind:       TrackSheetLayout,
		MinColumns: 9,
		SkipRows:   1,
		Columns: map[Field]int{
			FieldKPI:         8,
			FieldDeliverable: 9,
			FieldOutputs:     10,
			FieldIndicators:  11,
			FieldPenalty:     12,
			FieldScope:       13,
		},
	},
	CamerasLayout: {
		Kind:       CamerasLayout,
		MinColumns: 4,
		Columns: map[Field]int{
			FieldDeliverable: 3,
			FieldIndicators:  5,
			FieldKPI:         LastColumn,
		},
	},
	ContractsLayout: {
		Kind:       ContractsLayout,
		MinColumns: 8,
		Columns: map[Field]int{
			FieldName:          1,
			FieldPosition:      2,
			FieldTrack:         3,
			FieldContractType:  4,
			FieldMonthlySalary: 5,
			FieldMonths:        6,
			FieldTotalValue:    7,
		},
	},
	FinancialCostsLayout: {
		Kind:       FinancialCostsLayout,
		MinColumns: 7,
		Columns: map[Field]int{
			FieldTrack:      1,
			FieldItemDetail: 2,
			FieldTasks:      3,
			FieldCostType:   4,
			FieldMonths:     5,
			FieldQuantity:   6,
		},
		ForwardFill: []Field{FieldTrack},
	},
}

func LayoutFor(kind LayoutKind) Layout {
	return layouts[kind]
}

// Check rejects sheets narrower than the layout.
func (l Layout) Check(sheet *workbook.Sheet) error {
	if sheet.Columns < l.MinColumns {
		return fmt.Errorf("%w: sheet %q has %d columns, %s layout needs %d",
			ErrUnrecognizedShape, sheet.Name, sheet.Columns, l.Kind, l.MinColumns)
	}
	return nil
}

// Row is one extracted data row. Index counts data rows from zero after the
// skipped ones, including rows later ignored by the caller.
type Row struct {
	Index  int
	fields map[Field]*string
}

func (r Row) Get(f Field) *string {
	return r.fields[f]
}

// Number parses the field as a decimal number. malformed reports a present
// cell that is not a number.
func (r Row) Number(f Field) (value *float64, malformed bool) {
	return ParseNumber(r.fields[f])
}

// Rows extracts every data row of sheet. A field is present only when its
// column index is below the sheet's column count; forward-filled fields take
// the nearest preceding non-blank value.
func (l Layout) Rows(sheet *workbook.Sheet) ([]Row, error) {
	if err := l.Check(sheet); err != nil {
		return nil, err
	}

	columns := make(map[Field]int, len(l.Columns))
	for f, idx := range l.Columns {
		if idx == LastColumn {
			idx = sheet.Columns - 1
		}
		if idx < sheet.Columns {
			columns[f] = idx
		}
	}

	last := make(map[Field]*string, len(l.ForwardFill))
	var out []Row
	for i := l.SkipRows; i < len(sheet.Rows); i++ {
		row := Row{Index: i - l.SkipRows, fields: make(map[Field]*string, len(columns))}
		for f, idx := range columns {
			row.fields[f] = Clean(sheet.Cell(i, idx))
		}
		for _, f := range l.ForwardFill {
			if _, ok := columns[f]; !ok {
				continue
			}
			if row.fields[f] == nil {
				row.fields[f] = last[f]
			} else {
				last[f] = row.fields[f]
			}
		}
		out = append(out, row)
	}
	return out, nil
}

// Clean trims a cell and maps blank and textual null markers to nil.
func Clean(s string) *string {
	v := strings.TrimSpace(s)
	switch v {
	case "", "nan", "NaN", "None":
		return nil
	}
	return &v
}

func ParseNumber(s *string) (value *float64, malformed bool) {
	if s == nil {
		return nil, false
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return nil, true
	}
	f := d.InexactFloat64()
	return &f, false
}
