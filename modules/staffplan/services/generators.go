package services

import (
	"encoding/json"
	"fmt"

	"github.com/nusuk-platform/staffplan/modules/staffplan/domain"
	"github.com/nusuk-platform/staffplan/pkg/ids"
)

// DeriveStatus maps a contract status to a record status: only the signed
// phrase counts as active.
func DeriveStatus(contractStatus *string, signedPhrase string) domain.RecordStatus {
	if contractStatus != nil && *contractStatus == signedPhrase {
		return domain.RecordStatusActive
	}
	return domain.RecordStatusDraft
}

// IsEmployeeName reports whether a cleaned name cell denotes a real person.
func IsEmployeeName(name *string, sentinel string) bool {
	return name != nil && *name != sentinel
}

type generator struct {
	ids          ids.Generator
	signedPhrase string
}

// employee builds an Employee from a main-plan row whose name passed IsEmployeeName.
func (g generator) employee(row Row, trackID *string) domain.Employee {
	name := *row.Get(FieldEmployee)
	return domain.Employee{
		ID:             g.ids.New(),
		TrackID:        trackID,
		FullName:       name,
		FullNameAr:     name,
		PositionAr:     row.Get(FieldJobTitle),
		SubTrack:       row.Get(FieldSubTrack),
		DirectManager:  row.Get(FieldDirectManager),
		ContractStatus: row.Get(FieldContractStatus),
		JobDescription: row.Get(FieldJobDescription),
		KPIText:        row.Get(FieldKPI),
	}
}

// record derives the progress record of an employee. It needs a resolved
// track and an administrator to attribute the record to.
func (g generator) record(e domain.Employee, trackLead *string, trackID, adminID string) (domain.Record, error) {
	position := e.FullNameAr
	if e.PositionAr != nil {
		position = *e.PositionAr
	}
	status := DeriveStatus(e.ContractStatus, g.signedPhrase)
	extra, err := json.Marshal(domain.RecordExtraFields{
		EmployeeID:     e.ID,
		Position:       e.PositionAr,
		SubTrack:       e.SubTrack,
		Manager:        e.DirectManager,
		TrackLead:      trackLead,
		ContractStatus: e.ContractStatus,
	})
	if err != nil {
		return domain.Record{}, fmt.Errorf("encode record extra fields: %w", err)
	}
	return domain.Record{
		ID:          g.ids.New(),
		TrackID:     trackID,
		Title:       position,
		TitleAr:     e.FullNameAr + " - " + position,
		Status:      status,
		Priority:    domain.RecordPriorityMedium,
		Owner:       e.FullNameAr,
		Progress:    status.Progress(),
		ExtraFields: extra,
		Version:     1,
		CreatedByID: adminID,
	}, nil
}

func (g generator) deliverable(trackID, name string, outputs, indicators *string, sortOrder int) domain.Deliverable {
	return domain.Deliverable{
		ID:                 g.ids.New(),
		TrackID:            trackID,
		Name:               name,
		NameAr:             name,
		Outputs:            outputs,
		DeliveryIndicators: indicators,
		SortOrder:          sortOrder,
	}
}

func (g generator) references(kind domain.ReferenceKind, trackID string, c *Collector) []domain.ReferenceItem {
	items := c.Items()
	out := make([]domain.ReferenceItem, 0, len(items))
	for _, it := range items {
		out = append(out, domain.ReferenceItem{
			ID:        g.ids.New(),
			Kind:      kind,
			TrackID:   trackID,
			Text:      it.Text,
			SortOrder: it.SortOrder,
		})
	}
	return out
}

// contract builds a Contract from a row with a non-empty name. Numeric cells
// that do not parse are left nil and counted in malformed.
func (g generator) contract(row Row, employeeID *string) (c domain.Contract, malformed int) {
	c = domain.Contract{
		ID:           g.ids.New(),
		EmployeeID:   employeeID,
		EmployeeName: *row.Get(FieldName),
		Position:     row.Get(FieldPosition),
		ContractType: row.Get(FieldContractType),
	}
	if track := row.Get(FieldTrack); track != nil {
		c.TrackName = *track
	}
	for field, dst := range map[Field]**float64{
		FieldMonthlySalary: &c.MonthlySalary,
		FieldMonths:        &c.Months,
		FieldTotalValue:    &c.TotalValue,
	} {
		v, bad := row.Number(field)
		*dst = v
		if bad {
			malformed++
		}
	}
	return c, malformed
}

func (g generator) financialCost(row Row) (c domain.FinancialCost, malformed int) {
	c = domain.FinancialCost{
		ID:         g.ids.New(),
		ItemDetail: *row.Get(FieldItemDetail),
		Tasks:      row.Get(FieldTasks),
		Type:       row.Get(FieldCostType),
	}
	if track := row.Get(FieldTrack); track != nil {
		c.TrackName = *track
	}
	for field, dst := range map[Field]**float64{
		FieldMonths:   &c.Months,
		FieldQuantity: &c.Quantity,
	} {
		v, bad := row.Number(field)
		*dst = v
		if bad {
			malformed++
		}
	}
	return c, malformed
}
