package domain

import "context"

const (
	TableTracks         = "tracks"
	TableEmployees      = "employees"
	TableRecords        = "records"
	TableDeliverables   = "deliverables"
	TableTrackKPIs      = "track_kpis"
	TablePenalties      = "penalties"
	TableScopes         = "scopes"
	TableContracts      = "contracts"
	TableFinancialCosts = "financial_costs"
)

// SummaryTables is the order tables are reported in the run summary.
var SummaryTables = []string{
	TableTracks,
	TableEmployees,
	TableContracts,
	TableDeliverables,
	TableTrackKPIs,
	TablePenalties,
	TableScopes,
	TableFinancialCosts,
	TableRecords,
}

type TableCount struct {
	Table string `json:"table"`
	Rows  int64  `json:"rows"`
}

// Repository is the store the import writes to. It only inserts rows and
// reads existing tracks, the administrator actor and employees; it never
// updates or deletes. Implementations run inside the transaction carried by
// ctx when there is one.
type Repository interface {
	ListTracks(ctx context.Context) ([]Track, error)
	// FindAdminID returns nil when the store has no administrator.
	FindAdminID(ctx context.Context) (*string, error)
	// FindEmployeeIDByName matches FullNameAr exactly; the earliest created wins. nil when none.
	FindEmployeeIDByName(ctx context.Context, fullNameAr string) (*string, error)

	InsertTrack(ctx context.Context, t Track) error
	InsertEmployee(ctx context.Context, e Employee) error
	InsertRecord(ctx context.Context, r Record) error
	InsertDeliverable(ctx context.Context, d Deliverable) error
	InsertReference(ctx context.Context, item ReferenceItem) error
	InsertContract(ctx context.Context, c Contract) error
	InsertFinancialCost(ctx context.Context, c FinancialCost) error

	CountRows(ctx context.Context) ([]TableCount, error)
}
