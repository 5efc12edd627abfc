package domain

// Employee is one staffing-plan entry. Employees are append-only: the import
// never deduplicates them, so two rows with the same name yield two Employees.
type Employee struct {
	ID             string  `validate:"required"`
	TrackID        *string
	FullName       string  `validate:"required"`
	FullNameAr     string  `validate:"required"`
	PositionAr     *string
	SubTrack       *string
	DirectManager  *string
	ContractStatus *string
	JobDescription *string
	KPIText        *string
}
