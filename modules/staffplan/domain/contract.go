package domain

// Contract is a staffing contract. TrackName is free text copied from the
// sheet, not a Track reference. Numeric fields are nil when the cell is blank
// or not a number.
type Contract struct {
	ID            string `validate:"required"`
	EmployeeID    *string
	EmployeeName  string `validate:"required"`
	Position      *string
	TrackName     string
	ContractType  *string
	MonthlySalary *float64
	Months        *float64
	TotalValue    *float64
}

// FinancialCost is one HR expenditure line. Its track is descriptive text.
type FinancialCost struct {
	ID         string `validate:"required"`
	TrackName  string
	ItemDetail string `validate:"required"`
	Tasks      *string
	Type       *string
	Months     *float64
	Quantity   *float64
}
