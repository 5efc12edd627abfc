package domain

import "encoding/json"

type RecordStatus string

const (
	RecordStatusActive RecordStatus = "active"
	RecordStatusDraft  RecordStatus = "draft"
)

const RecordPriorityMedium = "medium"

// Progress is a two-point scale: signed contracts are complete, everything else is not started.
func (s RecordStatus) Progress() float64 {
	if s == RecordStatusActive {
		return 100
	}
	return 0
}

// Record tracks one employee's progress inside a track. The originating
// employee is referenced only through ExtraFields.
type Record struct {
	ID          string          `validate:"required"`
	TrackID     string          `validate:"required"`
	Title       string          `validate:"required"`
	TitleAr     string          `validate:"required"`
	Status      RecordStatus    `validate:"oneof=active draft"`
	Priority    string          `validate:"required"`
	Owner       string          `validate:"required"`
	Progress    float64         `validate:"gte=0,lte=100"`
	ExtraFields json.RawMessage `validate:"required"`
	Version     int             `validate:"gte=1"`
	CreatedByID string          `validate:"required"`
}

// RecordExtraFields is the payload stored in Record.ExtraFields.
type RecordExtraFields struct {
	EmployeeID     string  `json:"employeeId"`
	Position       *string `json:"position"`
	SubTrack       *string `json:"subTrack"`
	Manager        *string `json:"manager"`
	TrackLead      *string `json:"trackLead"`
	ContractStatus *string `json:"contractStatus"`
}
