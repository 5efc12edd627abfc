package domain

// Deliverable is a track-scoped work output. One is created per non-empty
// name cell, in row order; names are not deduplicated.
type Deliverable struct {
	ID                 string `validate:"required"`
	TrackID            string `validate:"required"`
	Name               string `validate:"required"`
	NameAr             string `validate:"required"`
	Outputs            *string
	DeliveryIndicators *string
	SortOrder          int `validate:"gte=0"`
}
