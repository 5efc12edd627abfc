package domain

// ReferenceKind selects the table a ReferenceItem belongs to.
type ReferenceKind string

const (
	ReferenceKPI     ReferenceKind = "kpi"
	ReferencePenalty ReferenceKind = "penalty"
	ReferenceScope   ReferenceKind = "scope"
)

func (k ReferenceKind) Table() string {
	switch k {
	case ReferenceKPI:
		return TableTrackKPIs
	case ReferencePenalty:
		return TablePenalties
	case ReferenceScope:
		return TableScopes
	default:
		return ""
	}
}

// ReferenceItem is a track-scoped free-text entry (KPI, penalty or scope).
// Within one sheet pass each distinct text yields exactly one item.
type ReferenceItem struct {
	ID        string        `validate:"required"`
	Kind      ReferenceKind `validate:"oneof=kpi penalty scope"`
	TrackID   string        `validate:"required"`
	Text      string        `validate:"required"`
	SortOrder int           `validate:"gte=0"`
}
