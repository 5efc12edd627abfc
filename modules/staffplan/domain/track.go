package domain

// Track is a canonical organizational unit. Key is the stable English slug
// and doubles as the display name; at most one Track exists per Key.
type Track struct {
	ID        string `validate:"required"`
	Key       string `validate:"required"`
	NameAr    string `validate:"required"`
	Color     string `validate:"required,hexcolor"`
	SortOrder int    `validate:"gte=0"`
	IsActive  bool
}
