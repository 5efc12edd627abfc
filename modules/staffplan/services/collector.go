package services

// CollectedItem is a distinct text with its first-seen position.
type CollectedItem struct {
	Text      string
	SortOrder int
}

// Collector deduplicates cleaned free text, keeping first-seen order.
type Collector struct {
	seen  map[string]struct{}
	items []CollectedItem
}

func NewCollector() *Collector {
	return &Collector{seen: map[string]struct{}{}}
}

// Add records value unless it is nil or already seen. It reports whether the
// value was new.
func (c *Collector) Add(value *string) bool {
	if value == nil {
		return false
	}
	if _, ok := c.seen[*value]; ok {
		return false
	}
	c.seen[*value] = struct{}{}
	c.items = append(c.items, CollectedItem{Text: *value, SortOrder: len(c.items)})
	return true
}

func (c *Collector) Items() []CollectedItem {
	return append([]CollectedItem(nil), c.items...)
}

func (c *Collector) Len() int {
	return len(c.items)
}
