package maps

// ResultSet accumulates one category's records in discovery order,
// dropping duplicates and refusing inserts past the cap, so earlier
// cards always win.
type ResultSet struct {
	limit int
	seen  map[string]struct{}
	items []Establishment
}

// NewResultSet creates an empty set capped at limit records.
func NewResultSet(limit int) *ResultSet {
	return &ResultSet{
		limit: limit,
		seen:  map[string]struct{}{},
	}
}

// Add inserts the record unless the set is full or the record's dedup key
// was already seen. Reports whether the record was kept.
func (s *ResultSet) Add(e Establishment) bool {
	if s.Full() {
		return false
	}
	// Degenerate cards carry no identity to collapse on; they are kept
	// rather than silently dropped.
	if key := e.DedupKey(); key != "" {
		if _, dup := s.seen[key]; dup {
			return false
		}
		s.seen[key] = struct{}{}
	}
	s.items = append(s.items, e)
	return true
}

// Full reports whether the cap has been reached.
func (s *ResultSet) Full() bool {
	return len(s.items) >= s.limit
}

// Len returns the number of records kept so far.
func (s *ResultSet) Len() int {
	return len(s.items)
}

// Items returns the kept records in discovery order.
func (s *ResultSet) Items() []Establishment {
	return s.items
}
