package model

// StatBreakdown is one count split into total/international/domestic.
// Pointer fields distinguish "not supplied" from an explicit zero so that
// a partial statistics update only touches the figures that were sent.
type StatBreakdown struct {
	Total         *int64 `json:"total,omitempty"`
	International *int64 `json:"international,omitempty"`
	Domestic      *int64 `json:"domestic,omitempty"`
}

// Statistics is the nested aggregate stored as a single serialized blob in
// the "stats" attribute of an edition.  The three Total figures are also
// mirrored onto the edition row for fast querying.
type Statistics struct {
	Exhibitors StatBreakdown `json:"exhibitors"`
	Visitors   StatBreakdown `json:"visitors"`
	Area       StatBreakdown `json:"area"`
}

// Merge applies the figures present in other on top of s, leaving absent
// figures untouched.  It returns true when at least one figure changed.
func (s *Statistics) Merge(other Statistics) bool {
	changed := false
	changed = mergeBreakdown(&s.Exhibitors, other.Exhibitors) || changed
	changed = mergeBreakdown(&s.Visitors, other.Visitors) || changed
	changed = mergeBreakdown(&s.Area, other.Area) || changed
	return changed
}

func mergeBreakdown(dst *StatBreakdown, src StatBreakdown) bool {
	changed := false
	if src.Total != nil {
		dst.Total = src.Total
		changed = true
	}
	if src.International != nil {
		dst.International = src.International
		changed = true
	}
	if src.Domestic != nil {
		dst.Domestic = src.Domestic
		changed = true
	}
	return changed
}
