package lifecycle

import (
	"context"
	"errors"
	"time"

	"github.com/fairgrid/fairgrid/internal/model"
)

// ErrLapsedEdition is returned when a date mutation targets an edition
// whose end date lies strictly in the past.  Lapsed editions are history
// and their date ranges are read-only.
var ErrLapsedEdition = errors.New("edition has lapsed; dates are read-only")

// ErrDateConflict is returned when a candidate date range overlaps a
// sibling edition of the same event.
var ErrDateConflict = errors.New("date range conflicts with a sibling edition")

// RangeConflicts is the pure overlap predicate between a candidate range
// and one sibling range.  It flags a conflict when the candidate start or
// end falls within the sibling range, when the candidate fully contains
// the sibling, or when either bound exactly equals a sibling bound.
// Touching at an endpoint is a conflict: two editions may not share a day.
func RangeConflicts(candStart, candEnd, sibStart, sibEnd time.Time) bool {
	if candStart.Equal(sibStart) || candStart.Equal(sibEnd) ||
		candEnd.Equal(sibStart) || candEnd.Equal(sibEnd) {
		return true
	}
	if candStart.After(sibStart) && candStart.Before(sibEnd) {
		return true
	}
	if candEnd.After(sibStart) && candEnd.Before(sibEnd) {
		return true
	}
	// Candidate fully contains the sibling.
	if candStart.Before(sibStart) && candEnd.After(sibEnd) {
		return true
	}
	return false
}

// SiblingLister provides the sibling editions the resolver checks a
// candidate range against.
type SiblingLister interface {
	ListSiblings(ctx context.Context, eventID, excludeID uint64) ([]model.Edition, error)
}

// Resolver checks candidate date ranges against the sibling editions of
// an event.  It is consulted both by the validation pipeline and by the
// atomic writer (inside the transaction, so a range cannot slip in
// between validation and commit).
type Resolver struct {
	editions SiblingLister
}

// NewResolver constructs a Resolver over the given edition source.
func NewResolver(editions SiblingLister) *Resolver {
	return &Resolver{editions: editions}
}

// HasConflict reports whether the candidate range overlaps any sibling
// edition of the event.  excludeEditionID skips the edition being updated
// in place (pass 0 to check against all editions).  Siblings with a
// missing bound cannot conflict and are skipped.
func (r *Resolver) HasConflict(ctx context.Context, eventID uint64, candStart, candEnd time.Time, excludeEditionID uint64) (bool, error) {
	siblings, err := r.editions.ListSiblings(ctx, eventID, excludeEditionID)
	if err != nil {
		return false, err
	}
	for i := range siblings {
		sib := &siblings[i]
		if sib.StartsOn == nil || sib.EndsOn == nil {
			continue
		}
		if RangeConflicts(candStart, candEnd, *sib.StartsOn, *sib.EndsOn) {
			return true, nil
		}
	}
	return false, nil
}

// AssertMutable rejects date mutations on a lapsed edition regardless of
// conflict status.
func (r *Resolver) AssertMutable(edition *model.Edition, now time.Time) error {
	if edition.Lapsed(now) {
		return ErrLapsedEdition
	}
	return nil
}
