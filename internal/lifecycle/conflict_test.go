package lifecycle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairgrid/fairgrid/internal/model"
)

type fakeSiblings struct {
	editions []model.Edition
	err      error
	excluded uint64
}

func (f *fakeSiblings) ListSiblings(ctx context.Context, eventID, excludeID uint64) ([]model.Edition, error) {
	f.excluded = excludeID
	if f.err != nil {
		return nil, f.err
	}
	var out []model.Edition
	for _, e := range f.editions {
		if e.ID != excludeID {
			out = append(out, e)
		}
	}
	return out, nil
}

func TestRangeConflicts(t *testing.T) {
	sibStart, sibEnd := day(2026, 9, 1), day(2026, 9, 4)

	cases := []struct {
		name       string
		start, end time.Time
		want       bool
	}{
		{"disjoint before", day(2026, 8, 1), day(2026, 8, 5), false},
		{"disjoint after", day(2026, 9, 10), day(2026, 9, 12), false},
		{"start inside sibling", day(2026, 9, 2), day(2026, 9, 10), true},
		{"end inside sibling", day(2026, 8, 28), day(2026, 9, 2), true},
		{"candidate contains sibling", day(2026, 8, 28), day(2026, 9, 10), true},
		{"candidate within sibling", day(2026, 9, 2), day(2026, 9, 3), true},
		{"touch at sibling end", day(2026, 9, 4), day(2026, 9, 8), true},
		{"touch at sibling start", day(2026, 8, 28), day(2026, 9, 1), true},
		{"identical range", day(2026, 9, 1), day(2026, 9, 4), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, RangeConflicts(tc.start, tc.end, sibStart, sibEnd))
		})
	}
}

func TestResolverHasConflict(t *testing.T) {
	siblings := &fakeSiblings{editions: []model.Edition{
		{ID: 1, StartsOn: dayPtr(2026, 3, 1), EndsOn: dayPtr(2026, 3, 4)},
		{ID: 2, StartsOn: dayPtr(2026, 9, 1), EndsOn: dayPtr(2026, 9, 4)},
	}}
	r := NewResolver(siblings)

	conflict, err := r.HasConflict(context.Background(), 7, day(2026, 9, 3), day(2026, 9, 8), 0)
	require.NoError(t, err)
	assert.True(t, conflict)

	conflict, err = r.HasConflict(context.Background(), 7, day(2026, 6, 1), day(2026, 6, 4), 0)
	require.NoError(t, err)
	assert.False(t, conflict)
}

func TestResolverExcludesTargetEdition(t *testing.T) {
	// An in-place update of edition 2 must not conflict with itself.
	siblings := &fakeSiblings{editions: []model.Edition{
		{ID: 2, StartsOn: dayPtr(2026, 9, 1), EndsOn: dayPtr(2026, 9, 4)},
	}}
	r := NewResolver(siblings)

	conflict, err := r.HasConflict(context.Background(), 7, day(2026, 9, 2), day(2026, 9, 5), 2)
	require.NoError(t, err)
	assert.False(t, conflict)
	assert.Equal(t, uint64(2), siblings.excluded)
}

func TestResolverSkipsOpenEndedSiblings(t *testing.T) {
	siblings := &fakeSiblings{editions: []model.Edition{
		{ID: 3, StartsOn: dayPtr(2026, 9, 1)}, // no end date
		{ID: 4},                               // no dates at all
	}}
	r := NewResolver(siblings)

	conflict, err := r.HasConflict(context.Background(), 7, day(2026, 9, 1), day(2026, 9, 4), 0)
	require.NoError(t, err)
	assert.False(t, conflict)
}

func TestResolverPropagatesListErrors(t *testing.T) {
	boom := errors.New("db down")
	r := NewResolver(&fakeSiblings{err: boom})

	_, err := r.HasConflict(context.Background(), 7, day(2026, 9, 1), day(2026, 9, 4), 0)
	assert.ErrorIs(t, err, boom)
}

func TestAssertMutable(t *testing.T) {
	now := day(2026, 6, 15)
	r := NewResolver(&fakeSiblings{})

	lapsed := &model.Edition{EndsOn: dayPtr(2026, 6, 14)}
	assert.ErrorIs(t, r.AssertMutable(lapsed, now), ErrLapsedEdition)

	// Ending today keeps the edition mutable through the whole day.
	boundary := &model.Edition{EndsOn: dayPtr(2026, 6, 15)}
	assert.NoError(t, r.AssertMutable(boundary, now))

	open := &model.Edition{}
	assert.NoError(t, r.AssertMutable(open, now))
}
