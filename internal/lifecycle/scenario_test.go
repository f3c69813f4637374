package lifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/fairgrid/fairgrid/internal/model"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dayPtr(y int, m time.Month, d int) *time.Time {
	t := day(y, m, d)
	return &t
}

func editionWithDates(start, end *time.Time) *model.Edition {
	return &model.Edition{ID: 10, EventID: 1, EditionNumber: 3, StartsOn: start, EndsOn: end}
}

func TestClassifyCreate(t *testing.T) {
	now := day(2026, 6, 15)
	got := Classify(nil, dayPtr(2026, 9, 1), dayPtr(2026, 9, 4), nil, now)
	assert.Equal(t, ScenarioCreate, got)
}

func TestClassifyExplicitEditionRefAlwaysUpdates(t *testing.T) {
	now := day(2026, 6, 15)
	ref := uint64(42)
	// Even with a lapsed current edition and forward dates, an explicit
	// reference pins the request to an in-place update.
	current := editionWithDates(dayPtr(2025, 9, 1), dayPtr(2025, 9, 4))
	got := Classify(&ref, dayPtr(2026, 9, 1), dayPtr(2026, 9, 4), current, now)
	assert.Equal(t, ScenarioUpdate, got)
}

func TestClassifyRegularUpdate(t *testing.T) {
	now := day(2026, 6, 15)
	current := editionWithDates(dayPtr(2026, 9, 1), dayPtr(2026, 9, 4))

	// Same dates as the current edition: nothing to rehost or add.
	got := Classify(nil, dayPtr(2026, 9, 1), dayPtr(2026, 9, 4), current, now)
	assert.Equal(t, ScenarioUpdate, got)

	// No dates at all is a content-only update.
	got = Classify(nil, nil, nil, current, now)
	assert.Equal(t, ScenarioUpdate, got)
}

func TestClassifyRehost(t *testing.T) {
	now := day(2026, 6, 15)
	// Current edition ended last autumn; next year's dates replace it.
	current := editionWithDates(dayPtr(2025, 9, 1), dayPtr(2025, 9, 4))
	got := Classify(nil, dayPtr(2026, 9, 1), dayPtr(2026, 9, 4), current, now)
	assert.Equal(t, ScenarioRehost, got)
}

func TestClassifyPastDatedProposalNeverRehosts(t *testing.T) {
	now := day(2024, 6, 1)
	// The current edition lapsed months ago and the proposal is dated
	// after it, but the proposed dates are themselves in the past.  That
	// is a historical correction of the current edition, not a rehost:
	// repointing the event backwards in time would be nonsense.
	current := editionWithDates(dayPtr(2024, 1, 1), dayPtr(2024, 1, 5))
	got := Classify(nil, dayPtr(2024, 1, 10), dayPtr(2024, 1, 12), current, now)
	assert.Equal(t, ScenarioUpdate, got)

	// A future start with a past end is just as invalid a replacement.
	got = Classify(nil, dayPtr(2024, 7, 1), dayPtr(2024, 1, 12), current, now)
	assert.Equal(t, ScenarioUpdate, got)
}

func TestClassifyFutureEdition(t *testing.T) {
	now := day(2026, 6, 15)
	// Current edition runs this September; next year's dates arrive early.
	current := editionWithDates(dayPtr(2026, 9, 1), dayPtr(2026, 9, 4))
	got := Classify(nil, dayPtr(2027, 9, 1), dayPtr(2027, 9, 4), current, now)
	assert.Equal(t, ScenarioFutureEdition, got)
}

func TestClassifyBoundaryDayIsStillActive(t *testing.T) {
	// The current edition ends exactly today.  Day-granular semantics keep
	// it active through the whole day, so forward dates make a future
	// edition, not a rehost.
	now := day(2026, 6, 15)
	current := editionWithDates(dayPtr(2026, 6, 12), dayPtr(2026, 6, 15))
	got := Classify(nil, dayPtr(2027, 6, 12), dayPtr(2027, 6, 15), current, now)
	assert.Equal(t, ScenarioFutureEdition, got)

	// One day later the same edition has lapsed and the same request
	// becomes a rehost.
	got = Classify(nil, dayPtr(2027, 6, 12), dayPtr(2027, 6, 15), current, day(2026, 6, 16))
	assert.Equal(t, ScenarioRehost, got)
}

func TestClassifyFutureEditionRequiresGapAfterCurrent(t *testing.T) {
	now := day(2026, 6, 15)
	current := editionWithDates(dayPtr(2026, 9, 1), dayPtr(2026, 9, 4))
	// Proposed start equals the current end: not strictly after, so the
	// request falls through to a regular update (the conflict resolver
	// rejects it later).
	got := Classify(nil, dayPtr(2026, 9, 4), dayPtr(2026, 9, 8), current, now)
	assert.Equal(t, ScenarioUpdate, got)
}

func TestClassifyPartialDatesNeverAddEditions(t *testing.T) {
	now := day(2026, 6, 15)
	current := editionWithDates(dayPtr(2026, 9, 1), dayPtr(2026, 9, 4))
	// Only a start date: adding an edition needs both bounds.
	got := Classify(nil, dayPtr(2027, 9, 1), nil, current, now)
	assert.Equal(t, ScenarioUpdate, got)
}

func TestClassifyIsDeterministic(t *testing.T) {
	now := day(2026, 6, 15)
	current := editionWithDates(dayPtr(2025, 9, 1), dayPtr(2025, 9, 4))
	first := Classify(nil, dayPtr(2026, 9, 1), dayPtr(2026, 9, 4), current, now)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Classify(nil, dayPtr(2026, 9, 1), dayPtr(2026, 9, 4), current, now))
	}
}

func TestScenarioString(t *testing.T) {
	assert.Equal(t, "create", ScenarioCreate.String())
	assert.Equal(t, "update", ScenarioUpdate.String())
	assert.Equal(t, "rehost", ScenarioRehost.String())
	assert.Equal(t, "future_edition", ScenarioFutureEdition.String())
}
