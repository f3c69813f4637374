// Package lifecycle implements the edition lifecycle manager: scenario
// classification, date conflict resolution, the atomic core write and the
// handoff to the post-commit enrichment pipeline.
package lifecycle

import (
	"time"

	"github.com/fairgrid/fairgrid/internal/model"
)

// Scenario is the mutually exclusive classification of an upsert request.
type Scenario int

const (
	// ScenarioCreate inserts a brand-new event with its first edition.
	ScenarioCreate Scenario = iota
	// ScenarioUpdate mutates the current (or explicitly referenced)
	// edition in place.
	ScenarioUpdate
	// ScenarioRehost replaces a lapsed current edition: a new edition is
	// inserted with number = previous + 1 and the event's current-edition
	// pointer is repointed to it.
	ScenarioRehost
	// ScenarioFutureEdition adds a forward-dated edition while the current
	// one is still active.  The current-edition pointer is NOT repointed.
	ScenarioFutureEdition
)

// String returns the scenario name used in logs, metrics and bus messages.
func (s Scenario) String() string {
	switch s {
	case ScenarioCreate:
		return "create"
	case ScenarioUpdate:
		return "update"
	case ScenarioRehost:
		return "rehost"
	case ScenarioFutureEdition:
		return "future_edition"
	}
	return "unknown"
}

// stillActive reports whether the current edition has not yet lapsed.
// Dates are day-granular: an edition whose end date equals today counts as
// still active.  Both the future-edition qualification and the rehost
// lapsed test go through this single predicate so the boundary-day
// semantics cannot drift between them.
func stillActive(current *model.Edition, now time.Time) bool {
	return !current.Lapsed(now)
}

// Classify decides which scenario applies to an upsert request.  The
// predicates run in a fixed order and the first match wins:
//
//  1. An explicit edition reference always means an in-place update.
//  2. No current edition means the event is being created.
//  3. Future-edition: the current edition is still active, both proposed
//     bounds are strictly in the future, and the proposed start is
//     strictly after the current edition's end.  The still-active check
//     is re-evaluated last to guard against a stale current edition read
//     between classification passes.
//  4. Rehost: the current edition has lapsed, the proposed dates are
//     strictly in the future, and the proposed start is strictly after
//     the current edition's end.
//  5. Everything else is a regular update of the current edition.
//
// Swapping steps 3 and 4 would misclassify editions whose current edition
// ends exactly today, so the order is load-bearing.
func Classify(editionRef *uint64, proposedStart, proposedEnd *time.Time, current *model.Edition, now time.Time) Scenario {
	if editionRef != nil {
		return ScenarioUpdate
	}
	if current == nil {
		return ScenarioCreate
	}
	if isFutureEdition(proposedStart, proposedEnd, current, now) {
		return ScenarioFutureEdition
	}
	if isRehost(proposedStart, proposedEnd, current, now) {
		return ScenarioRehost
	}
	return ScenarioUpdate
}

// isFutureEdition holds when next year's dates are being registered while
// the current edition is still running or upcoming.
func isFutureEdition(start, end *time.Time, current *model.Edition, now time.Time) bool {
	if !stillActive(current, now) {
		return false
	}
	if start == nil || end == nil || current.EndsOn == nil {
		return false
	}
	if !start.After(now) || !end.After(now) {
		return false
	}
	if !start.After(*current.EndsOn) {
		return false
	}
	// Re-check activity against the same clock reading; a current edition
	// loaded before a long validation pass may have lapsed in between.
	return stillActive(current, now)
}

// isRehost holds when a lapsed current edition is being replaced by one
// dated after it.  The proposed dates must themselves lie in the future:
// a past-dated proposal is a historical correction of the current
// edition, not a replacement, and falls through to a regular update.
func isRehost(start, end *time.Time, current *model.Edition, now time.Time) bool {
	if stillActive(current, now) {
		return false
	}
	if start == nil || current.EndsOn == nil {
		return false
	}
	if !start.After(now) {
		return false
	}
	if end != nil && !end.After(now) {
		return false
	}
	return start.After(*current.EndsOn)
}
