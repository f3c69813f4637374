package lifecycle

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/fairgrid/fairgrid/internal/model"
	"github.com/fairgrid/fairgrid/internal/queue"
	"github.com/fairgrid/fairgrid/internal/repository"
	"github.com/fairgrid/fairgrid/internal/validation"
)

type fakeEnqueuer struct {
	err  error
	jobs []queue.EnrichmentJob
}

func (f *fakeEnqueuer) EnqueueEnrichment(ctx context.Context, job queue.EnrichmentJob) error {
	if f.err != nil {
		return f.err
	}
	f.jobs = append(f.jobs, job)
	return nil
}

type fakeRunner struct {
	mu   sync.Mutex
	done chan struct{}
	jobs []queue.EnrichmentJob
}

func (f *fakeRunner) Run(ctx context.Context, job queue.EnrichmentJob) {
	f.mu.Lock()
	f.jobs = append(f.jobs, job)
	f.mu.Unlock()
	close(f.done)
}

func TestHandOffPrefersBroker(t *testing.T) {
	enq := &fakeEnqueuer{}
	runner := &fakeRunner{done: make(chan struct{})}
	m := &Manager{Jobs: enq, Fallback: runner}

	m.handOff(queue.EnrichmentJob{JobID: "j-1"})

	assert.Len(t, enq.jobs, 1)
	select {
	case <-runner.done:
		t.Fatal("fallback must not run when the broker accepted the job")
	case <-time.After(20 * time.Millisecond):
	}
}

func TestHandOffFallsBackWhenBrokerFails(t *testing.T) {
	enq := &fakeEnqueuer{err: errors.New("broker down")}
	runner := &fakeRunner{done: make(chan struct{})}
	m := &Manager{Jobs: enq, Fallback: runner}

	m.handOff(queue.EnrichmentJob{JobID: "j-2"})

	select {
	case <-runner.done:
	case <-time.After(time.Second):
		t.Fatal("fallback runner was not invoked")
	}
	runner.mu.Lock()
	defer runner.mu.Unlock()
	assert.Equal(t, "j-2", runner.jobs[0].JobID)
}

func TestHandOffWithoutBrokerRunsInProcess(t *testing.T) {
	runner := &fakeRunner{done: make(chan struct{})}
	m := &Manager{Fallback: runner}

	m.handOff(queue.EnrichmentJob{JobID: "j-3"})

	select {
	case <-runner.done:
	case <-time.After(time.Second):
		t.Fatal("fallback runner was not invoked")
	}
}

func TestEnforceDatesStartOnlyRejectedOnLapsedEdition(t *testing.T) {
	m := &Manager{Resolver: NewResolver(&fakeSiblings{})}
	now := day(2026, 6, 15)
	target := &model.Edition{ID: 10, EventID: 100, StartsOn: dayPtr(2026, 3, 1), EndsOn: dayPtr(2026, 3, 4)}
	// Only a new start date is supplied.  The edition lapsed in March, so
	// the mutation must be rejected even without a full range.
	res := &validation.Resolved{StartsOn: dayPtr(2026, 7, 1)}

	err := m.enforceDates(context.Background(), ScenarioUpdate, &model.UpsertRequest{}, res, target, now)
	assert.ErrorIs(t, err, ErrLapsedEdition)
}

func TestEnforceDatesSingleBoundChecksEffectiveRange(t *testing.T) {
	sib := model.Edition{ID: 11, StartsOn: dayPtr(2026, 9, 1), EndsOn: dayPtr(2026, 9, 4)}
	m := &Manager{Resolver: NewResolver(&fakeSiblings{editions: []model.Edition{sib}})}
	target := &model.Edition{ID: 10, EventID: 100, StartsOn: dayPtr(2026, 9, 10), EndsOn: dayPtr(2026, 9, 12)}
	// Only the start moves; combined with the end the target keeps, the
	// effective range 09-03..09-12 swallows the sibling.
	res := &validation.Resolved{StartsOn: dayPtr(2026, 9, 3)}

	err := m.enforceDates(context.Background(), ScenarioUpdate, &model.UpsertRequest{}, res, target, day(2026, 6, 15))
	assert.ErrorIs(t, err, ErrDateConflict)
}

func TestEnforceDatesContentOnlyUpdateSkipsGuards(t *testing.T) {
	m := &Manager{Resolver: NewResolver(&fakeSiblings{})}
	// Lapsed edition, but the patch carries no date: content stays editable.
	target := &model.Edition{ID: 10, EventID: 100, StartsOn: dayPtr(2026, 3, 1), EndsOn: dayPtr(2026, 3, 4)}
	req := &model.UpsertRequest{Website: sp("https://fair.example")}

	err := m.enforceDates(context.Background(), ScenarioUpdate, req, &validation.Resolved{}, target, day(2026, 6, 15))
	assert.NoError(t, err)
}

func TestIsConflict(t *testing.T) {
	assert.True(t, IsConflict(ErrDateConflict))
	assert.True(t, IsConflict(ErrLapsedEdition))
	assert.True(t, IsConflict(repository.ErrForbidden))
	assert.False(t, IsConflict(errors.New("anything else")))
	assert.False(t, IsConflict(ErrTxBudgetExceeded))
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Messages: []string{"a", "b"}}
	assert.Contains(t, err.Error(), "2 problem(s)")
}
