package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/fairgrid/fairgrid/internal/model"
	"github.com/fairgrid/fairgrid/internal/queue"
	"github.com/fairgrid/fairgrid/internal/repository"
	"github.com/fairgrid/fairgrid/internal/validation"
)

// ValidationError carries the aggregated failure messages of the
// validation pipeline.  No write has occurred when it is returned.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %d problem(s)", len(e.Messages))
}

// JobEnqueuer hands the post-commit work item to the broker.  The service
// publisher implements it; tests substitute a recorder.
type JobEnqueuer interface {
	EnqueueEnrichment(ctx context.Context, job queue.EnrichmentJob) error
}

// OperatorAlerter is the error-notification side channel for unexpected
// failures during event creation.
type OperatorAlerter interface {
	Alert(ctx context.Context, subject, detail string)
}

// EnrichmentRunner processes one job in-process.  The manager falls back
// to it when the broker handoff fails, so enrichment and post-processing
// still run (observably, via logs and metrics) without a broker.
type EnrichmentRunner interface {
	Run(ctx context.Context, job queue.EnrichmentJob)
}

// UpsertResult is returned to the caller once the atomic core write has
// committed.  Enrichment and post-processing may still be in flight.
type UpsertResult struct {
	EventID   uint64 `json:"event_id"`
	EditionID uint64 `json:"edition_id"`
	Scenario  string `json:"scenario"`
	JobID     string `json:"job_id,omitempty"`
}

// Manager is the edition lifecycle manager.  It owns the ordered phases
// of an upsert: validation, classification, conflict enforcement, the
// atomic core write, and the handoff of the best-effort tail.
type Manager struct {
	Pipeline   *validation.Pipeline
	Editions   *repository.EditionRepo
	Resolver   *Resolver
	Transactor *Transactor
	Jobs       JobEnqueuer
	Alerter    OperatorAlerter
	Fallback   EnrichmentRunner
	Now        func() time.Time
}

// NewManager constructs a Manager.  Jobs, Alerter and Fallback may be nil;
// the corresponding handoffs are then skipped with a log line.
func NewManager(pipeline *validation.Pipeline, editions *repository.EditionRepo, resolver *Resolver, transactor *Transactor, jobs JobEnqueuer, alerter OperatorAlerter, fallback EnrichmentRunner) *Manager {
	return &Manager{
		Pipeline:   pipeline,
		Editions:   editions,
		Resolver:   resolver,
		Transactor: transactor,
		Jobs:       jobs,
		Alerter:    alerter,
		Fallback:   fallback,
		Now:        func() time.Time { return time.Now().UTC() },
	}
}

// today returns the day-granular clock reading all lifecycle decisions in
// one request share.
func (m *Manager) today() time.Time {
	t := m.Now()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Upsert processes one upsert request end to end.  endpoint names the
// originating API endpoint for the notification envelope.
func (m *Manager) Upsert(ctx context.Context, req *model.UpsertRequest, actorID uint64, endpoint string) (*UpsertResult, error) {
	// Phase 1: validation.  Every check runs; all problems come back at once.
	res, failures := m.Pipeline.Run(ctx, req, actorID)
	if len(failures) > 0 {
		return nil, &ValidationError{Messages: failures}
	}

	now := m.today()

	// Phase 2: classification against the event's current edition.
	var current *model.Edition
	if res.Event != nil && res.Event.CurrentEditionID != nil {
		var err error
		current, err = m.Editions.GetByID(ctx, *res.Event.CurrentEditionID)
		if err != nil {
			return nil, err
		}
	}
	scenario := Classify(req.EditionID, res.StartsOn, res.EndsOn, current, now)

	// Phase 3: date-range enforcement.
	target, err := m.resolveTarget(ctx, scenario, req, res, current)
	if err != nil {
		return nil, err
	}
	if err := m.enforceDates(ctx, scenario, req, res, target, now); err != nil {
		return nil, err
	}

	// Phase 4: the atomic core write.
	txResult, err := m.Transactor.Execute(ctx, scenario, req, res, target)
	if err != nil {
		if scenario == ScenarioCreate && m.Alerter != nil {
			// Unexpected failure while creating a brand-new event; validation
			// passed, so this is an operational problem, not user input.
			m.Alerter.Alert(ctx, "event create failed", err.Error())
		}
		return nil, err
	}

	// Phase 5: durable handoff of enrichment + post-processing.
	job := queue.EnrichmentJob{
		JobID:             uuid.NewString(),
		EventID:           txResult.Event.ID,
		EditionID:         txResult.Edition.ID,
		Scenario:          scenario.String(),
		Endpoint:          endpoint,
		Request:           *req,
		DatesChanged:      txResult.DatesChanged,
		LocationChanged:   txResult.LocationChanged,
		VisibilityChanged: txResult.VisibilityChanged,
		TypeChanged:       txResult.TypeChanged,
		EnqueuedAt:        m.Now().Format(time.RFC3339),
	}
	m.handOff(job)

	return &UpsertResult{
		EventID:   txResult.Event.ID,
		EditionID: txResult.Edition.ID,
		Scenario:  scenario.String(),
		JobID:     job.JobID,
	}, nil
}

// resolveTarget loads the edition an in-place update operates on: the
// explicitly referenced edition, or the current one.  It also verifies an
// explicit reference actually belongs to the event.
func (m *Manager) resolveTarget(ctx context.Context, scenario Scenario, req *model.UpsertRequest, res *validation.Resolved, current *model.Edition) (*model.Edition, error) {
	if scenario != ScenarioUpdate {
		return nil, nil
	}
	if req.EditionID != nil {
		target, err := m.Editions.GetByID(ctx, *req.EditionID)
		if err != nil {
			return nil, err
		}
		if res.Event == nil || target.EventID != res.Event.ID {
			return nil, repository.ErrForbidden
		}
		return target, nil
	}
	if current == nil {
		return nil, repository.ErrEditionNotFound
	}
	return current, nil
}

// enforceDates applies the conflict resolver per scenario: new editions
// are checked against every sibling; in-place updates exclude the target
// and additionally reject date mutations on a lapsed edition.
func (m *Manager) enforceDates(ctx context.Context, scenario Scenario, req *model.UpsertRequest, res *validation.Resolved, target *model.Edition, now time.Time) error {
	switch scenario {
	case ScenarioCreate:
		return nil // a brand-new event has no siblings
	case ScenarioRehost, ScenarioFutureEdition:
		if res.StartsOn == nil || res.EndsOn == nil {
			return nil
		}
		conflict, err := m.Resolver.HasConflict(ctx, res.Event.ID, *res.StartsOn, *res.EndsOn, 0)
		if err != nil {
			return err
		}
		if conflict {
			return ErrDateConflict
		}
	case ScenarioUpdate:
		if !patchFromRequest(req, res).TouchesDates() {
			return nil
		}
		if err := m.Resolver.AssertMutable(target, now); err != nil {
			return err
		}
		// A single supplied bound still shifts the edition's range, so the
		// effective range is the supplied bound combined with the bound the
		// target keeps.
		start, end := res.StartsOn, res.EndsOn
		if start == nil {
			start = target.StartsOn
		}
		if end == nil {
			end = target.EndsOn
		}
		if start == nil || end == nil {
			return nil
		}
		conflict, err := m.Resolver.HasConflict(ctx, target.EventID, *start, *end, target.ID)
		if err != nil {
			return err
		}
		if conflict {
			return ErrDateConflict
		}
	}
	return nil
}

// handOff publishes the job to the broker, falling back to an in-process
// run when the broker is unavailable.  Either way the caller's response
// does not wait for enrichment.
func (m *Manager) handOff(job queue.EnrichmentJob) {
	// Deliberately detached from the request context: once the core write
	// has committed, caller cancellation must not abort the tail.
	ctx := context.Background()
	if m.Jobs != nil {
		err := m.Jobs.EnqueueEnrichment(ctx, job)
		if err == nil {
			return
		}
		log.Printf("lifecycle: enqueue enrichment job %s failed: %v; running in-process", job.JobID, err)
	}
	if m.Fallback != nil {
		go m.Fallback.Run(ctx, job)
		return
	}
	log.Printf("lifecycle: no enrichment runner configured; job %s dropped", job.JobID)
}

// IsConflict reports whether the error is one of the pre-write conflict
// rejections (date overlap, lapsed edition, foreign edition reference).
func IsConflict(err error) bool {
	return errors.Is(err, ErrDateConflict) || errors.Is(err, ErrLapsedEdition) || errors.Is(err, repository.ErrForbidden)
}
