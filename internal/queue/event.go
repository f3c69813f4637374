// Package queue defines the message payloads exchanged over the message
// broker.  Publishing and consuming live in the service package.
package queue

import "github.com/fairgrid/fairgrid/internal/model"

// Broker names.  The enrich queue carries durable work items from the
// upsert endpoint to the worker; notifications go to the events exchange
// with a direct-queue fallback when the exchange publish fails.
const (
	EnrichQueueName    = "edition.enrich"
	EventsExchangeName = "fairgrid.events"
	UpsertedQueueName  = "event.upserted"
	OpsAlertQueueName  = "ops.alerts"
)

// EnrichmentJob is the durable work item handed from the upsert request to
// the enrichment worker after the atomic core write has committed.  It
// carries the full request payload so the worker can run every enrichment
// unit without re-reading request state, plus the change flags that drive
// the conditional secondary notifications.
type EnrichmentJob struct {
	JobID     string              `json:"job_id"`
	EventID   uint64              `json:"event_id"`
	EditionID uint64              `json:"edition_id"`
	Scenario  string              `json:"scenario"`
	Endpoint  string              `json:"endpoint"`
	Request   model.UpsertRequest `json:"request"`

	DatesChanged      bool `json:"dates_changed"`
	LocationChanged   bool `json:"location_changed"`
	VisibilityChanged bool `json:"visibility_changed"`
	TypeChanged       bool `json:"type_changed"`

	EnqueuedAt string `json:"enqueued_at"`
}

// EventUpsertedMessage is the primary notification published after an
// upsert has been fully processed.  It contains enough for downstream
// consumers to log, notify or re-read without querying this service.
type EventUpsertedMessage struct {
	EventID    uint64 `json:"event_id"`
	EditionID  uint64 `json:"edition_id"`
	Scenario   string `json:"scenario"`
	Endpoint   string `json:"endpoint"`
	OccurredAt string `json:"occurred_at"`
}

// EventChangedMessage is a conditional secondary notification emitted when
// location, visibility, dates or type changed.
type EventChangedMessage struct {
	EventID    uint64 `json:"event_id"`
	EditionID  uint64 `json:"edition_id"`
	Change     string `json:"change"` // "location" | "visibility" | "dates" | "type"
	OccurredAt string `json:"occurred_at"`
}

// OperatorAlert is the error-notification side channel for unexpected
// failures during event creation.  Delivery to operators (email) is owned
// by an external consumer of the ops.alerts queue.
type OperatorAlert struct {
	Subject    string `json:"subject"`
	Detail     string `json:"detail"`
	OccurredAt string `json:"occurred_at"`
}
