package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/fairgrid/fairgrid/internal/lifecycle"
	"github.com/fairgrid/fairgrid/internal/model"
	"github.com/fairgrid/fairgrid/internal/repository"
)

// UpsertRecorder counts settled upsert requests for metrics.  Nil is
// allowed.
type UpsertRecorder interface {
	RecordUpsert(scenario string, err error)
}

// Read-side slices of the repositories the event endpoints consume.
type EventSource interface {
	GetByID(ctx context.Context, id uint64) (*model.Event, error)
}

type EditionSource interface {
	GetByID(ctx context.Context, id uint64) (*model.Edition, error)
	ListByEvent(ctx context.Context, eventID uint64) ([]model.Edition, error)
}

type AttributeSource interface {
	ListByEdition(ctx context.Context, eventID, editionID uint64) (map[string]model.EditionAttribute, error)
}

type ContactSource interface {
	ListByEvent(ctx context.Context, eventID uint64) ([]model.Contact, error)
}

type ProductLinkSource interface {
	ListProductLinks(ctx context.Context, eventID uint64) ([]model.ProductLink, error)
}

// EventHandler serves the event lifecycle endpoints.
type EventHandler struct {
	Manager    *lifecycle.Manager
	Events     EventSource
	Editions   EditionSource
	Attributes AttributeSource
	Contacts   ContactSource
	Products   ProductLinkSource
	Metrics    UpsertRecorder
}

// NewEventHandler constructs an EventHandler.
func NewEventHandler(manager *lifecycle.Manager, events EventSource, editions EditionSource, attributes AttributeSource, contacts ContactSource, products ProductLinkSource, metrics UpsertRecorder) *EventHandler {
	return &EventHandler{
		Manager:    manager,
		Events:     events,
		Editions:   editions,
		Attributes: attributes,
		Contacts:   contacts,
		Products:   products,
		Metrics:    metrics,
	}
}

// Upsert handles POST /v1/events/upsert.  The response is written as soon
// as the atomic core write commits; enrichment and indexing continue in
// the background.
func (h *EventHandler) Upsert(c echo.Context) error {
	actorID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var req model.UpsertRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	res, err := h.Manager.Upsert(c.Request().Context(), &req, actorID, c.Path())
	if h.Metrics != nil {
		scenario := "unknown"
		if res != nil {
			scenario = res.Scenario
		}
		h.Metrics.RecordUpsert(scenario, err)
	}
	if err != nil {
		return h.writeUpsertError(c, err)
	}

	status := http.StatusOK
	if res.Scenario == lifecycle.ScenarioCreate.String() {
		status = http.StatusCreated
	}
	return c.JSON(status, res)
}

// writeUpsertError maps the lifecycle error taxonomy onto HTTP statuses.
func (h *EventHandler) writeUpsertError(c echo.Context, err error) error {
	var verr *lifecycle.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{
			"error":    "validation_failed",
			"messages": verr.Messages,
		})
	case lifecycle.IsConflict(err):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, lifecycle.ErrTxBudgetExceeded):
		return c.JSON(http.StatusGatewayTimeout, echo.Map{"error": "write did not complete in time; no changes were applied"})
	case errors.Is(err, repository.ErrEventNotFound), errors.Is(err, repository.ErrEditionNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	default:
		c.Logger().Errorf("upsert failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}

// Get handles GET /v1/events/:id and returns the event aggregate: the
// event row, its current edition with that edition's attributes, the
// event's contacts and its product links.
func (h *EventHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx := c.Request().Context()

	ev, err := h.Events.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}

	out := echo.Map{"event": ev}
	if ev.CurrentEditionID != nil {
		ed, err := h.Editions.GetByID(ctx, *ev.CurrentEditionID)
		if err == nil {
			out["current_edition"] = ed
			if attrs, err := h.Attributes.ListByEdition(ctx, ev.ID, ed.ID); err == nil {
				out["attributes"] = attrs
			}
		}
	}
	if h.Contacts != nil {
		if contacts, err := h.Contacts.ListByEvent(ctx, ev.ID); err == nil {
			out["contacts"] = contacts
		}
	}
	if h.Products != nil {
		if links, err := h.Products.ListProductLinks(ctx, ev.ID); err == nil {
			out["product_links"] = links
		}
	}
	return c.JSON(http.StatusOK, out)
}

// ListEditions handles GET /v1/events/:id/editions.
func (h *EventHandler) ListEditions(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx := c.Request().Context()

	if _, err := h.Events.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}

	editions, err := h.Editions.ListByEvent(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"event_id": id, "editions": editions})
}
