package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/fairgrid/fairgrid/internal/repository"
	"github.com/fairgrid/fairgrid/internal/search"
)

// ReindexHandler serves the administrative reindex endpoint: a forced
// re-push of an event's current edition document into every configured
// search target.
type ReindexHandler struct {
	Events     *repository.EventRepo
	Editions   *repository.EditionRepo
	Attributes *repository.AttributeRepo
	Indexer    *search.Indexer
}

// Reindex handles POST /v1/events/:id/reindex.  The response carries the
// per-target report so operators can see exactly which clusters took the
// write.
func (h *ReindexHandler) Reindex(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if h.Indexer == nil || !h.Indexer.Enabled() {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "no search clusters configured"})
	}
	ctx := c.Request().Context()

	ev, err := h.Events.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	if ev.CurrentEditionID == nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": "event has no current edition"})
	}
	ed, err := h.Editions.GetByID(ctx, *ev.CurrentEditionID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	attrs, err := h.Attributes.ListByEdition(ctx, ev.ID, ed.ID)
	if err != nil {
		attrs = nil
	}

	report := h.Indexer.IndexDocument(ctx, search.BuildDocument(ev, ed, attrs))
	status := http.StatusOK
	if !report.Success {
		status = http.StatusBadGateway
	}
	return c.JSON(status, report)
}
