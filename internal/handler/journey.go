package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/train-station-reservation/internal/model"
	"github.com/iliyamo/train-station-reservation/internal/repository"
)

// Journey list pagination bounds.
const (
	journeyPageSize    = 5
	journeyMaxPageSize = 50
)

// JourneyHandler exposes CRUD over journeys. The list view carries the
// live tickets_available count; the detail view additionally returns
// the occupied (cargo, seat) pairs for seat-map rendering.
type JourneyHandler struct {
	Repo *repository.JourneyRepo
}

// NewJourneyHandler constructs a JourneyHandler.
func NewJourneyHandler(repo *repository.JourneyRepo) *JourneyHandler {
	return &JourneyHandler{Repo: repo}
}

type journeyReq struct {
	Route         uint64    `json:"route"`
	Train         uint64    `json:"train"`
	DepartureTime time.Time `json:"departure_time"`
	ArrivalTime   time.Time `json:"arrival_time"`
	Crew          []uint64  `json:"crew"`
}

func (r journeyReq) validate() string {
	if r.Route == 0 || r.Train == 0 {
		return "route and train ids are required"
	}
	if r.DepartureTime.IsZero() || r.ArrivalTime.IsZero() {
		return "departure_time and arrival_time are required"
	}
	return ""
}

// Create handles POST /v1/journeys.
func (h *JourneyHandler) Create(c echo.Context) error {
	var req journeyReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	j := &model.Journey{
		RouteID:       req.Route,
		TrainID:       req.Train,
		DepartureTime: req.DepartureTime,
		ArrivalTime:   req.ArrivalTime,
	}
	if err := h.Repo.Create(c.Request().Context(), j, req.Crew); err != nil {
		switch {
		case errors.Is(err, repository.ErrRouteNotFound):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown route or train"})
		case errors.Is(err, repository.ErrCrewNotFound):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown crew member"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create journey"})
	}
	return c.JSON(http.StatusCreated, j)
}

// List handles GET /v1/journeys with page/page_size pagination.
func (h *JourneyHandler) List(c echo.Context) error {
	page, pageSize := parsePage(c, journeyPageSize, journeyMaxPageSize)
	items, total, err := h.Repo.List(c.Request().Context(), page, pageSize)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"count":     total,
		"page":      page,
		"page_size": pageSize,
		"items":     items,
	})
}

// Get handles GET /v1/journeys/:id.
func (h *JourneyHandler) Get(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	d, err := h.Repo.GetDetail(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrJourneyNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "journey not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, d)
}

// Update handles PUT /v1/journeys/:id. The crew set is replaced with
// the ids in the request.
func (h *JourneyHandler) Update(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req journeyReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	j := &model.Journey{
		ID:            id,
		RouteID:       req.Route,
		TrainID:       req.Train,
		DepartureTime: req.DepartureTime,
		ArrivalTime:   req.ArrivalTime,
	}
	if err := h.Repo.Update(c.Request().Context(), j, req.Crew); err != nil {
		switch {
		case errors.Is(err, repository.ErrJourneyNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "journey not found"})
		case errors.Is(err, repository.ErrRouteNotFound):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown route or train"})
		case errors.Is(err, repository.ErrCrewNotFound):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown crew member"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, j)
}

// Delete handles DELETE /v1/journeys/:id. Sold tickets cascade, so
// deleting a journey voids its orders' tickets.
func (h *JourneyHandler) Delete(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Repo.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrJourneyNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "journey not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
