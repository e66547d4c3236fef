package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/train-station-reservation/internal/model"
	"github.com/iliyamo/train-station-reservation/internal/repository"
)

// TrainHandler exposes CRUD over trains, including the facility set
// and list filtering by type/facility ids.
type TrainHandler struct {
	Repo *repository.TrainRepo
}

// NewTrainHandler constructs a TrainHandler.
func NewTrainHandler(repo *repository.TrainRepo) *TrainHandler {
	return &TrainHandler{Repo: repo}
}

type trainReq struct {
	Name          string   `json:"name"`
	CargoNum      int      `json:"cargo_num"`
	PlacesInCargo int      `json:"places_in_cargo"`
	TrainType     uint64   `json:"train_type"`
	Facilities    []uint64 `json:"facilities"`
}

func (r trainReq) validate() string {
	if strings.TrimSpace(r.Name) == "" {
		return "name is required"
	}
	if r.CargoNum < 1 || r.PlacesInCargo < 1 {
		return "cargo_num and places_in_cargo must be at least 1"
	}
	if r.TrainType == 0 {
		return "train_type id is required"
	}
	return ""
}

// Create handles POST /v1/trains.
func (h *TrainHandler) Create(c echo.Context) error {
	var req trainReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	t := &model.Train{
		Name:          strings.TrimSpace(req.Name),
		CargoNum:      req.CargoNum,
		PlacesInCargo: req.PlacesInCargo,
		TrainTypeID:   req.TrainType,
	}
	if err := h.Repo.Create(c.Request().Context(), t, req.Facilities); err != nil {
		switch {
		case errors.Is(err, repository.ErrTrainTypeNotFound):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown train type"})
		case errors.Is(err, repository.ErrFacilityNotFound):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown facility"})
		case errors.Is(err, repository.ErrFacilityExists):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "duplicate facility in request"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create train"})
	}
	return c.JSON(http.StatusCreated, t)
}

// List handles GET /v1/trains. The train_type and facility query
// parameters accept comma-separated id lists, e.g.
// /v1/trains?train_type=1,2&facility=3.
func (h *TrainHandler) List(c echo.Context) error {
	var filter repository.TrainFilter
	if raw := c.QueryParam("train_type"); raw != "" {
		ids, err := parseIDList(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid train_type filter"})
		}
		filter.TrainTypeIDs = ids
	}
	if raw := c.QueryParam("facility"); raw != "" {
		ids, err := parseIDList(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid facility filter"})
		}
		filter.FacilityIDs = ids
	}
	items, err := h.Repo.List(c.Request().Context(), filter)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Get handles GET /v1/trains/:id with type and facilities loaded.
func (h *TrainHandler) Get(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	d, err := h.Repo.GetDetail(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrTrainNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "train not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, d)
}

// Update handles PUT /v1/trains/:id. The facility set is replaced
// wholesale with the ids in the request.
func (h *TrainHandler) Update(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req trainReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	t := &model.Train{
		ID:            id,
		Name:          strings.TrimSpace(req.Name),
		CargoNum:      req.CargoNum,
		PlacesInCargo: req.PlacesInCargo,
		TrainTypeID:   req.TrainType,
	}
	if err := h.Repo.Update(c.Request().Context(), t, req.Facilities); err != nil {
		switch {
		case errors.Is(err, repository.ErrTrainNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "train not found"})
		case errors.Is(err, repository.ErrTrainTypeNotFound):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown train type"})
		case errors.Is(err, repository.ErrFacilityNotFound):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown facility"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, t)
}

// Delete handles DELETE /v1/trains/:id.
func (h *TrainHandler) Delete(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Repo.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrTrainNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "train not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
