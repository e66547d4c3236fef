package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/train-station-reservation/internal/model"
	"github.com/iliyamo/train-station-reservation/internal/repository"
)

// TrainTypeHandler exposes CRUD over train types.
type TrainTypeHandler struct {
	Repo *repository.TrainTypeRepo
}

// NewTrainTypeHandler constructs a TrainTypeHandler.
func NewTrainTypeHandler(repo *repository.TrainTypeRepo) *TrainTypeHandler {
	return &TrainTypeHandler{Repo: repo}
}

type nameReq struct {
	Name string `json:"name"`
}

// Create handles POST /v1/train-types.
func (h *TrainTypeHandler) Create(c echo.Context) error {
	var req nameReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	t := &model.TrainType{Name: strings.TrimSpace(req.Name)}
	if err := h.Repo.Create(c.Request().Context(), t); err != nil {
		if errors.Is(err, repository.ErrTrainTypeExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "train type name already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create train type"})
	}
	return c.JSON(http.StatusCreated, t)
}

// List handles GET /v1/train-types.
func (h *TrainTypeHandler) List(c echo.Context) error {
	items, err := h.Repo.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Get handles GET /v1/train-types/:id.
func (h *TrainTypeHandler) Get(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	t, err := h.Repo.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrTrainTypeNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "train type not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, t)
}

// Update handles PUT /v1/train-types/:id.
func (h *TrainTypeHandler) Update(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req nameReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	t := &model.TrainType{ID: id, Name: strings.TrimSpace(req.Name)}
	if err := h.Repo.Update(c.Request().Context(), t); err != nil {
		switch {
		case errors.Is(err, repository.ErrTrainTypeNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "train type not found"})
		case errors.Is(err, repository.ErrTrainTypeExists):
			return c.JSON(http.StatusConflict, echo.Map{"error": "train type name already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, t)
}

// Delete handles DELETE /v1/train-types/:id.
func (h *TrainTypeHandler) Delete(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Repo.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrTrainTypeNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "train type not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
