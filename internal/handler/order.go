package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/train-station-reservation/internal/model"
	"github.com/iliyamo/train-station-reservation/internal/queue"
	"github.com/iliyamo/train-station-reservation/internal/repository"
	queue_publisher "github.com/iliyamo/train-station-reservation/internal/service"
)

// Order list pagination bounds.
const (
	orderPageSize    = 10
	orderMaxPageSize = 100
)

// OrderHandler implements order creation and the per-user order views.
// Creation is the write hot path: every requested ticket is validated
// against the train's dimensions and inserted inside one transaction,
// so either the whole order commits or no seat is taken.
type OrderHandler struct {
	Orders   *repository.OrderRepo
	Journeys *repository.JourneyRepo
	// Publish sends the confirmation event after commit. Swappable in
	// tests; nil disables publishing.
	Publish func(ctx context.Context, ev queue.OrderConfirmedEvent) error
}

// NewOrderHandler wires the order handler with its repositories and
// the default broker publisher.
func NewOrderHandler(orders *repository.OrderRepo, journeys *repository.JourneyRepo) *OrderHandler {
	return &OrderHandler{
		Orders:   orders,
		Journeys: journeys,
		Publish:  queue_publisher.PublishOrderConfirmed,
	}
}

type ticketReq struct {
	Cargo   int    `json:"cargo"`
	Seat    int    `json:"seat"`
	Journey uint64 `json:"journey"`
}

type orderReq struct {
	Tickets []ticketReq `json:"tickets"`
}

// Create handles POST /v1/orders. The request is a batch of tickets;
// the whole batch is reserved atomically. Tickets are processed in
// request order and the first failure aborts everything: an unknown
// journey is 404, an out-of-range cargo/seat is 400 and a seat already
// sold is 409. The unique key on (journey, cargo, seat) backstops
// concurrent requests that validate against the same free seat.
func (h *OrderHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req orderReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if len(req.Tickets) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "tickets must not be empty"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	tx, err := h.Orders.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	order := &model.Order{UserID: userID}
	if err := h.Orders.CreateTx(ctx, tx, order); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create order"})
	}

	// Trains are cached per journey so a batch of tickets on the same
	// journey resolves the dimensions once.
	trains := make(map[uint64]*model.Train)
	tickets := make([]model.Ticket, 0, len(req.Tickets))
	for _, tr := range req.Tickets {
		train, ok := trains[tr.Journey]
		if !ok {
			train, err = h.Journeys.GetTrainTx(ctx, tx, tr.Journey)
			if err != nil {
				if errors.Is(err, repository.ErrJourneyNotFound) {
					return c.JSON(http.StatusNotFound, echo.Map{"error": "journey not found", "journey": tr.Journey})
				}
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
			}
			trains[tr.Journey] = train
		}
		if err := model.ValidateTicket(tr.Cargo, tr.Seat, *train); err != nil {
			var rng *model.SeatRangeError
			if errors.As(err, &rng) {
				return c.JSON(http.StatusBadRequest, echo.Map{
					"error":       rng.Error(),
					"field":       rng.Field,
					"valid_range": []int{1, rng.Max},
					"journey":     tr.Journey,
				})
			}
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		t := model.Ticket{Cargo: tr.Cargo, Seat: tr.Seat, JourneyID: tr.Journey, OrderID: order.ID}
		if err := h.Orders.CreateTicketTx(ctx, tx, &t); err != nil {
			switch {
			case errors.Is(err, repository.ErrSeatTaken):
				return c.JSON(http.StatusConflict, echo.Map{
					"error":   "seat already taken",
					"journey": tr.Journey,
					"cargo":   tr.Cargo,
					"seat":    tr.Seat,
				})
			case errors.Is(err, repository.ErrJourneyNotFound):
				return c.JSON(http.StatusNotFound, echo.Map{"error": "journey not found", "journey": tr.Journey})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create ticket"})
		}
		tickets = append(tickets, t)
	}

	if err := tx.Commit(); err != nil {
		// A deferred unique-key check can surface at commit.
		if strings.Contains(err.Error(), "1062") {
			return c.JSON(http.StatusConflict, echo.Map{"error": "seat already taken"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not commit order"})
	}
	committed = true

	if h.Publish != nil {
		ev := queue.OrderConfirmedEvent{
			OrderID:     order.ID,
			UserID:      userID,
			ConfirmedAt: order.CreatedAt.UTC().Format(time.RFC3339),
		}
		seen := make(map[uint64]bool)
		for _, t := range tickets {
			if !seen[t.JourneyID] {
				seen[t.JourneyID] = true
				ev.JourneyIDs = append(ev.JourneyIDs, t.JourneyID)
			}
			ev.Tickets = append(ev.Tickets, queue.OrderTicket{Cargo: t.Cargo, Seat: t.Seat})
		}
		// Best effort; a broker outage must not fail the request.
		go func() {
			pctx, pcancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer pcancel()
			if err := h.Publish(pctx, ev); err != nil {
				log.Printf("order: publish confirmation for order %d failed: %v", ev.OrderID, err)
			}
		}()
	}

	detail, err := h.Orders.GetByIDForUser(ctx, order.ID, userID)
	if err != nil {
		// The order is committed; fall back to the in-memory view.
		resp := repository.OrderDetail{ID: order.ID, CreatedAt: order.CreatedAt, Tickets: []repository.TicketDetail{}}
		for _, t := range tickets {
			resp.Tickets = append(resp.Tickets, repository.TicketDetail{
				ID: t.ID, Cargo: t.Cargo, Seat: t.Seat,
				Journey: repository.TicketJourney{ID: t.JourneyID},
			})
		}
		return c.JSON(http.StatusCreated, resp)
	}
	return c.JSON(http.StatusCreated, detail)
}

// List handles GET /v1/orders: the caller's own orders, newest first.
func (h *OrderHandler) List(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	page, pageSize := parsePage(c, orderPageSize, orderMaxPageSize)
	items, total, err := h.Orders.ListByUser(c.Request().Context(), userID, page, pageSize)
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

// Get handles GET /v1/orders/:id. Orders are private: another user's
// order answers 403, not 404, because the id space is not secret.
func (h *OrderHandler) Get(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	d, err := h.Orders.GetByIDForUser(c.Request().Context(), id, userID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrOrderNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, d)
}

// Delete handles DELETE /v1/orders/:id. Deleting an order cascades to
// its tickets, releasing the seats for resale.
func (h *OrderHandler) Delete(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Orders.DeleteByIDForUser(c.Request().Context(), id, userID); err != nil {
		switch {
		case errors.Is(err, repository.ErrOrderNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
