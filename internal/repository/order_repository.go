package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/train-station-reservation/internal/model"
)

// ErrOrderNotFound indicates that an order was not located in the DB.
var ErrOrderNotFound = errors.New("order not found")

// OrderRepo provides persistence for orders and their tickets. Orders
// group one or more tickets reserved atomically by one user; all
// inserts happen inside a transaction owned by the caller so that a
// failure on any ticket rolls back the entire order. All timestamps
// are stored in UTC.
type OrderRepo struct {
	db *sql.DB
}

// NewOrderRepo returns a new OrderRepo bound to the given database.
func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{db: db} }

// DB exposes the underlying sql.DB for callers that begin the order
// transaction themselves.
func (r *OrderRepo) DB() *sql.DB { return r.db }

// CreateTx inserts a new order row within the scope of an existing
// transaction and populates the generated ID and created_at on the
// given record. The caller must commit or roll back.
func (r *OrderRepo) CreateTx(ctx context.Context, tx *sql.Tx, o *model.Order) error {
	const q = `INSERT INTO orders (user_id) VALUES (?)`
	res, err := tx.ExecContext(ctx, q, o.UserID)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	o.ID = uint64(id)
	// Query back the row to pick up the DB-assigned creation timestamp.
	const sel = `SELECT created_at FROM orders WHERE id = ?`
	return tx.QueryRowContext(ctx, sel, o.ID).Scan(&o.CreatedAt)
}

// CreateTicketTx inserts one ticket within the caller's transaction.
// A collision on the unique (journey_id, cargo, seat) key returns
// ErrSeatTaken: the constraint is the safety net for races that the
// pre-insert range validation cannot see.
func (r *OrderRepo) CreateTicketTx(ctx context.Context, tx *sql.Tx, t *model.Ticket) error {
	const q = `INSERT INTO tickets (cargo, seat, journey_id, order_id) VALUES (?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, t.Cargo, t.Seat, t.JourneyID, t.OrderID)
	if err != nil {
		if isDuplicate(err) {
			return ErrSeatTaken
		}
		if isForeignKey(err) {
			return ErrJourneyNotFound
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	return nil
}

// TicketJourney is the journey summary nested under a ticket in order
// views.
type TicketJourney struct {
	ID            uint64    `json:"id"`
	Route         string    `json:"route"`
	Train         string    `json:"train"`
	DepartureTime time.Time `json:"departure_time"`
	ArrivalTime   time.Time `json:"arrival_time"`
}

// TicketDetail is one ticket of an order with its journey summary.
type TicketDetail struct {
	ID      uint64        `json:"id"`
	Cargo   int           `json:"cargo"`
	Seat    int           `json:"seat"`
	Journey TicketJourney `json:"journey"`
}

// OrderDetail is the read shape of an order with its nested tickets.
type OrderDetail struct {
	ID        uint64         `json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	Tickets   []TicketDetail `json:"tickets"`
}

const ticketSelect = `SELECT tk.order_id, tk.id, tk.cargo, tk.seat,
                             j.id, CONCAT(src.name, '-', dst.name), t.name,
                             j.departure_time, j.arrival_time
                      FROM tickets tk
                      JOIN journeys j ON j.id = tk.journey_id
                      JOIN routes r ON r.id = j.route_id
                      JOIN stations src ON src.id = r.source_id
                      JOIN stations dst ON dst.id = r.destination_id
                      JOIN trains t ON t.id = j.train_id`

// scanTicket reads one row of ticketSelect.
func scanTicket(rows *sql.Rows) (orderID uint64, td TicketDetail, err error) {
	err = rows.Scan(&orderID, &td.ID, &td.Cargo, &td.Seat,
		&td.Journey.ID, &td.Journey.Route, &td.Journey.Train,
		&td.Journey.DepartureTime, &td.Journey.ArrivalTime)
	return orderID, td, err
}

// ListByUser returns one page of the user's orders, newest first, with
// nested tickets, plus the user's total order count. Tickets are
// populated for the whole page in a single second query.
func (r *OrderRepo) ListByUser(ctx context.Context, userID uint64, page, pageSize int) ([]OrderDetail, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders WHERE user_id = ?`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}
	const q = `SELECT id, created_at FROM orders WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, q, userID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items := make([]OrderDetail, 0)
	index := make(map[uint64]int)
	for rows.Next() {
		var d OrderDetail
		if err := rows.Scan(&d.ID, &d.CreatedAt); err != nil {
			return nil, 0, err
		}
		d.Tickets = []TicketDetail{}
		index[d.ID] = len(items)
		items = append(items, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if len(items) == 0 {
		return items, total, nil
	}
	ids := make([]interface{}, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	tq := ticketSelect + ` WHERE tk.order_id IN (` + placeholders(len(ids)) + `) ORDER BY tk.order_id, tk.cargo, tk.seat`
	trows, err := r.db.QueryContext(ctx, tq, ids...)
	if err != nil {
		return nil, 0, err
	}
	defer trows.Close()
	for trows.Next() {
		orderID, td, err := scanTicket(trows)
		if err != nil {
			return nil, 0, err
		}
		if idx, ok := index[orderID]; ok {
			items[idx].Tickets = append(items[idx].Tickets, td)
		}
	}
	return items, total, trows.Err()
}

// GetByIDForUser returns a single order with its tickets. It returns
// ErrOrderNotFound when the order does not exist and ErrForbidden when
// it belongs to a different user.
func (r *OrderRepo) GetByIDForUser(ctx context.Context, orderID, userID uint64) (*OrderDetail, error) {
	var d OrderDetail
	var ownerID uint64
	const q = `SELECT id, user_id, created_at FROM orders WHERE id = ?`
	err := r.db.QueryRowContext(ctx, q, orderID).Scan(&d.ID, &ownerID, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if ownerID != userID {
		return nil, ErrForbidden
	}
	d.Tickets = []TicketDetail{}
	tq := ticketSelect + ` WHERE tk.order_id = ? ORDER BY tk.cargo, tk.seat`
	rows, err := r.db.QueryContext(ctx, tq, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		_, td, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		d.Tickets = append(d.Tickets, td)
	}
	return &d, rows.Err()
}

// DeleteByIDForUser removes the user's order; the tickets cascade at
// the schema level, releasing the seats. It returns ErrOrderNotFound
// when the order does not exist and ErrForbidden when it belongs to a
// different user.
func (r *OrderRepo) DeleteByIDForUser(ctx context.Context, orderID, userID uint64) error {
	var ownerID uint64
	err := r.db.QueryRowContext(ctx, `SELECT user_id FROM orders WHERE id = ?`, orderID).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrOrderNotFound
		}
		return err
	}
	if ownerID != userID {
		return ErrForbidden
	}
	_, err = r.db.ExecContext(ctx, `DELETE FROM orders WHERE id = ?`, orderID)
	return err
}
