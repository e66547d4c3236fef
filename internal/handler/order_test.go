package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/train-station-reservation/internal/queue"
	"github.com/iliyamo/train-station-reservation/internal/repository"
)

func newOrderTest(t *testing.T) (*OrderHandler, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	h := &OrderHandler{
		Orders:   repository.NewOrderRepo(db),
		Journeys: repository.NewJourneyRepo(db),
		Publish:  nil, // no broker in tests
	}
	return h, mock, func() { db.Close() }
}

func orderRequest(body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/orders", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", float64(42)) // as decoded from JWT claims
	return c, rec
}

func TestCreateOrderRejectsEmptyBatchBeforeStorage(t *testing.T) {
	h, mock, done := newOrderTest(t)
	defer done()

	c, rec := orderRequest(`{"tickets": []}`)
	if err := h.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	// No transaction may have been opened for an empty batch.
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unexpected storage access: %v", err)
	}
}

func TestCreateOrderUnauthenticated(t *testing.T) {
	h, _, done := newOrderTest(t)
	defer done()

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/orders", strings.NewReader(`{"tickets":[{"cargo":1,"seat":1,"journey":1}]}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestCreateOrderCommitsBatch(t *testing.T) {
	h, mock, done := newOrderTest(t)
	defer done()

	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	dep := time.Date(2025, 7, 1, 8, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO orders").WithArgs(uint64(42)).
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectQuery("SELECT created_at FROM orders").WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(created))
	// Train lookup happens once for the journey shared by both tickets.
	mock.ExpectQuery("FROM journeys j").WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "cargo_num", "places_in_cargo", "train_type_id"}).
			AddRow(5, "IC-01", 2, 3, 1))
	mock.ExpectExec("INSERT INTO tickets").WithArgs(1, 1, uint64(3), uint64(7)).
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectExec("INSERT INTO tickets").WithArgs(1, 2, uint64(3), uint64(7)).
		WillReturnResult(sqlmock.NewResult(12, 1))
	mock.ExpectCommit()
	// Post-commit read of the created order.
	mock.ExpectQuery("SELECT id, user_id, created_at FROM orders").WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "created_at"}).AddRow(7, 42, created))
	mock.ExpectQuery("FROM tickets tk").WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"order_id", "id", "cargo", "seat", "j_id", "route", "train", "dep", "arr"}).
			AddRow(7, 11, 1, 1, 3, "Kyiv-Lviv", "IC-01", dep, dep.Add(3*time.Hour)).
			AddRow(7, 12, 1, 2, 3, "Kyiv-Lviv", "IC-01", dep, dep.Add(3*time.Hour)))

	c, rec := orderRequest(`{"tickets":[{"cargo":1,"seat":1,"journey":3},{"cargo":1,"seat":2,"journey":3}]}`)
	if err := h.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body=%s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"Kyiv-Lviv"`) {
		t.Fatalf("body missing journey route: %s", body)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateOrderRollsBackOnOutOfRangeSeat(t *testing.T) {
	h, mock, done := newOrderTest(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO orders").WithArgs(uint64(42)).
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectQuery("SELECT created_at FROM orders").WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
	mock.ExpectQuery("FROM journeys j").WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "cargo_num", "places_in_cargo", "train_type_id"}).
			AddRow(5, "IC-01", 2, 3, 1))
	mock.ExpectRollback()

	c, rec := orderRequest(`{"tickets":[{"cargo":3,"seat":1,"journey":3}]}`)
	if err := h.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400; body=%s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"cargo"`) || !strings.Contains(body, "available range") {
		t.Fatalf("body missing range details: %s", body)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateOrderConflictOnTakenSeat(t *testing.T) {
	h, mock, done := newOrderTest(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO orders").WithArgs(uint64(42)).
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectQuery("SELECT created_at FROM orders").WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
	mock.ExpectQuery("FROM journeys j").WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "cargo_num", "places_in_cargo", "train_type_id"}).
			AddRow(5, "IC-01", 2, 3, 1))
	mock.ExpectExec("INSERT INTO tickets").WithArgs(2, 3, uint64(3), uint64(7)).
		WillReturnError(errTaken{})
	mock.ExpectRollback()

	c, rec := orderRequest(`{"tickets":[{"cargo":2,"seat":3,"journey":3}]}`)
	if err := h.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409; body=%s", rec.Code, rec.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

// errTaken mimics the driver's duplicate-key error text.
type errTaken struct{}

func (errTaken) Error() string { return "Error 1062: Duplicate entry '3-2-3' for key 'uq_ticket'" }

func TestCreateOrderRejectsWholeBatchWhenOneSeatCollides(t *testing.T) {
	h, mock, done := newOrderTest(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO orders").WithArgs(uint64(42)).
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectQuery("SELECT created_at FROM orders").WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
	mock.ExpectQuery("FROM journeys j").WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "cargo_num", "places_in_cargo", "train_type_id"}).
			AddRow(5, "IC-01", 2, 3, 1))
	// First ticket lands, second collides; the rollback discards both.
	mock.ExpectExec("INSERT INTO tickets").WithArgs(1, 2, uint64(3), uint64(7)).
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectExec("INSERT INTO tickets").WithArgs(1, 1, uint64(3), uint64(7)).
		WillReturnError(errTaken{})
	mock.ExpectRollback()

	c, rec := orderRequest(`{"tickets":[{"cargo":1,"seat":2,"journey":3},{"cargo":1,"seat":1,"journey":3}]}`)
	if err := h.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409; body=%s", rec.Code, rec.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateOrderUnknownJourneyIs404(t *testing.T) {
	h, mock, done := newOrderTest(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO orders").WithArgs(uint64(42)).
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectQuery("SELECT created_at FROM orders").WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
	mock.ExpectQuery("FROM journeys j").WithArgs(uint64(999)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "cargo_num", "places_in_cargo", "train_type_id"}))
	mock.ExpectRollback()

	c, rec := orderRequest(`{"tickets":[{"cargo":1,"seat":1,"journey":999}]}`)
	if err := h.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404; body=%s", rec.Code, rec.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateOrderPublishesConfirmation(t *testing.T) {
	h, mock, done := newOrderTest(t)
	defer done()

	var mu sync.Mutex
	var got *queue.OrderConfirmedEvent
	published := make(chan struct{})
	h.Publish = func(ctx context.Context, ev queue.OrderConfirmedEvent) error {
		mu.Lock()
		got = &ev
		mu.Unlock()
		close(published)
		return nil
	}

	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO orders").WithArgs(uint64(42)).
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectQuery("SELECT created_at FROM orders").WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(created))
	mock.ExpectQuery("FROM journeys j").WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "cargo_num", "places_in_cargo", "train_type_id"}).
			AddRow(5, "IC-01", 2, 3, 1))
	mock.ExpectExec("INSERT INTO tickets").WithArgs(1, 1, uint64(3), uint64(7)).
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectCommit()
	mock.ExpectQuery("SELECT id, user_id, created_at FROM orders").WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "created_at"}).AddRow(7, 42, created))
	mock.ExpectQuery("FROM tickets tk").WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"order_id", "id", "cargo", "seat", "j_id", "route", "train", "dep", "arr"}).
			AddRow(7, 11, 1, 1, 3, "Kyiv-Lviv", "IC-01", created, created))

	c, rec := orderRequest(`{"tickets":[{"cargo":1,"seat":1,"journey":3}]}`)
	if err := h.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}

	select {
	case <-published:
	case <-time.After(2 * time.Second):
		t.Fatal("confirmation event was not published")
	}
	mu.Lock()
	defer mu.Unlock()
	if got.OrderID != 7 || got.UserID != 42 {
		t.Fatalf("event = %+v, want order 7 for user 42", got)
	}
	if len(got.Tickets) != 1 || got.Tickets[0].Cargo != 1 || got.Tickets[0].Seat != 1 {
		t.Fatalf("event tickets = %+v", got.Tickets)
	}
}
