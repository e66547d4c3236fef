package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/iliyamo/train-station-reservation/internal/model"
)

func TestOrderCreateTxAssignsIDAndTimestamp(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO orders").WithArgs(uint64(42)).
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectQuery("SELECT created_at FROM orders").WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(created))
	mock.ExpectCommit()

	repo := NewOrderRepo(db)
	tx, err := db.BeginTx(context.Background(), nil)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	o := &model.Order{UserID: 42}
	if err := repo.CreateTx(context.Background(), tx, o); err != nil {
		t.Fatalf("CreateTx: %v", err)
	}
	if o.ID != 7 {
		t.Fatalf("order id = %d, want 7", o.ID)
	}
	if !o.CreatedAt.Equal(created) {
		t.Fatalf("created_at = %v, want %v", o.CreatedAt, created)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateTicketTxMapsDuplicateToSeatTaken(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO tickets").
		WithArgs(1, 5, uint64(3), uint64(7)).
		WillReturnError(errors.New("Error 1062: Duplicate entry '3-1-5' for key 'uq_ticket'"))
	mock.ExpectRollback()

	repo := NewOrderRepo(db)
	tx, err := db.BeginTx(context.Background(), nil)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	tk := &model.Ticket{Cargo: 1, Seat: 5, JourneyID: 3, OrderID: 7}
	if err := repo.CreateTicketTx(context.Background(), tx, tk); !errors.Is(err, ErrSeatTaken) {
		t.Fatalf("err = %v, want ErrSeatTaken", err)
	}
	_ = tx.Rollback()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateTicketTxMapsForeignKeyToJourneyNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO tickets").
		WithArgs(1, 1, uint64(999), uint64(7)).
		WillReturnError(errors.New("Error 1452: Cannot add or update a child row: a foreign key constraint fails"))
	mock.ExpectRollback()

	repo := NewOrderRepo(db)
	tx, err := db.BeginTx(context.Background(), nil)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	tk := &model.Ticket{Cargo: 1, Seat: 1, JourneyID: 999, OrderID: 7}
	if err := repo.CreateTicketTx(context.Background(), tx, tk); !errors.Is(err, ErrJourneyNotFound) {
		t.Fatalf("err = %v, want ErrJourneyNotFound", err)
	}
	_ = tx.Rollback()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGetByIDForUserDistinguishesMissingAndForeign(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()
	repo := NewOrderRepo(db)

	mock.ExpectQuery("SELECT id, user_id, created_at FROM orders").WithArgs(uint64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "created_at"}))
	if _, err := repo.GetByIDForUser(context.Background(), 1, 42); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("missing order: err = %v, want ErrOrderNotFound", err)
	}

	mock.ExpectQuery("SELECT id, user_id, created_at FROM orders").WithArgs(uint64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "created_at"}).
			AddRow(2, 99, time.Now()))
	if _, err := repo.GetByIDForUser(context.Background(), 2, 42); !errors.Is(err, ErrForbidden) {
		t.Fatalf("foreign order: err = %v, want ErrForbidden", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDeleteByIDForUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()
	repo := NewOrderRepo(db)

	mock.ExpectQuery("SELECT user_id FROM orders").WithArgs(uint64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(42))
	mock.ExpectExec("DELETE FROM orders").WithArgs(uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	if err := repo.DeleteByIDForUser(context.Background(), 5, 42); err != nil {
		t.Fatalf("delete own order: %v", err)
	}

	mock.ExpectQuery("SELECT user_id FROM orders").WithArgs(uint64(6)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(99))
	if err := repo.DeleteByIDForUser(context.Background(), 6, 42); !errors.Is(err, ErrForbidden) {
		t.Fatalf("foreign order: err = %v, want ErrForbidden", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
