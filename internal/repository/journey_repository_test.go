package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestJourneyListCarriesLiveAvailability(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	dep := time.Date(2025, 7, 1, 8, 0, 0, 0, time.UTC)
	arr := dep.Add(3 * time.Hour)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM journeys").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery("FROM journeys j").
		WithArgs(5, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "route", "train", "departure_time", "arrival_time", "available"}).
			AddRow(1, "Kyiv-Lviv", "IC-01", dep, arr, 98).
			AddRow(2, "Lviv-Odesa", "IC-02", dep, arr, 100))
	mock.ExpectQuery("FROM journey_crews jc").
		WithArgs(uint64(1), uint64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"journey_id", "name"}).
			AddRow(1, "Anna Kovalenko").
			AddRow(1, "Ivan Shevchenko"))

	repo := NewJourneyRepo(db)
	items, total, err := repo.List(context.Background(), 1, 5)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 2 {
		t.Fatalf("total = %d, want 2", total)
	}
	if len(items) != 2 {
		t.Fatalf("items = %d, want 2", len(items))
	}
	if items[0].TicketsAvailable != 98 {
		t.Fatalf("tickets_available = %d, want 98", items[0].TicketsAvailable)
	}
	if len(items[0].Crew) != 2 || items[0].Crew[0] != "Anna Kovalenko" {
		t.Fatalf("crew = %v, want two names", items[0].Crew)
	}
	if len(items[1].Crew) != 0 {
		t.Fatalf("second journey crew = %v, want empty", items[1].Crew)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestJourneyDetailComputesAvailabilityFromTakenSeats(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	dep := time.Date(2025, 7, 1, 8, 0, 0, 0, time.UTC)
	arr := dep.Add(3 * time.Hour)

	cols := []string{
		"j_id", "dep", "arr",
		"r_id", "distance",
		"src_id", "src_name", "src_lat", "src_lon",
		"dst_id", "dst_name", "dst_lat", "dst_lon",
		"t_id", "t_name", "cargo_num", "places", "type_id",
	}
	mock.ExpectQuery("FROM journeys j").WithArgs(uint64(1)).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(
			1, dep, arr,
			3, 540,
			10, "Kyiv", 50.45, 30.52,
			11, "Lviv", 49.84, 24.03,
			5, "IC-01", 2, 3, 1,
		))
	mock.ExpectQuery("FROM journey_crews jc").WithArgs(uint64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "first_name", "last_name", "position"}).
			AddRow(8, "Anna", "Kovalenko", "driver"))
	mock.ExpectQuery("SELECT cargo, seat FROM tickets").WithArgs(uint64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"cargo", "seat"}).
			AddRow(1, 1).
			AddRow(2, 3))

	repo := NewJourneyRepo(db)
	d, err := repo.GetDetail(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetDetail: %v", err)
	}
	if got := d.Train.Capacity(); got != 6 {
		t.Fatalf("capacity = %d, want 6", got)
	}
	if len(d.TakenSeats) != 2 {
		t.Fatalf("taken seats = %d, want 2", len(d.TakenSeats))
	}
	if d.TicketsAvailable != 4 {
		t.Fatalf("tickets_available = %d, want 4", d.TicketsAvailable)
	}
	if d.Route.Source.Name != "Kyiv" || d.Route.Destination.Name != "Lviv" {
		t.Fatalf("route stations = %q -> %q", d.Route.Source.Name, d.Route.Destination.Name)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGetTrainTxUnknownJourney(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("FROM journeys j").WithArgs(uint64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "cargo_num", "places_in_cargo", "train_type_id"}))
	mock.ExpectRollback()

	repo := NewJourneyRepo(db)
	tx, err := db.BeginTx(context.Background(), nil)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if _, err := repo.GetTrainTx(context.Background(), tx, 404); !errors.Is(err, ErrJourneyNotFound) {
		t.Fatalf("err = %v, want ErrJourneyNotFound", err)
	}
	_ = tx.Rollback()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
