package model

import (
	"errors"
	"testing"
)

func TestValidateTicketAcceptsInRange(t *testing.T) {
	train := Train{CargoNum: 2, PlacesInCargo: 3}
	for cargo := 1; cargo <= 2; cargo++ {
		for seat := 1; seat <= 3; seat++ {
			if err := ValidateTicket(cargo, seat, train); err != nil {
				t.Fatalf("cargo=%d seat=%d: unexpected error: %v", cargo, seat, err)
			}
		}
	}
}

func TestValidateTicketRejectsOutOfRange(t *testing.T) {
	train := Train{CargoNum: 2, PlacesInCargo: 3}
	cases := []struct {
		name  string
		cargo int
		seat  int
		field string
		max   int
	}{
		{"cargo too high", 3, 1, "cargo", 2},
		{"cargo zero", 0, 1, "cargo", 2},
		{"cargo negative", -1, 1, "cargo", 2},
		{"seat too high", 1, 4, "seat", 3},
		{"seat zero", 1, 0, "seat", 3},
		{"both invalid reports cargo first", 5, 9, "cargo", 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateTicket(tc.cargo, tc.seat, train)
			if err == nil {
				t.Fatalf("expected error, got nil")
			}
			var rng *SeatRangeError
			if !errors.As(err, &rng) {
				t.Fatalf("expected SeatRangeError, got %T", err)
			}
			if rng.Field != tc.field {
				t.Fatalf("field = %q, want %q", rng.Field, tc.field)
			}
			if rng.Max != tc.max {
				t.Fatalf("max = %d, want %d", rng.Max, tc.max)
			}
		})
	}
}

func TestSeatRangeErrorMessage(t *testing.T) {
	err := ValidateTicket(3, 1, Train{CargoNum: 2, PlacesInCargo: 10})
	if err == nil {
		t.Fatal("expected error")
	}
	want := "cargo number must be in available range: (1, 2)"
	if err.Error() != want {
		t.Fatalf("message = %q, want %q", err.Error(), want)
	}
}

func TestTrainCapacity(t *testing.T) {
	if got := (Train{CargoNum: 4, PlacesInCargo: 25}).Capacity(); got != 100 {
		t.Fatalf("capacity = %d, want 100", got)
	}
	if got := (Train{}).Capacity(); got != 0 {
		t.Fatalf("capacity of zero train = %d, want 0", got)
	}
}
