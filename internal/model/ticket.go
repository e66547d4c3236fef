package model

import "fmt"

// Ticket is a claim on exactly one (cargo, seat) pair for exactly one
// journey. Cargo and seat are 1-indexed. The triple (journey, cargo,
// seat) is unique; the tickets table carries a composite unique key so
// the database is the final arbiter under concurrent order creation.
type Ticket struct {
	ID        uint64 `json:"id"`      // tickets.id
	Cargo     int    `json:"cargo"`   // tickets.cargo (1..train.cargo_num)
	Seat      int    `json:"seat"`    // tickets.seat (1..train.places_in_cargo)
	JourneyID uint64 `json:"journey"` // tickets.journey_id
	OrderID   uint64 `json:"-"`       // tickets.order_id
}

// SeatRangeError reports a cargo or seat number outside the train's
// bounds. Field is "cargo" or "seat"; Max is the inclusive upper bound
// taken from the train (cargo_num or places_in_cargo). The lower bound
// is always 1.
type SeatRangeError struct {
	Field string
	Max   int
}

func (e *SeatRangeError) Error() string {
	return fmt.Sprintf("%s number must be in available range: (1, %d)", e.Field, e.Max)
}

// ValidateTicket checks a candidate (cargo, seat) pair against the
// target train's dimensions. It is a pure function with no side
// effects: the order flow calls it before every insert for fast
// feedback, and the tickets unique key still guards against races the
// check cannot see. The first violated bound is reported.
func ValidateTicket(cargo, seat int, train Train) error {
	checks := []struct {
		value int
		field string
		max   int
	}{
		{cargo, "cargo", train.CargoNum},
		{seat, "seat", train.PlacesInCargo},
	}
	for _, c := range checks {
		if c.value < 1 || c.value > c.max {
			return &SeatRangeError{Field: c.field, Max: c.max}
		}
	}
	return nil
}
