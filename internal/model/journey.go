package model

import "time"

// Journey is one scheduled run of a train over a route within a time
// window. Crew assignments live in the journey_crews join table.
// Departure and arrival are stored in UTC; the schema does not require
// arrival to follow departure.
type Journey struct {
	ID            uint64    `json:"id"`             // journeys.id
	RouteID       uint64    `json:"route"`          // journeys.route_id
	TrainID       uint64    `json:"train"`          // journeys.train_id
	DepartureTime time.Time `json:"departure_time"` // journeys.departure_time
	ArrivalTime   time.Time `json:"arrival_time"`   // journeys.arrival_time
}
