// Package queue defines message payloads exchanged over the message
// broker and the background consumer that processes them.
package queue

// OrderTicket is one reserved seat inside an OrderConfirmedEvent.
type OrderTicket struct {
	Cargo int `json:"cargo"`
	Seat  int `json:"seat"`
}

// OrderConfirmedEvent is published after an order commits. It carries
// enough information for downstream consumers to log or notify without
// querying the primary database.
type OrderConfirmedEvent struct {
	OrderID     uint64        `json:"order_id"`
	UserID      uint64        `json:"user_id"`
	JourneyIDs  []uint64      `json:"journey_ids"`
	Tickets     []OrderTicket `json:"tickets"`
	ConfirmedAt string        `json:"confirmed_at"`
}
