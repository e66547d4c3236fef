package model

import "time"

// Order groups one or more tickets reserved in a single atomic request
// by one user. Orders are immutable after creation; the only mutation
// the API offers is deleting the whole order, which cascades to its
// tickets and releases the seats.
type Order struct {
	ID        uint64    `json:"id"`         // orders.id
	UserID    uint64    `json:"-"`          // orders.user_id
	CreatedAt time.Time `json:"created_at"` // orders.created_at
}
