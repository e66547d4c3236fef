package model

// Crew positions accepted by the API.
const (
	PositionDriver    = "driver"
	PositionAttendant = "attendant"
	PositionEngineer  = "engineer"
)

// Crew is a staff member assignable to journeys through the
// journey_crews join table.
type Crew struct {
	ID        uint64 `json:"id"`         // crews.id
	FirstName string `json:"first_name"` // crews.first_name
	LastName  string `json:"last_name"`  // crews.last_name
	Position  string `json:"position"`   // crews.position (driver|attendant|engineer)
}

// FullName joins first and last name for list views.
func (c Crew) FullName() string {
	return c.FirstName + " " + c.LastName
}

// ValidPosition reports whether p is one of the accepted crew positions.
func ValidPosition(p string) bool {
	switch p {
	case PositionDriver, PositionAttendant, PositionEngineer:
		return true
	}
	return false
}
