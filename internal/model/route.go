package model

// Route is an ordered pair of stations with a distance in kilometres.
// Source and destination are deliberately not required to differ; the
// schema places no such constraint. Deleting either station cascades
// to the route, and deleting the route cascades to its journeys.
type Route struct {
	ID            uint64 `json:"id"`          // routes.id
	SourceID      uint64 `json:"source"`      // routes.source_id
	DestinationID uint64 `json:"destination"` // routes.destination_id
	Distance      int    `json:"distance"`    // routes.distance
}
