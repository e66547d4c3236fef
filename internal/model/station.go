package model

// Station is a stop on the network identified by display name and
// geographic coordinates. Names are not unique; two cities may both
// have a "Central" station. Routes reference stations as their source
// and destination endpoints.
type Station struct {
	ID        uint64  `json:"id"`        // stations.id
	Name      string  `json:"name"`      // stations.name
	Latitude  float64 `json:"latitude"`  // stations.latitude
	Longitude float64 `json:"longitude"` // stations.longitude
}
