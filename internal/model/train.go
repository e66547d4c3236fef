package model

// TrainType is a named class of rolling stock (e.g. "express"). Names
// are unique.
type TrainType struct {
	ID   uint64 `json:"id"`   // train_types.id
	Name string `json:"name"` // train_types.name
}

// Facility is an amenity a train can offer (e.g. "wifi"). Names are
// unique; trains reference facilities through the train_facilities
// join table.
type Facility struct {
	ID   uint64 `json:"id"`   // facilities.id
	Name string `json:"name"` // facilities.name
}

// Train describes one physical train: how many cargo (carriage)
// sections it has and how many seats each section holds. The product
// of the two is the capacity ceiling the ticket allocation enforces.
type Train struct {
	ID            uint64 `json:"id"`              // trains.id
	Name          string `json:"name"`            // trains.name
	CargoNum      int    `json:"cargo_num"`       // trains.cargo_num
	PlacesInCargo int    `json:"places_in_cargo"` // trains.places_in_cargo
	TrainTypeID   uint64 `json:"train_type"`      // trains.train_type_id
}

// Capacity returns the total number of seats on the train.
func (t Train) Capacity() int {
	return t.CargoNum * t.PlacesInCargo
}
