package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/train-station-reservation/internal/model"
)

// ErrJourneyNotFound indicates that a journey was not located in the DB.
var ErrJourneyNotFound = errors.New("journey not found")

// JourneyRepo manages persistence for journeys and their crew set.
type JourneyRepo struct {
	db *sql.DB
}

// NewJourneyRepo constructs a JourneyRepo with the given DB handle.
func NewJourneyRepo(db *sql.DB) *JourneyRepo { return &JourneyRepo{db: db} }

// DB exposes the underlying sql.DB. It allows callers to begin
// transactions spanning multiple repositories, e.g. the order creation
// flow.
func (r *JourneyRepo) DB() *sql.DB { return r.db }

// JourneySummary is the list shape of a journey: route and train as
// display strings, crew as full names, plus the live seat count.
type JourneySummary struct {
	ID               uint64    `json:"id"`
	Route            string    `json:"route"`
	Train            string    `json:"train"`
	Crew             []string  `json:"crew"`
	DepartureTime    time.Time `json:"departure_time"`
	ArrivalTime      time.Time `json:"arrival_time"`
	TicketsAvailable int       `json:"tickets_available"`
}

// TakenSeat is one occupied (cargo, seat) pair on a journey, exposed on
// the detail view for seat-map rendering.
type TakenSeat struct {
	Cargo int `json:"cargo"`
	Seat  int `json:"seat"`
}

// JourneyDetail is the detail shape with nested route, train and crew
// records plus the occupied seats.
type JourneyDetail struct {
	ID               uint64       `json:"id"`
	Route            RouteDetail  `json:"route"`
	Train            model.Train  `json:"train"`
	Crew             []model.Crew `json:"crew"`
	TakenSeats       []TakenSeat  `json:"taken_seats"`
	TicketsAvailable int          `json:"tickets_available"`
	DepartureTime    time.Time    `json:"departure_time"`
	ArrivalTime      time.Time    `json:"arrival_time"`
}

// Create inserts a journey and its crew assignments in one
// transaction. Unknown route/train ids surface via FK errors; unknown
// crew ids the same way from the join table insert.
func (r *JourneyRepo) Create(ctx context.Context, j *model.Journey, crewIDs []uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	const q = `INSERT INTO journeys (route_id, train_id, departure_time, arrival_time) VALUES (?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, j.RouteID, j.TrainID, j.DepartureTime.UTC(), j.ArrivalTime.UTC())
	if err != nil {
		if isForeignKey(err) {
			return ErrRouteNotFound
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	j.ID = uint64(id)
	if err := replaceCrewTx(ctx, tx, j.ID, crewIDs); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// replaceCrewTx rewrites the crew set of a journey inside the caller's
// transaction.
func replaceCrewTx(ctx context.Context, tx *sql.Tx, journeyID uint64, crewIDs []uint64) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM journey_crews WHERE journey_id = ?`, journeyID); err != nil {
		return err
	}
	if len(crewIDs) == 0 {
		return nil
	}
	query := `INSERT INTO journey_crews (journey_id, crew_id) VALUES `
	args := make([]interface{}, 0, len(crewIDs)*2)
	for i, cid := range crewIDs {
		if i > 0 {
			query += ","
		}
		query += "(?, ?)"
		args = append(args, journeyID, cid)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		if isForeignKey(err) {
			return ErrCrewNotFound
		}
		return err
	}
	return nil
}

// GetByID retrieves the raw journey row.
func (r *JourneyRepo) GetByID(ctx context.Context, id uint64) (*model.Journey, error) {
	const q = `SELECT id, route_id, train_id, departure_time, arrival_time FROM journeys WHERE id = ?`
	var j model.Journey
	err := r.db.QueryRowContext(ctx, q, id).Scan(&j.ID, &j.RouteID, &j.TrainID, &j.DepartureTime, &j.ArrivalTime)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrJourneyNotFound
		}
		return nil, err
	}
	return &j, nil
}

// GetTrainTx resolves the train serving a journey inside the caller's
// transaction. The order flow uses it to validate every requested
// ticket against the train's dimensions before inserting.
func (r *JourneyRepo) GetTrainTx(ctx context.Context, tx *sql.Tx, journeyID uint64) (*model.Train, error) {
	const q = `SELECT t.id, t.name, t.cargo_num, t.places_in_cargo, t.train_type_id
	           FROM journeys j
	           JOIN trains t ON t.id = j.train_id
	           WHERE j.id = ?`
	var t model.Train
	err := tx.QueryRowContext(ctx, q, journeyID).Scan(&t.ID, &t.Name, &t.CargoNum, &t.PlacesInCargo, &t.TrainTypeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrJourneyNotFound
		}
		return nil, err
	}
	return &t, nil
}

// List returns one page of journeys in summary shape ordered by
// departure time descending, along with the total row count.
// tickets_available is computed live from the train dimensions minus
// sold tickets; it is never stored.
func (r *JourneyRepo) List(ctx context.Context, page, pageSize int) ([]JourneySummary, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM journeys`).Scan(&total); err != nil {
		return nil, 0, err
	}
	const q = `SELECT j.id, CONCAT(src.name, '-', dst.name), t.name,
	                  j.departure_time, j.arrival_time,
	                  t.cargo_num * t.places_in_cargo - COUNT(tk.id)
	           FROM journeys j
	           JOIN routes r ON r.id = j.route_id
	           JOIN stations src ON src.id = r.source_id
	           JOIN stations dst ON dst.id = r.destination_id
	           JOIN trains t ON t.id = j.train_id
	           LEFT JOIN tickets tk ON tk.journey_id = j.id
	           GROUP BY j.id, src.name, dst.name, t.name, j.departure_time, j.arrival_time,
	                    t.cargo_num, t.places_in_cargo
	           ORDER BY j.departure_time DESC, j.id
	           LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, q, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items := make([]JourneySummary, 0)
	index := make(map[uint64]int)
	for rows.Next() {
		var s JourneySummary
		if err := rows.Scan(&s.ID, &s.Route, &s.Train, &s.DepartureTime, &s.ArrivalTime, &s.TicketsAvailable); err != nil {
			return nil, 0, err
		}
		s.Crew = []string{}
		index[s.ID] = len(items)
		items = append(items, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if len(items) == 0 {
		return items, total, nil
	}
	// Populate crew names for the page in one query.
	ids := make([]interface{}, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	cq := `SELECT jc.journey_id, CONCAT(c.first_name, ' ', c.last_name)
	       FROM journey_crews jc
	       JOIN crews c ON c.id = jc.crew_id
	       WHERE jc.journey_id IN (` + placeholders(len(ids)) + `)
	       ORDER BY jc.journey_id, c.last_name`
	crows, err := r.db.QueryContext(ctx, cq, ids...)
	if err != nil {
		return nil, 0, err
	}
	defer crows.Close()
	for crows.Next() {
		var journeyID uint64
		var name string
		if err := crows.Scan(&journeyID, &name); err != nil {
			return nil, 0, err
		}
		if idx, ok := index[journeyID]; ok {
			items[idx].Crew = append(items[idx].Crew, name)
		}
	}
	return items, total, crows.Err()
}

// GetDetail returns one journey with nested route and train, assigned
// crew, the occupied (cargo, seat) pairs and the live availability
// count.
func (r *JourneyRepo) GetDetail(ctx context.Context, id uint64) (*JourneyDetail, error) {
	const q = `SELECT j.id, j.departure_time, j.arrival_time,
	                  r.id, r.distance,
	                  src.id, src.name, src.latitude, src.longitude,
	                  dst.id, dst.name, dst.latitude, dst.longitude,
	                  t.id, t.name, t.cargo_num, t.places_in_cargo, t.train_type_id
	           FROM journeys j
	           JOIN routes r ON r.id = j.route_id
	           JOIN stations src ON src.id = r.source_id
	           JOIN stations dst ON dst.id = r.destination_id
	           JOIN trains t ON t.id = j.train_id
	           WHERE j.id = ?`
	var d JourneyDetail
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&d.ID, &d.DepartureTime, &d.ArrivalTime,
		&d.Route.ID, &d.Route.Distance,
		&d.Route.Source.ID, &d.Route.Source.Name, &d.Route.Source.Latitude, &d.Route.Source.Longitude,
		&d.Route.Destination.ID, &d.Route.Destination.Name, &d.Route.Destination.Latitude, &d.Route.Destination.Longitude,
		&d.Train.ID, &d.Train.Name, &d.Train.CargoNum, &d.Train.PlacesInCargo, &d.Train.TrainTypeID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrJourneyNotFound
		}
		return nil, err
	}
	d.Crew = make([]model.Crew, 0)
	const cq = `SELECT c.id, c.first_name, c.last_name, c.position
	            FROM journey_crews jc
	            JOIN crews c ON c.id = jc.crew_id
	            WHERE jc.journey_id = ?
	            ORDER BY c.last_name, c.first_name`
	crows, err := r.db.QueryContext(ctx, cq, id)
	if err != nil {
		return nil, err
	}
	defer crows.Close()
	for crows.Next() {
		var c model.Crew
		if err := crows.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Position); err != nil {
			return nil, err
		}
		d.Crew = append(d.Crew, c)
	}
	if err := crows.Err(); err != nil {
		return nil, err
	}
	d.TakenSeats = make([]TakenSeat, 0)
	const sq = `SELECT cargo, seat FROM tickets WHERE journey_id = ? ORDER BY cargo, seat`
	srows, err := r.db.QueryContext(ctx, sq, id)
	if err != nil {
		return nil, err
	}
	defer srows.Close()
	for srows.Next() {
		var ts TakenSeat
		if err := srows.Scan(&ts.Cargo, &ts.Seat); err != nil {
			return nil, err
		}
		d.TakenSeats = append(d.TakenSeats, ts)
	}
	if err := srows.Err(); err != nil {
		return nil, err
	}
	d.TicketsAvailable = d.Train.Capacity() - len(d.TakenSeats)
	return &d, nil
}

// Update overwrites a journey's fields and replaces its crew set in
// one transaction.
func (r *JourneyRepo) Update(ctx context.Context, j *model.Journey, crewIDs []uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	const q = `UPDATE journeys SET route_id = ?, train_id = ?, departure_time = ?, arrival_time = ? WHERE id = ?`
	res, err := tx.ExecContext(ctx, q, j.RouteID, j.TrainID, j.DepartureTime.UTC(), j.ArrivalTime.UTC(), j.ID)
	if err != nil {
		if isForeignKey(err) {
			return ErrRouteNotFound
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var exists uint64
		gerr := tx.QueryRowContext(ctx, `SELECT id FROM journeys WHERE id = ?`, j.ID).Scan(&exists)
		if errors.Is(gerr, sql.ErrNoRows) {
			return ErrJourneyNotFound
		}
		if gerr != nil {
			return gerr
		}
	}
	if err := replaceCrewTx(ctx, tx, j.ID, crewIDs); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// Delete removes a journey; its tickets cascade.
func (r *JourneyRepo) Delete(ctx context.Context, id uint64) error {
	const q = `DELETE FROM journeys WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrJourneyNotFound
	}
	return nil
}
