package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/train-station-reservation/internal/model"
)

// ErrRouteNotFound indicates that a route was not located in the DB.
var ErrRouteNotFound = errors.New("route not found")

// RouteRepo manages persistence for routes.
type RouteRepo struct {
	db *sql.DB
}

// NewRouteRepo constructs a RouteRepo with the given DB handle.
func NewRouteRepo(db *sql.DB) *RouteRepo { return &RouteRepo{db: db} }

// RouteSummary is the list shape of a route: station names instead of
// nested objects.
type RouteSummary struct {
	ID          uint64 `json:"id"`
	Source      string `json:"source"`
	Destination string `json:"destination"`
	Distance    int    `json:"distance"`
}

// RouteDetail is the detail shape of a route with full station records.
type RouteDetail struct {
	ID          uint64        `json:"id"`
	Source      model.Station `json:"source"`
	Destination model.Station `json:"destination"`
	Distance    int           `json:"distance"`
}

// isForeignKey reports whether err is a MySQL foreign-key failure
// (error code 1452), i.e. a referenced row does not exist.
func isForeignKey(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1452")
}

// Create inserts a new route. Unknown source or destination station
// ids surface as ErrStationNotFound via the FK constraint.
func (r *RouteRepo) Create(ctx context.Context, rt *model.Route) error {
	const q = `INSERT INTO routes (source_id, destination_id, distance) VALUES (?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, rt.SourceID, rt.DestinationID, rt.Distance)
	if err != nil {
		if isForeignKey(err) {
			return ErrStationNotFound
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rt.ID = uint64(id)
	return nil
}

// GetByID retrieves the raw route row.
func (r *RouteRepo) GetByID(ctx context.Context, id uint64) (*model.Route, error) {
	const q = `SELECT id, source_id, destination_id, distance FROM routes WHERE id = ?`
	var rt model.Route
	err := r.db.QueryRowContext(ctx, q, id).Scan(&rt.ID, &rt.SourceID, &rt.DestinationID, &rt.Distance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRouteNotFound
		}
		return nil, err
	}
	return &rt, nil
}

// GetDetail returns a route with both stations loaded in one query.
func (r *RouteRepo) GetDetail(ctx context.Context, id uint64) (*RouteDetail, error) {
	const q = `SELECT r.id, r.distance,
	                  src.id, src.name, src.latitude, src.longitude,
	                  dst.id, dst.name, dst.latitude, dst.longitude
	           FROM routes r
	           JOIN stations src ON src.id = r.source_id
	           JOIN stations dst ON dst.id = r.destination_id
	           WHERE r.id = ?`
	var d RouteDetail
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&d.ID, &d.Distance,
		&d.Source.ID, &d.Source.Name, &d.Source.Latitude, &d.Source.Longitude,
		&d.Destination.ID, &d.Destination.Name, &d.Destination.Latitude, &d.Destination.Longitude,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRouteNotFound
		}
		return nil, err
	}
	return &d, nil
}

// List returns all routes in summary shape, ordered by source then
// destination station name.
func (r *RouteRepo) List(ctx context.Context) ([]RouteSummary, error) {
	const q = `SELECT r.id, src.name, dst.name, r.distance
	           FROM routes r
	           JOIN stations src ON src.id = r.source_id
	           JOIN stations dst ON dst.id = r.destination_id
	           ORDER BY src.name, dst.name, r.id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]RouteSummary, 0)
	for rows.Next() {
		var s RouteSummary
		if err := rows.Scan(&s.ID, &s.Source, &s.Destination, &s.Distance); err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

// Update overwrites the endpoints and distance of an existing route.
func (r *RouteRepo) Update(ctx context.Context, rt *model.Route) error {
	const q = `UPDATE routes SET source_id = ?, destination_id = ?, distance = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, rt.SourceID, rt.DestinationID, rt.Distance, rt.ID)
	if err != nil {
		if isForeignKey(err) {
			return ErrStationNotFound
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, gerr := r.GetByID(ctx, rt.ID); gerr != nil {
			return gerr
		}
	}
	return nil
}

// Delete removes a route; its journeys (and their tickets) cascade.
func (r *RouteRepo) Delete(ctx context.Context, id uint64) error {
	const q = `DELETE FROM routes WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrRouteNotFound
	}
	return nil
}
