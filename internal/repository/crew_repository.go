package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/train-station-reservation/internal/model"
)

// ErrCrewNotFound indicates that a crew member was not located in the DB.
var ErrCrewNotFound = errors.New("crew member not found")

// CrewRepo manages persistence for crew members.
type CrewRepo struct {
	db *sql.DB
}

// NewCrewRepo constructs a CrewRepo with the given DB handle.
func NewCrewRepo(db *sql.DB) *CrewRepo { return &CrewRepo{db: db} }

// CrewDetail is the list/detail shape of a crew member including the
// journeys they are assigned to, described as "source-destination"
// route strings.
type CrewDetail struct {
	ID        uint64   `json:"id"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Position  string   `json:"position"`
	Journeys  []string `json:"journeys"`
}

// Create inserts a new crew member. The position enum is validated by
// the handler before reaching this point.
func (r *CrewRepo) Create(ctx context.Context, c *model.Crew) error {
	const q = `INSERT INTO crews (first_name, last_name, position) VALUES (?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, c.FirstName, c.LastName, c.Position)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	return nil
}

// GetByID retrieves a crew member by ID.
func (r *CrewRepo) GetByID(ctx context.Context, id uint64) (*model.Crew, error) {
	const q = `SELECT id, first_name, last_name, position FROM crews WHERE id = ?`
	var c model.Crew
	err := r.db.QueryRowContext(ctx, q, id).Scan(&c.ID, &c.FirstName, &c.LastName, &c.Position)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCrewNotFound
		}
		return nil, err
	}
	return &c, nil
}

// GetDetail returns one crew member with their journey assignments.
func (r *CrewRepo) GetDetail(ctx context.Context, id uint64) (*CrewDetail, error) {
	c, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	d := CrewDetail{ID: c.ID, FirstName: c.FirstName, LastName: c.LastName, Position: c.Position, Journeys: []string{}}
	const q = `SELECT CONCAT(src.name, '-', dst.name)
	           FROM journey_crews jc
	           JOIN journeys j ON j.id = jc.journey_id
	           JOIN routes r ON r.id = j.route_id
	           JOIN stations src ON src.id = r.source_id
	           JOIN stations dst ON dst.id = r.destination_id
	           WHERE jc.crew_id = ?
	           ORDER BY j.departure_time DESC`
	rows, err := r.db.QueryContext(ctx, q, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		d.Journeys = append(d.Journeys, s)
	}
	return &d, rows.Err()
}

// List returns all crew members ordered by last name, each with their
// journey assignments populated by a second query.
func (r *CrewRepo) List(ctx context.Context) ([]CrewDetail, error) {
	const q = `SELECT id, first_name, last_name, position FROM crews ORDER BY last_name, first_name, id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]CrewDetail, 0)
	index := make(map[uint64]int)
	for rows.Next() {
		var d CrewDetail
		if err := rows.Scan(&d.ID, &d.FirstName, &d.LastName, &d.Position); err != nil {
			return nil, err
		}
		d.Journeys = []string{}
		index[d.ID] = len(items)
		items = append(items, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return items, nil
	}
	ids := make([]interface{}, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	jq := `SELECT jc.crew_id, CONCAT(src.name, '-', dst.name)
	       FROM journey_crews jc
	       JOIN journeys j ON j.id = jc.journey_id
	       JOIN routes r ON r.id = j.route_id
	       JOIN stations src ON src.id = r.source_id
	       JOIN stations dst ON dst.id = r.destination_id
	       WHERE jc.crew_id IN (` + placeholders(len(ids)) + `)
	       ORDER BY jc.crew_id, j.departure_time DESC`
	jrows, err := r.db.QueryContext(ctx, jq, ids...)
	if err != nil {
		return nil, err
	}
	defer jrows.Close()
	for jrows.Next() {
		var crewID uint64
		var s string
		if err := jrows.Scan(&crewID, &s); err != nil {
			return nil, err
		}
		if idx, ok := index[crewID]; ok {
			items[idx].Journeys = append(items[idx].Journeys, s)
		}
	}
	return items, jrows.Err()
}

// Update overwrites a crew member's fields.
func (r *CrewRepo) Update(ctx context.Context, c *model.Crew) error {
	const q = `UPDATE crews SET first_name = ?, last_name = ?, position = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, c.FirstName, c.LastName, c.Position, c.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, gerr := r.GetByID(ctx, c.ID); gerr != nil {
			return gerr
		}
	}
	return nil
}

// Delete removes a crew member; journey assignments cascade.
func (r *CrewRepo) Delete(ctx context.Context, id uint64) error {
	const q = `DELETE FROM crews WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrCrewNotFound
	}
	return nil
}
