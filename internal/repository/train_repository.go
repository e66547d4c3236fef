package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/train-station-reservation/internal/model"
)

// ErrTrainNotFound indicates that a train was not located in the DB.
var ErrTrainNotFound = errors.New("train not found")

// TrainRepo manages persistence for trains and their facility set.
type TrainRepo struct {
	db *sql.DB
}

// NewTrainRepo constructs a TrainRepo with the given DB handle.
func NewTrainRepo(db *sql.DB) *TrainRepo { return &TrainRepo{db: db} }

// TrainSummary is the list shape of a train: type and facility names
// instead of nested objects.
type TrainSummary struct {
	ID            uint64   `json:"id"`
	Name          string   `json:"name"`
	CargoNum      int      `json:"cargo_num"`
	PlacesInCargo int      `json:"places_in_cargo"`
	TrainType     string   `json:"train_type"`
	Facilities    []string `json:"facilities"`
}

// TrainDetail is the detail shape with full type and facility records.
type TrainDetail struct {
	ID            uint64           `json:"id"`
	Name          string           `json:"name"`
	CargoNum      int              `json:"cargo_num"`
	PlacesInCargo int              `json:"places_in_cargo"`
	TrainType     model.TrainType  `json:"train_type"`
	Facilities    []model.Facility `json:"facilities"`
}

// TrainFilter narrows List results. Empty slices mean no filtering.
type TrainFilter struct {
	TrainTypeIDs []uint64 // match any of these type ids
	FacilityIDs  []uint64 // match trains carrying any of these facilities
}

// Create inserts a train and its facility join rows in one
// transaction. Unknown type or facility ids surface via FK errors.
func (r *TrainRepo) Create(ctx context.Context, t *model.Train, facilityIDs []uint64) error {
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
	const q = `INSERT INTO trains (name, cargo_num, places_in_cargo, train_type_id) VALUES (?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, t.Name, t.CargoNum, t.PlacesInCargo, t.TrainTypeID)
	if err != nil {
		if isForeignKey(err) {
			return ErrTrainTypeNotFound
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	if err := replaceFacilitiesTx(ctx, tx, t.ID, facilityIDs); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// replaceFacilitiesTx rewrites the facility set of a train inside the
// caller's transaction.
func replaceFacilitiesTx(ctx context.Context, tx *sql.Tx, trainID uint64, facilityIDs []uint64) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM train_facilities WHERE train_id = ?`, trainID); err != nil {
		return err
	}
	if len(facilityIDs) == 0 {
		return nil
	}
	query := `INSERT INTO train_facilities (train_id, facility_id) VALUES `
	args := make([]interface{}, 0, len(facilityIDs)*2)
	for i, fid := range facilityIDs {
		if i > 0 {
			query += ","
		}
		query += "(?, ?)"
		args = append(args, trainID, fid)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		if isForeignKey(err) {
			return ErrFacilityNotFound
		}
		if isDuplicate(err) {
			// same facility listed twice in the request
			return ErrFacilityExists
		}
		return err
	}
	return nil
}

// GetByID retrieves the raw train row. Used by internal flows that
// only need the dimensions, e.g. ticket validation.
func (r *TrainRepo) GetByID(ctx context.Context, id uint64) (*model.Train, error) {
	const q = `SELECT id, name, cargo_num, places_in_cargo, train_type_id FROM trains WHERE id = ?`
	var t model.Train
	err := r.db.QueryRowContext(ctx, q, id).Scan(&t.ID, &t.Name, &t.CargoNum, &t.PlacesInCargo, &t.TrainTypeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTrainNotFound
		}
		return nil, err
	}
	return &t, nil
}

// GetDetail returns a train with its type and facilities loaded.
func (r *TrainRepo) GetDetail(ctx context.Context, id uint64) (*TrainDetail, error) {
	const q = `SELECT t.id, t.name, t.cargo_num, t.places_in_cargo, tt.id, tt.name
	           FROM trains t
	           JOIN train_types tt ON tt.id = t.train_type_id
	           WHERE t.id = ?`
	var d TrainDetail
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&d.ID, &d.Name, &d.CargoNum, &d.PlacesInCargo, &d.TrainType.ID, &d.TrainType.Name,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTrainNotFound
		}
		return nil, err
	}
	d.Facilities = make([]model.Facility, 0)
	const fq = `SELECT f.id, f.name
	            FROM train_facilities tf
	            JOIN facilities f ON f.id = tf.facility_id
	            WHERE tf.train_id = ?
	            ORDER BY f.name`
	rows, err := r.db.QueryContext(ctx, fq, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var f model.Facility
		if err := rows.Scan(&f.ID, &f.Name); err != nil {
			return nil, err
		}
		d.Facilities = append(d.Facilities, f)
	}
	return &d, rows.Err()
}

// List returns trains in summary shape, optionally filtered by train
// type and facility ids. Facility filtering matches trains that carry
// at least one of the requested facilities, mirroring an id IN (...)
// lookup across the join table.
func (r *TrainRepo) List(ctx context.Context, filter TrainFilter) ([]TrainSummary, error) {
	q := `SELECT DISTINCT t.id, t.name, t.cargo_num, t.places_in_cargo, tt.name
	      FROM trains t
	      JOIN train_types tt ON tt.id = t.train_type_id`
	var conds []string
	var args []interface{}
	if len(filter.FacilityIDs) > 0 {
		q += ` JOIN train_facilities tf ON tf.train_id = t.id`
		conds = append(conds, `tf.facility_id IN (`+placeholders(len(filter.FacilityIDs))+`)`)
		for _, id := range filter.FacilityIDs {
			args = append(args, id)
		}
	}
	if len(filter.TrainTypeIDs) > 0 {
		conds = append(conds, `t.train_type_id IN (`+placeholders(len(filter.TrainTypeIDs))+`)`)
		for _, id := range filter.TrainTypeIDs {
			args = append(args, id)
		}
	}
	if len(conds) > 0 {
		q += ` WHERE ` + strings.Join(conds, " AND ")
	}
	q += ` ORDER BY t.name, t.id`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]TrainSummary, 0)
	index := make(map[uint64]int)
	for rows.Next() {
		var s TrainSummary
		if err := rows.Scan(&s.ID, &s.Name, &s.CargoNum, &s.PlacesInCargo, &s.TrainType); err != nil {
			return nil, err
		}
		s.Facilities = []string{}
		index[s.ID] = len(items)
		items = append(items, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return items, nil
	}
	// Populate facility names for all listed trains in one query.
	ids := make([]interface{}, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	fq := `SELECT tf.train_id, f.name
	       FROM train_facilities tf
	       JOIN facilities f ON f.id = tf.facility_id
	       WHERE tf.train_id IN (` + placeholders(len(ids)) + `)
	       ORDER BY tf.train_id, f.name`
	frows, err := r.db.QueryContext(ctx, fq, ids...)
	if err != nil {
		return nil, err
	}
	defer frows.Close()
	for frows.Next() {
		var trainID uint64
		var name string
		if err := frows.Scan(&trainID, &name); err != nil {
			return nil, err
		}
		if idx, ok := index[trainID]; ok {
			items[idx].Facilities = append(items[idx].Facilities, name)
		}
	}
	return items, frows.Err()
}

// Update overwrites a train's fields and replaces its facility set in
// one transaction.
func (r *TrainRepo) Update(ctx context.Context, t *model.Train, facilityIDs []uint64) error {
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
	const q = `UPDATE trains SET name = ?, cargo_num = ?, places_in_cargo = ?, train_type_id = ? WHERE id = ?`
	res, err := tx.ExecContext(ctx, q, t.Name, t.CargoNum, t.PlacesInCargo, t.TrainTypeID, t.ID)
	if err != nil {
		if isForeignKey(err) {
			return ErrTrainTypeNotFound
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var exists uint64
		gerr := tx.QueryRowContext(ctx, `SELECT id FROM trains WHERE id = ?`, t.ID).Scan(&exists)
		if errors.Is(gerr, sql.ErrNoRows) {
			return ErrTrainNotFound
		}
		if gerr != nil {
			return gerr
		}
	}
	if err := replaceFacilitiesTx(ctx, tx, t.ID, facilityIDs); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// Delete removes a train; journeys referencing it cascade.
func (r *TrainRepo) Delete(ctx context.Context, id uint64) error {
	const q = `DELETE FROM trains WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTrainNotFound
	}
	return nil
}

// placeholders returns n comma-separated "?" marks for IN clauses.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?,", n-1) + "?"
}
