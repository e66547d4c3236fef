package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/train-station-reservation/internal/model"
)

// ErrFacilityNotFound indicates that a facility was not located in the DB.
var ErrFacilityNotFound = errors.New("facility not found")

// ErrFacilityExists signals a duplicate facility name.
var ErrFacilityExists = errors.New("facility name already exists")

// FacilityRepo manages persistence for facilities.
type FacilityRepo struct {
	db *sql.DB
}

// NewFacilityRepo constructs a FacilityRepo with the given DB handle.
func NewFacilityRepo(db *sql.DB) *FacilityRepo { return &FacilityRepo{db: db} }

// Create inserts a new facility. Names carry a unique key.
func (r *FacilityRepo) Create(ctx context.Context, f *model.Facility) error {
	const q = `INSERT INTO facilities (name) VALUES (?)`
	res, err := r.db.ExecContext(ctx, q, f.Name)
	if err != nil {
		if isDuplicate(err) {
			return ErrFacilityExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	f.ID = uint64(id)
	return nil
}

// GetByID retrieves a facility by its ID.
func (r *FacilityRepo) GetByID(ctx context.Context, id uint64) (*model.Facility, error) {
	const q = `SELECT id, name FROM facilities WHERE id = ?`
	var f model.Facility
	err := r.db.QueryRowContext(ctx, q, id).Scan(&f.ID, &f.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFacilityNotFound
		}
		return nil, err
	}
	return &f, nil
}

// List returns all facilities ordered by name.
func (r *FacilityRepo) List(ctx context.Context) ([]model.Facility, error) {
	const q = `SELECT id, name FROM facilities ORDER BY name`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]model.Facility, 0)
	for rows.Next() {
		var f model.Facility
		if err := rows.Scan(&f.ID, &f.Name); err != nil {
			return nil, err
		}
		items = append(items, f)
	}
	return items, rows.Err()
}

// Update renames a facility.
func (r *FacilityRepo) Update(ctx context.Context, f *model.Facility) error {
	const q = `UPDATE facilities SET name = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, f.Name, f.ID)
	if err != nil {
		if isDuplicate(err) {
			return ErrFacilityExists
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, gerr := r.GetByID(ctx, f.ID); gerr != nil {
			return gerr
		}
	}
	return nil
}

// Delete removes a facility; join rows in train_facilities cascade.
func (r *FacilityRepo) Delete(ctx context.Context, id uint64) error {
	const q = `DELETE FROM facilities WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrFacilityNotFound
	}
	return nil
}
