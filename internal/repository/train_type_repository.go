package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/train-station-reservation/internal/model"
)

// ErrTrainTypeNotFound indicates that a train type was not located in the DB.
var ErrTrainTypeNotFound = errors.New("train type not found")

// ErrTrainTypeExists signals a duplicate train type name.
var ErrTrainTypeExists = errors.New("train type name already exists")

// TrainTypeRepo manages persistence for train types.
type TrainTypeRepo struct {
	db *sql.DB
}

// NewTrainTypeRepo constructs a TrainTypeRepo with the given DB handle.
func NewTrainTypeRepo(db *sql.DB) *TrainTypeRepo { return &TrainTypeRepo{db: db} }

// Create inserts a new train type. Names carry a unique key; collisions
// return ErrTrainTypeExists.
func (r *TrainTypeRepo) Create(ctx context.Context, t *model.TrainType) error {
	const q = `INSERT INTO train_types (name) VALUES (?)`
	res, err := r.db.ExecContext(ctx, q, t.Name)
	if err != nil {
		if isDuplicate(err) {
			return ErrTrainTypeExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	return nil
}

// GetByID retrieves a train type by its ID.
func (r *TrainTypeRepo) GetByID(ctx context.Context, id uint64) (*model.TrainType, error) {
	const q = `SELECT id, name FROM train_types WHERE id = ?`
	var t model.TrainType
	err := r.db.QueryRowContext(ctx, q, id).Scan(&t.ID, &t.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTrainTypeNotFound
		}
		return nil, err
	}
	return &t, nil
}

// List returns all train types ordered by name.
func (r *TrainTypeRepo) List(ctx context.Context) ([]model.TrainType, error) {
	const q = `SELECT id, name FROM train_types ORDER BY name`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]model.TrainType, 0)
	for rows.Next() {
		var t model.TrainType
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

// Update renames a train type.
func (r *TrainTypeRepo) Update(ctx context.Context, t *model.TrainType) error {
	const q = `UPDATE train_types SET name = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, t.Name, t.ID)
	if err != nil {
		if isDuplicate(err) {
			return ErrTrainTypeExists
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, gerr := r.GetByID(ctx, t.ID); gerr != nil {
			return gerr
		}
	}
	return nil
}

// Delete removes a train type; its trains cascade.
func (r *TrainTypeRepo) Delete(ctx context.Context, id uint64) error {
	const q = `DELETE FROM train_types WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTrainTypeNotFound
	}
	return nil
}
