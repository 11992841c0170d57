package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"evcharge/internal/models"
)

// StationRepository stores station aggregates. Schedules and slots are
// embedded JSONB documents written back with the station; the version
// column implements optimistic concurrency for the whole aggregate.
type StationRepository struct {
	db *sql.DB
}

// NewStationRepository returns repository.
func NewStationRepository(db *sql.DB) *StationRepository {
	return &StationRepository{db: db}
}

const stationColumns = `id, name, address, latitude, longitude, type, is_active, schedules, slots, version, created_at, updated_at, created_by, updated_by`

func scanStation(row interface{ Scan(...any) error }) (*models.Station, error) {
	var (
		st        models.Station
		schedules []byte
		slots     []byte
		createdBy sql.NullString
		updatedBy sql.NullString
	)
	err := row.Scan(
		&st.ID, &st.Name, &st.Address, &st.Latitude, &st.Longitude,
		&st.Type, &st.IsActive, &schedules, &slots, &st.Version,
		&st.CreatedAt, &st.UpdatedAt, &createdBy, &updatedBy,
	)
	if err != nil {
		return nil, err
	}
	if len(schedules) > 0 {
		if err := json.Unmarshal(schedules, &st.Schedules); err != nil {
			return nil, err
		}
	}
	if len(slots) > 0 {
		if err := json.Unmarshal(slots, &st.Slots); err != nil {
			return nil, err
		}
	}
	st.CreatedBy = createdBy.String
	st.UpdatedBy = updatedBy.String
	return &st, nil
}

func marshalEmbedded(st *models.Station) (schedules, slots []byte, err error) {
	if st.Schedules == nil {
		st.Schedules = []models.ScheduleWindow{}
	}
	if st.Slots == nil {
		st.Slots = []models.Slot{}
	}
	schedules, err = json.Marshal(st.Schedules)
	if err != nil {
		return nil, nil, err
	}
	slots, err = json.Marshal(st.Slots)
	if err != nil {
		return nil, nil, err
	}
	return schedules, slots, nil
}

// GetByID fetches one station aggregate.
func (r *StationRepository) GetByID(ctx context.Context, id string) (*models.Station, error) {
	const query = `SELECT ` + stationColumns + ` FROM stations WHERE id = $1`
	st, err := scanStation(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return st, err
}

// List returns every station in creation order.
func (r *StationRepository) List(ctx context.Context) ([]models.Station, error) {
	const query = `SELECT ` + stationColumns + ` FROM stations ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stations []models.Station
	for rows.Next() {
		st, err := scanStation(rows)
		if err != nil {
			return nil, err
		}
		stations = append(stations, *st)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return stations, nil
}

// Insert persists a new aggregate at version 1.
func (r *StationRepository) Insert(ctx context.Context, st *models.Station) error {
	schedules, slots, err := marshalEmbedded(st)
	if err != nil {
		return err
	}
	const query = `
		INSERT INTO stations (id, name, address, latitude, longitude, type, is_active, schedules, slots, version, created_at, updated_at, created_by, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 1, $10, $11, NULLIF($12, ''), NULLIF($13, ''))
	`
	_, err = r.db.ExecContext(ctx, query,
		st.ID, st.Name, st.Address, st.Latitude, st.Longitude,
		st.Type, st.IsActive, schedules, slots,
		st.CreatedAt, st.UpdatedAt, st.CreatedBy, st.UpdatedBy,
	)
	if err == nil {
		st.Version = 1
	}
	return err
}

// Replace writes the whole aggregate back, guarded by the version read
// earlier. A stale version yields ErrVersionConflict so the caller can
// re-read and retry.
func (r *StationRepository) Replace(ctx context.Context, st *models.Station) error {
	schedules, slots, err := marshalEmbedded(st)
	if err != nil {
		return err
	}
	const query = `
		UPDATE stations
		SET name = $2, address = $3, latitude = $4, longitude = $5,
		    type = $6, is_active = $7, schedules = $8, slots = $9,
		    version = version + 1, updated_at = $10, updated_by = NULLIF($11, '')
		WHERE id = $1 AND version = $12
	`
	result, err := r.db.ExecContext(ctx, query,
		st.ID, st.Name, st.Address, st.Latitude, st.Longitude,
		st.Type, st.IsActive, schedules, slots,
		st.UpdatedAt, st.UpdatedBy, st.Version,
	)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		var exists bool
		if err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM stations WHERE id = $1)`, st.ID).Scan(&exists); err != nil {
			return err
		}
		if exists {
			return ErrVersionConflict
		}
		return ErrNotFound
	}
	st.Version++
	return nil
}

// Delete removes the aggregate permanently.
func (r *StationRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM stations WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
