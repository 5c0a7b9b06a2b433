package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"trace-emissions-service/internal/domain"
	"trace-emissions-service/internal/platform/obs"
)

// Postgres-backed implementation of the FacilityDirectory port.
type PostgresFacilityRepository struct{ DB *sql.DB }

func NewPostgresFacilityRepository(db *sql.DB) *PostgresFacilityRepository {
	return &PostgresFacilityRepository{DB: db}
}

// Return all facilities ordered by id, so nearest-facility ties resolve the
// same way on every run.
func (s *PostgresFacilityRepository) ListFacilities(ctx context.Context) (_ []domain.Facility, err error) {
	defer obs.Time(ctx, "facilities.List")(&err)

	if s.DB == nil {
		return nil, errors.New("postgres facility repository: DB is nil")
	}

	query := `
	SELECT
		id,
		name,
		address,
		category,
		lat,
		lng,
		created_at,
		updated_at
	FROM facilities
	ORDER BY id;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list facilities: query facilities table: %w: %w", domain.ErrLookupUnavailable, err)
	}
	defer rows.Close()

	facilities := make([]domain.Facility, 0, 64)
	for rows.Next() {
		var (
			f        domain.Facility
			category string
			lat, lng sql.NullFloat64
		)
		if err := rows.Scan(&f.ID, &f.Name, &f.Address, &category, &lat, &lng, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, fmt.Errorf("list facilities: scan row: %w", err)
		}

		f.Category, err = domain.ParseCategory(category)
		if err != nil {
			return nil, fmt.Errorf("list facilities: id=%q: %w", f.ID, err)
		}
		if lat.Valid && lng.Valid {
			f.Coordinates = &domain.Coordinates{Lat: lat.Float64, Lng: lng.Float64}
		}

		facilities = append(facilities, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list facilities: row iteration: %w", err)
	}

	return facilities, nil
}
