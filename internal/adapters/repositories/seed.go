package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"trace-emissions-service/internal/domain"
)

type FacilitySeed struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Address     string              `json:"address"`
	Type        string              `json:"type"`
	Coordinates *domain.Coordinates `json:"coordinates,omitempty"`
}

// ParseSeed validates a facility seed document.
func ParseSeed(data []byte) ([]domain.Facility, error) {
	var items []FacilitySeed
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("seed facilities: parse json: %w", err)
	}

	seen := make(map[string]struct{}, len(items))
	out := make([]domain.Facility, 0, len(items))
	for i, item := range items {
		id := strings.TrimSpace(item.ID)
		if id == "" {
			return nil, fmt.Errorf("seed facilities: item at index %d: id cannot be empty", i)
		}
		if _, ok := seen[id]; ok {
			return nil, fmt.Errorf("seed facilities: duplicate id %q", id)
		}
		seen[id] = struct{}{}

		name := strings.TrimSpace(item.Name)
		addr := strings.TrimSpace(item.Address)
		if name == "" || addr == "" {
			return nil, fmt.Errorf("seed facilities: item %q: name and address are required", id)
		}

		cat, err := domain.ParseCategory(item.Type)
		if err != nil {
			return nil, fmt.Errorf("seed facilities: item %q: %w", id, err)
		}

		if item.Coordinates != nil {
			if err := item.Coordinates.Validate(); err != nil {
				return nil, fmt.Errorf("seed facilities: item %q: %w", id, err)
			}
		}

		out = append(out, domain.Facility{
			ID:          id,
			Name:        name,
			Address:     addr,
			Category:    cat,
			Coordinates: item.Coordinates,
		})
	}

	return out, nil
}

// Populate the facilities table from a JSON file. Existing rows with the same
// id are replaced.
func SeedFromJSON(ctx context.Context, db *sql.DB, jsonPath string) (int, error) {
	if db == nil {
		return 0, errors.New("seed facilities: DB is nil")
	}

	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return 0, fmt.Errorf("seed facilities: read %q: %w", jsonPath, err)
	}

	rows, err := ParseSeed(data)
	if err != nil {
		return 0, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("seed facilities: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO facilities (id, name, address, category, lat, lng)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (id) DO UPDATE
	SET name = EXCLUDED.name,
		address = EXCLUDED.address,
		category = EXCLUDED.category,
		lat = EXCLUDED.lat,
		lng = EXCLUDED.lng,
		updated_at = now();
	`)
	if err != nil {
		return 0, fmt.Errorf("seed facilities: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, f := range rows {
		var lat, lng sql.NullFloat64
		if f.Coordinates != nil {
			lat = sql.NullFloat64{Float64: f.Coordinates.Lat, Valid: true}
			lng = sql.NullFloat64{Float64: f.Coordinates.Lng, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, f.ID, f.Name, f.Address, string(f.Category), lat, lng); err != nil {
			return 0, fmt.Errorf("seed facilities: insert id=%q: %w", f.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("seed facilities: commit tx: %w", err)
	}

	return len(rows), nil
}
