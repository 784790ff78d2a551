package database

import (
	"context"
	"database/sql"
	"fmt"

	"teacher_referral_bot/internal/domain/geo"
)

// Custom errors
var ErrRegionNotFound = fmt.Errorf("region not found")
var ErrDistrictNotFound = fmt.Errorf("district not found")

type PostgresGeoRepository struct {
	db *sql.DB
}

func NewPostgresGeoRepository(db *sql.DB) *PostgresGeoRepository {
	return &PostgresGeoRepository{db: db}
}

func (r *PostgresGeoRepository) GetRegion(ctx context.Context, id int64) (*geo.Region, error) {
	reg := &geo.Region{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name FROM regions WHERE id = $1`, id).Scan(&reg.ID, &reg.Name)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrRegionNotFound
		}
		return nil, fmt.Errorf("error getting region: %w", err)
	}
	return reg, nil
}

func (r *PostgresGeoRepository) GetDistrict(ctx context.Context, id int64) (*geo.District, error) {
	d := &geo.District{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, region_id FROM districts WHERE id = $1`, id).Scan(&d.ID, &d.Name, &d.RegionID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrDistrictNotFound
		}
		return nil, fmt.Errorf("error getting district: %w", err)
	}
	return d, nil
}

func (r *PostgresGeoRepository) ListRegions(ctx context.Context) ([]*geo.Region, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM regions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("error listing regions: %w", err)
	}
	defer rows.Close()

	regions := make([]*geo.Region, 0)
	for rows.Next() {
		reg := &geo.Region{}
		if err := rows.Scan(&reg.ID, &reg.Name); err != nil {
			return nil, fmt.Errorf("error scanning region: %w", err)
		}
		regions = append(regions, reg)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating regions: %w", err)
	}
	return regions, nil
}

func (r *PostgresGeoRepository) ListDistrictsByRegion(ctx context.Context, regionID int64) ([]*geo.District, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, region_id FROM districts WHERE region_id = $1 ORDER BY id`, regionID)
	if err != nil {
		return nil, fmt.Errorf("error listing districts: %w", err)
	}
	defer rows.Close()

	districts := make([]*geo.District, 0)
	for rows.Next() {
		d := &geo.District{}
		if err := rows.Scan(&d.ID, &d.Name, &d.RegionID); err != nil {
			return nil, fmt.Errorf("error scanning district: %w", err)
		}
		districts = append(districts, d)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating districts: %w", err)
	}
	return districts, nil
}

func (r *PostgresGeoRepository) UpsertRegion(ctx context.Context, reg *geo.Region) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO regions (id, name) VALUES ($1, $2)
               ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name`, reg.ID, reg.Name)
	if err != nil {
		return fmt.Errorf("error upserting region: %w", err)
	}
	return nil
}

func (r *PostgresGeoRepository) UpsertDistrict(ctx context.Context, d *geo.District) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO districts (id, name, region_id) VALUES ($1, $2, $3)
               ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, region_id = EXCLUDED.region_id`,
		d.ID, d.Name, d.RegionID)
	if err != nil {
		return fmt.Errorf("error upserting district: %w", err)
	}
	return nil
}
