// Package geo loads the static region/district reference data into the
// database at startup. The JSON files use the same shape as the original
// data set: [{"id": 1, "name": "..."}] for regions and
// [{"id": 1, "name": "...", "region_id": 1}] for districts.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	domainGeo "teacher_referral_bot/internal/domain/geo"
)

type regionRecord struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type districtRecord struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	RegionID int64  `json:"region_id"`
}

// LoadFromFiles upserts regions and districts from the given JSON files.
// Empty paths are skipped, so deployments that manage reference data by
// other means can leave them unconfigured.
func LoadFromFiles(ctx context.Context, repo domainGeo.Repository, regionsPath, districtsPath string, logger *logrus.Entry) error {
	if regionsPath != "" {
		regions, err := readJSON[regionRecord](regionsPath)
		if err != nil {
			return fmt.Errorf("failed to read regions file: %w", err)
		}
		for _, rec := range regions {
			if err := repo.UpsertRegion(ctx, &domainGeo.Region{ID: rec.ID, Name: rec.Name}); err != nil {
				return fmt.Errorf("failed to upsert region %d: %w", rec.ID, err)
			}
		}
		logger.WithField("count", len(regions)).Info("Regions loaded")
	}

	if districtsPath != "" {
		districts, err := readJSON[districtRecord](districtsPath)
		if err != nil {
			return fmt.Errorf("failed to read districts file: %w", err)
		}
		for _, rec := range districts {
			d := &domainGeo.District{ID: rec.ID, Name: rec.Name, RegionID: rec.RegionID}
			if err := repo.UpsertDistrict(ctx, d); err != nil {
				return fmt.Errorf("failed to upsert district %d: %w", rec.ID, err)
			}
		}
		logger.WithField("count", len(districts)).Info("Districts loaded")
	}

	return nil
}

func readJSON[T any](path string) ([]T, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var records []T
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("invalid JSON in %s: %w", path, err)
	}
	return records, nil
}
