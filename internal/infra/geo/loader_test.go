package geo

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainGeo "teacher_referral_bot/internal/domain/geo"
)

type recordingRepo struct {
	domainGeo.Repository
	regions   []*domainGeo.Region
	districts []*domainGeo.District
}

func (r *recordingRepo) UpsertRegion(_ context.Context, reg *domainGeo.Region) error {
	r.regions = append(r.regions, reg)
	return nil
}

func (r *recordingRepo) UpsertDistrict(_ context.Context, d *domainGeo.District) error {
	r.districts = append(r.districts, d)
	return nil
}

func discardLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFromFiles(t *testing.T) {
	dir := t.TempDir()
	regionsPath := writeFile(t, dir, "regions.json",
		`[{"id": 1, "name": "Toshkent shahri"}, {"id": 2, "name": "Samarqand viloyati"}]`)
	districtsPath := writeFile(t, dir, "districts.json",
		`[{"id": 11, "name": "Chilonzor tumani", "region_id": 1}]`)

	repo := &recordingRepo{}
	require.NoError(t, LoadFromFiles(context.Background(), repo, regionsPath, districtsPath, discardLogger()))

	require.Len(t, repo.regions, 2)
	assert.Equal(t, "Toshkent shahri", repo.regions[0].Name)
	require.Len(t, repo.districts, 1)
	assert.Equal(t, int64(1), repo.districts[0].RegionID)
}

func TestLoadFromFiles_EmptyPathsSkipped(t *testing.T) {
	repo := &recordingRepo{}
	require.NoError(t, LoadFromFiles(context.Background(), repo, "", "", discardLogger()))
	assert.Empty(t, repo.regions)
	assert.Empty(t, repo.districts)
}

func TestLoadFromFiles_MissingFile(t *testing.T) {
	repo := &recordingRepo{}
	err := LoadFromFiles(context.Background(), repo, "/nonexistent/regions.json", "", discardLogger())
	assert.Error(t, err)
}

func TestLoadFromFiles_InvalidJSON(t *testing.T) {
	dir := t.TempDir()
	regionsPath := writeFile(t, dir, "regions.json", `{"not": "a list"}`)

	repo := &recordingRepo{}
	err := LoadFromFiles(context.Background(), repo, regionsPath, "", discardLogger())
	assert.ErrorContains(t, err, "invalid JSON")
}
