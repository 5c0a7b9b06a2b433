//go:build integration

package repositories_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
	"trace-emissions-service/internal/adapters/cache"
	"trace-emissions-service/internal/adapters/repositories"
	"trace-emissions-service/internal/domain"
	"trace-emissions-service/internal/platform/db"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// startPostgres starts a throwaway Postgres container and returns its URL.
func startPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "trace",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "failed to start PostgreSQL container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	return fmt.Sprintf("postgres://test:test@%s:%s/trace?sslmode=disable", host, port.Port())
}

func TestPostgresAdapters(t *testing.T) {
	ctx := context.Background()
	url := startPostgres(t)

	sqlDB, err := db.Open(ctx, url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, repositories.Migrate(ctx, sqlDB))
	// migrations are idempotent
	require.NoError(t, repositories.Migrate(ctx, sqlDB))

	seedPath := filepath.Join(t.TempDir(), "facilities.json")
	require.NoError(t, os.WriteFile(seedPath, []byte(`[
		{"id":"m1","name":"Preform Works","address":"5 Preform Ave","type":"manufacturing"},
		{"id":"p1","name":"Bottling Plant","address":"100 Bottling Way","type":"production","coordinates":{"lat":40.2,"lng":-75.1}}
	]`), 0o600))

	n, err := repositories.SeedFromJSON(ctx, sqlDB, seedPath)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	repo := repositories.NewPostgresFacilityRepository(sqlDB)
	list, err := repo.ListFacilities(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "m1", list[0].ID)
	assert.Nil(t, list[0].Coordinates)
	assert.Equal(t, domain.CategoryProduction, list[1].Category)
	assert.Equal(t, &domain.Coordinates{Lat: 40.2, Lng: -75.1}, list[1].Coordinates)

	gc := cache.NewSQLGeocodeCache(sqlDB)
	require.NoError(t, gc.PutMany(ctx, map[string]domain.Coordinates{"5 Preform Ave": {Lat: 40.2, Lng: -75.3}}))
	require.NoError(t, gc.PutMany(ctx, map[string]domain.Coordinates{"5 Preform Ave": {Lat: 40.21, Lng: -75.3}}))

	hits, err := gc.GetMany(ctx, []string{"5 Preform Ave", "5 Preform Ave", "missing"})
	require.NoError(t, err)
	assert.Equal(t, map[string]domain.Coordinates{"5 Preform Ave": {Lat: 40.21, Lng: -75.3}}, hits)
}
