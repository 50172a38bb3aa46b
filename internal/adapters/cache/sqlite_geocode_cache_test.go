package cache

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"route-optimizer-service/internal/domain"
	"route-optimizer-service/internal/ports"
)

func newTestSqliteCache(t *testing.T) *SqliteGeocodeCache {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, InitSqliteSchema(context.Background(), db))
	return NewSqliteGeocodeCache(db)
}

func TestSqliteGeocodeCacheRoundTrip(t *testing.T) {
	c := newTestSqliteCache(t)
	ctx := context.Background()

	in := map[string]ports.Place{
		"123 Main St, Minneapolis, MN": {
			DisplayName: "123, Main Street, Minneapolis, Hennepin County, Minnesota, USA",
			Coords:      domain.Coordinates{Lon: -93.2650, Lat: 44.9778},
		},
	}
	require.NoError(t, c.PutMany(ctx, in))

	got, err := c.GetMany(ctx, []string{"123 Main St, Minneapolis, MN", "missing"})
	require.NoError(t, err)
	assert.Equal(t, in, got)
}

func TestSqliteGeocodeCacheUpsertOverwrites(t *testing.T) {
	c := newTestSqliteCache(t)
	ctx := context.Background()

	addr := "500 Fifth Ave, Minneapolis, MN"
	require.NoError(t, c.PutMany(ctx, map[string]ports.Place{
		addr: {DisplayName: "old", Coords: domain.Coordinates{Lon: -93.1, Lat: 44.9}},
	}))
	require.NoError(t, c.PutMany(ctx, map[string]ports.Place{
		addr: {DisplayName: "new", Coords: domain.Coordinates{Lon: -93.2, Lat: 44.8}},
	}))

	got, err := c.GetMany(ctx, []string{addr})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "new", got[addr].DisplayName)
	assert.InDelta(t, -93.2, got[addr].Coords.Lon, 1e-9)
}

func TestSqliteGeocodeCacheGetManyEmpty(t *testing.T) {
	c := newTestSqliteCache(t)

	got, err := c.GetMany(context.Background(), []string{"", "  "})
	require.NoError(t, err)
	assert.Empty(t, got)
}
