package mongo

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/tsmart/voyage-api/internal/core/domain"
	"github.com/tsmart/voyage-api/internal/core/ports"
	"github.com/tsmart/voyage-api/pkg/logger"
)

func TestToFilter_SkipsNil(t *testing.T) {
	f := toFilter(map[string]any{"status": "CONFIRMED", "yachtId": nil})
	assert.Equal(t, bson.M{"status": "CONFIRMED"}, f)
}

func TestToSort(t *testing.T) {
	s := toSort([]ports.OrderBy{
		{Field: "createdAt", Direction: ports.SortDesc},
		{Field: "name", Direction: ports.SortAsc},
	})
	assert.Equal(t, bson.D{{Key: "createdAt", Value: -1}, {Key: "name", Value: 1}}, s)
}

func TestToProjection(t *testing.T) {
	assert.Equal(t, bson.M{"_id": 0}, toProjection(nil, nil))
	assert.Equal(t, bson.M{"_id": 0}, toProjection([]string{"*"}, []string{"yachts"}))
	assert.Equal(t,
		bson.M{"_id": 0, "id": 1, "name": 1, "charters": 1},
		toProjection([]string{"id", "name"}, []string{"charters"}))
}

// The tests below need a live server: MONGO_URI=mongodb://localhost:27017 go test ./...
func newLiveStore(t *testing.T) *Store {
	t.Helper()
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		t.Skip("MONGO_URI not set")
	}

	ctx := context.Background()
	client, db, err := Connect(ctx, Config{
		URI:      uri,
		Database: "voyage_test_" + uuid.NewString()[:8],
		Timeout:  5 * time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
	})

	s := NewStore(db, 5*time.Second, logger.Nop())
	require.NoError(t, s.EnsureIndexes(ctx))
	return s
}

func TestStore_CRUD(t *testing.T) {
	s := newLiveStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, domain.TableYachts, ports.Record{"name": "Blue Pearl", "location": "Bodrum"})
	require.NoError(t, err)
	id, _ := created["id"].(string)
	require.NotEmpty(t, id)
	assert.NotNil(t, created["createdAt"])

	got, err := s.FindUnique(ctx, domain.TableYachts, id, ports.QueryOptions{})
	require.NoError(t, err)
	assert.Equal(t, "Blue Pearl", got["name"])
	_, hasOID := got["_id"]
	assert.False(t, hasOID)

	updated, err := s.Update(ctx, domain.TableYachts, id, ports.Record{"name": "Red Pearl"})
	require.NoError(t, err)
	assert.Equal(t, "Red Pearl", updated["name"])
	assert.Equal(t, "Bodrum", updated["location"])

	ok, err := s.Exists(ctx, domain.TableYachts, map[string]any{"location": "Bodrum"})
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, s.Delete(ctx, domain.TableYachts, id))
	assert.ErrorIs(t, s.Delete(ctx, domain.TableYachts, id), domain.ErrNotFound)

	_, err = s.FindUnique(ctx, domain.TableYachts, id, ports.QueryOptions{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_DuplicateEmailIsConflict(t *testing.T) {
	s := newLiveStore(t)
	ctx := context.Background()

	_, err := s.Create(ctx, domain.TableUsers, ports.Record{"email": "dup@voyage.test"})
	require.NoError(t, err)
	_, err = s.Create(ctx, domain.TableUsers, ports.Record{"email": "dup@voyage.test"})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestStore_FindManyPagingAndInclude(t *testing.T) {
	s := newLiveStore(t)
	ctx := context.Background()

	yacht, err := s.Create(ctx, domain.TableYachts, ports.Record{"name": "Aegean"})
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err := s.Create(ctx, domain.TableCharters, ports.Record{
			"yachtId": yacht["id"],
			"status":   string(domain.CharterPending),
			"guests":   i + 1,
		})
		require.NoError(t, err)
	}

	res, err := s.FindMany(ctx, domain.TableCharters, ports.QueryOptions{
		Where:   map[string]any{"yachtId": yacht["id"]},
		OrderBy: []ports.OrderBy{{Field: "guests", Direction: ports.SortDesc}},
		Limit:   2,
		Include: []string{"yachts"},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Count)
	require.Len(t, res.Records, 2)
	assert.EqualValues(t, 3, res.Records[0]["guests"])
	assert.NotEmpty(t, res.Records[0]["yachts"])
}
