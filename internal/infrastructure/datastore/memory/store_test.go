package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsmart/voyage-api/internal/core/domain"
	"github.com/tsmart/voyage-api/internal/core/ports"
)

func seedYachts(t *testing.T, s *Store, names ...string) []ports.Record {
	t.Helper()
	var out []ports.Record
	for i, n := range names {
		r, err := s.Create(context.Background(), domain.TableYachts, ports.Record{
			"name":        n,
			"capacity":    (i + 1) * 4,
			"isAvailable": i%2 == 0,
		})
		require.NoError(t, err)
		out = append(out, r)
	}
	return out
}

func TestFindMany_FilterSortPage(t *testing.T) {
	s := New()
	seedYachts(t, s, "Aegean", "Bosphorus", "Cyclades", "Dodecanese")

	res, err := s.FindMany(context.Background(), domain.TableYachts, ports.QueryOptions{
		Where:   map[string]any{"isAvailable": true},
		OrderBy: []ports.OrderBy{{Field: "capacity", Direction: ports.SortDesc}},
		Limit:   1,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Count)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "Cyclades", res.Records[0]["name"])

	res, err = s.FindMany(context.Background(), domain.TableYachts, ports.QueryOptions{
		OrderBy: []ports.OrderBy{{Field: "name", Direction: ports.SortAsc}},
		Limit:   2,
		Offset:  3,
	})
	require.NoError(t, err)
	assert.Equal(t, 4, res.Count)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "Dodecanese", res.Records[0]["name"])

	res, err = s.FindMany(context.Background(), domain.TableYachts, ports.QueryOptions{Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, res.Records)
}

func TestFindMany_SelectAndInclude(t *testing.T) {
	s := New()
	ctx := context.Background()
	yachts := seedYachts(t, s, "Aegean")

	_, err := s.Create(ctx, domain.TableCharters, ports.Record{"yachtId": yachts[0]["id"], "status": "PENDING"})
	require.NoError(t, err)

	res, err := s.FindMany(ctx, domain.TableCharters, ports.QueryOptions{
		Select:  []string{"id", "yachtId"},
		Include: []string{"yachts"},
	})
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	_, hasStatus := res.Records[0]["status"]
	assert.False(t, hasStatus)
	yacht, ok := res.Records[0]["yachts"].(ports.Record)
	require.True(t, ok)
	assert.Equal(t, "Aegean", yacht["name"])
}

func TestCRUD(t *testing.T) {
	s := New()
	ctx := context.Background()

	created, err := s.Create(ctx, domain.TableCustomers, ports.Record{"email": "c@voyage.test"})
	require.NoError(t, err)
	id := created["id"].(string)
	assert.NotEmpty(t, created["createdAt"])

	created["email"] = "mutated"
	got, err := s.FindUnique(ctx, domain.TableCustomers, id, ports.QueryOptions{})
	require.NoError(t, err)
	assert.Equal(t, "c@voyage.test", got["email"], "returned rows are copies")

	updated, err := s.Update(ctx, domain.TableCustomers, id, ports.Record{"firstName": "Deniz", "id": "ignored"})
	require.NoError(t, err)
	assert.Equal(t, id, updated["id"])
	assert.Equal(t, "Deniz", updated["firstName"])

	_, err = s.Update(ctx, domain.TableCustomers, "missing", ports.Record{})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, s.Delete(ctx, domain.TableCustomers, id))
	assert.ErrorIs(t, s.Delete(ctx, domain.TableCustomers, id), domain.ErrNotFound)
}

func TestCreate_UniqueEmail(t *testing.T) {
	s := New()
	ctx := context.Background()

	_, err := s.Create(ctx, domain.TableUsers, ports.Record{"email": "a@voyage.test"})
	require.NoError(t, err)
	_, err = s.Create(ctx, domain.TableUsers, ports.Record{"email": "a@voyage.test"})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestCountExists(t *testing.T) {
	s := New()
	seedYachts(t, s, "A", "B", "C")

	n, err := s.Count(context.Background(), domain.TableYachts, map[string]any{"isAvailable": false})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	ok, err := s.Exists(context.Background(), domain.TableYachts, map[string]any{"name": "Z"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTransaction_StopsAtFailure(t *testing.T) {
	s := New()
	ctx := context.Background()
	boom := errors.New("boom")

	results, err := s.Transaction(ctx,
		func(ctx context.Context) (any, error) {
			return s.Create(ctx, domain.TableYachts, ports.Record{"name": "kept"})
		},
		func(context.Context) (any, error) { return nil, boom },
	)
	assert.ErrorIs(t, err, boom)
	assert.Len(t, results, 1)

	n, _ := s.Count(ctx, domain.TableYachts, nil)
	assert.Equal(t, 1, n)
}

func TestExecuteRaw_Unsupported(t *testing.T) {
	_, err := New().ExecuteRaw(context.Background(), "select 1")
	assert.ErrorIs(t, err, domain.ErrDataStore)
}
