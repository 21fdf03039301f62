package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsmart/voyage-api/internal/core/domain"
	"github.com/tsmart/voyage-api/internal/core/ports"
	"github.com/tsmart/voyage-api/pkg/logger"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(Config{URL: srv.URL, AnonKey: "anon", ServiceRoleKey: "service"}, logger.Nop())
}

func TestFindMany_BuildsQueryAndReadsCount(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/rest/v1/yachts", r.URL.Path)
		assert.Equal(t, "anon", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer service", r.Header.Get("Authorization"))
		assert.Contains(t, r.Header.Get("Prefer"), "count=exact")

		q := r.URL.Query()
		assert.Equal(t, "eq.true", q.Get("isAvailable"))
		assert.Equal(t, "eq.Cesme", q.Get("location"))
		assert.Empty(t, q.Get("skipped"))
		assert.Equal(t, "createdAt.desc,name.asc", q.Get("order"))
		assert.Equal(t, "10", q.Get("limit"))
		assert.Equal(t, "20", q.Get("offset"))
		assert.Equal(t, "*,charters(*)", q.Get("select"))

		w.Header().Set("Content-Range", "20-21/25")
		_, _ = io.WriteString(w, `[{"id":"y1"},{"id":"y2"}]`)
	})

	res, err := c.FindMany(context.Background(), "yachts", ports.QueryOptions{
		Where: map[string]any{"isAvailable": true, "location": "Cesme", "skipped": nil},
		OrderBy: []ports.OrderBy{
			{Field: "createdAt", Direction: ports.SortDesc},
			{Field: "name"},
		},
		Limit:   10,
		Offset:  20,
		Include: []string{"charters"},
	})
	require.NoError(t, err)
	assert.Len(t, res.Records, 2)
	assert.Equal(t, 25, res.Count)
	assert.Equal(t, "y1", res.Records[0]["id"])
}

func TestFindMany_NumericFiltersUsePlainNotation(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "eq.2500000", q.Get("pricePerDay"))
		assert.Equal(t, "eq.0.00001", q.Get("rate"))
		assert.Equal(t, "eq.12", q.Get("capacity"))
		_, _ = io.WriteString(w, `[]`)
	})

	_, err := c.FindMany(context.Background(), "yachts", ports.QueryOptions{
		Where: map[string]any{"pricePerDay": float64(2500000), "rate": 0.00001, "capacity": float64(12)},
	})
	require.NoError(t, err)
}

func TestFindMany_CountFallsBackToRows(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[{"id":"a"}]`)
	})

	res, err := c.FindMany(context.Background(), "customers", ports.QueryOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Count)
}

func TestFindUnique_NotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "eq.missing", r.URL.Query().Get("id"))
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		_, _ = io.WriteString(w, `[]`)
	})

	_, err := c.FindUnique(context.Background(), "yachts", "missing", ports.QueryOptions{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreate_StampsTimestamps(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.Header.Get("Prefer"), "return=representation")

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Blue Pearl", body["name"])
		assert.NotEmpty(t, body["createdAt"])
		assert.NotEmpty(t, body["updatedAt"])

		body["id"] = "y-1"
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode([]map[string]any{body})
	})

	input := ports.Record{"name": "Blue Pearl"}
	rec, err := c.Create(context.Background(), "yachts", input)
	require.NoError(t, err)
	assert.Equal(t, "y-1", rec["id"])
	_, mutated := input["createdAt"]
	assert.False(t, mutated, "caller's record must not be mutated")
}

func TestUpdate_NoRowsIsNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "eq.y-9", r.URL.Query().Get("id"))
		_, _ = io.WriteString(w, `[]`)
	})

	_, err := c.Update(context.Background(), "yachts", "y-9", ports.Record{"name": "x"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCount_ParsesContentRange(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		assert.Equal(t, "eq.CONFIRMED", r.URL.Query().Get("status"))
		w.Header().Set("Content-Range", "*/3")
	})

	n, err := c.Count(context.Background(), "charters", map[string]any{"status": "CONFIRMED"})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	ok, err := c.Exists(context.Background(), "charters", map[string]any{"status": "CONFIRMED"})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestErrorStatuses(t *testing.T) {
	status := http.StatusInternalServerError
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = io.WriteString(w, `{"message":"boom"}`)
	})

	_, err := c.FindMany(context.Background(), "yachts", ports.QueryOptions{})
	assert.ErrorIs(t, err, domain.ErrDataStore)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusInternalServerError, se.StatusCode)
	assert.Contains(t, se.Body, "boom")

	status = http.StatusConflict
	_, err = c.Create(context.Background(), "users", ports.Record{"email": "a@b.c"})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestExecuteRaw_PostsToRPC(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/rpc/execute_sql", r.URL.Path)
		var body struct {
			Query  string `json:"query"`
			Params []any  `json:"params"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "select 1", body.Query)
		assert.Len(t, body.Params, 1)
		_, _ = io.WriteString(w, `[{"?column?":1}]`)
	})

	out, err := c.ExecuteRaw(context.Background(), "select 1", 42)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"?column?":1}]`, string(out))
}

func TestTransaction_IsNotAtomic(t *testing.T) {
	c := New(Config{URL: "http://unused", ServiceRoleKey: "k"}, logger.Nop())

	var committed atomic.Int32
	ok := func(ctx context.Context) (any, error) {
		committed.Add(1)
		return "ok", nil
	}
	fail := func(ctx context.Context) (any, error) {
		return nil, errors.New("step failed")
	}
	never := func(ctx context.Context) (any, error) {
		t.Fatalf("operation after failure must not run")
		return nil, nil
	}

	results, err := c.Transaction(context.Background(), ok, ok, fail, never)
	require.Error(t, err)

	var txErr *ports.TransactionError
	require.True(t, errors.As(err, &txErr))
	assert.Equal(t, 2, txErr.Step)
	assert.Equal(t, 2, txErr.Committed)
	assert.Equal(t, int32(2), committed.Load())
	assert.Equal(t, []any{"ok", "ok"}, results)
}

func TestPing(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	})
	assert.NoError(t, c.Ping(context.Background()))
}

func TestParseContentRange(t *testing.T) {
	cases := map[string]struct {
		total int
		ok    bool
	}{
		"0-9/25": {25, true},
		"*/0":    {0, true},
		"0-9/*":  {0, false},
		"":       {0, false},
		"0-9/":   {0, false},
	}
	for in, want := range cases {
		total, ok := parseContentRange(in)
		assert.Equal(t, want.ok, ok, in)
		assert.Equal(t, want.total, total, in)
	}
}
