// Package memory is an in-process ports.DataStore used for local development
// and tests. Rows are copied on the way in and out; nothing is persisted.
package memory

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tsmart/voyage-api/internal/core/domain"
	"github.com/tsmart/voyage-api/internal/core/ports"
	"github.com/tsmart/voyage-api/internal/pkg/metrics"
)

// Store keeps tables as ordered slices of rows guarded by a single mutex.
type Store struct {
	mu     sync.RWMutex
	tables map[string][]ports.Record
	// unique lists, per table, the fields that must not repeat.
	unique map[string][]string
	now    func() time.Time
}

var _ ports.DataStore = (*Store)(nil)

// New returns an empty store enforcing a unique users.email.
func New() *Store {
	return &Store{
		tables: make(map[string][]ports.Record),
		unique: map[string][]string{domain.TableUsers: {"email"}},
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) FindMany(_ context.Context, table string, opts ports.QueryOptions) (*ports.FindResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rows []ports.Record
	for _, r := range s.tables[table] {
		if matches(r, opts.Where) {
			rows = append(rows, r)
		}
	}
	total := len(rows)

	if len(opts.OrderBy) > 0 {
		rows = slices.Clone(rows)
		slices.SortStableFunc(rows, func(a, b ports.Record) int {
			for _, o := range opts.OrderBy {
				c := compare(a[o.Field], b[o.Field])
				if o.Direction == ports.SortDesc {
					c = -c
				}
				if c != 0 {
					return c
				}
			}
			return 0
		})
	}

	start := min(max(opts.Offset, 0), len(rows))
	end := len(rows)
	if opts.Limit > 0 {
		end = min(start+opts.Limit, len(rows))
	}

	out := make([]ports.Record, 0, end-start)
	for _, r := range rows[start:end] {
		out = append(out, s.expand(project(r, opts.Select), opts.Include))
	}
	return &ports.FindResult{Records: out, Count: total}, nil
}

func (s *Store) FindUnique(ctx context.Context, table, id string, opts ports.QueryOptions) (ports.Record, error) {
	q := opts
	q.Where = map[string]any{"id": id}
	q.Limit = 1
	q.Offset = 0
	res, err := s.FindMany(ctx, table, q)
	if err != nil {
		return nil, err
	}
	if len(res.Records) == 0 {
		return nil, domain.ErrNotFound
	}
	return res.Records[0], nil
}

func (s *Store) Create(_ context.Context, table string, data ports.Record) (ports.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, err := normalize(data)
	if err != nil {
		return nil, err
	}
	if id, _ := row["id"].(string); id == "" {
		row["id"] = uuid.NewString()
	}
	now := s.now().Format(time.RFC3339Nano)
	if _, ok := row["createdAt"]; !ok {
		row["createdAt"] = now
	}
	row["updatedAt"] = now

	for _, existing := range s.tables[table] {
		if existing["id"] == row["id"] {
			return nil, fmt.Errorf("create %s: %w", table, domain.ErrConflict)
		}
		for _, f := range s.unique[table] {
			if v, ok := row[f]; ok && existing[f] == v {
				return nil, fmt.Errorf("create %s: duplicate %s: %w", table, f, domain.ErrConflict)
			}
		}
	}

	s.tables[table] = append(s.tables[table], row)
	return maps.Clone(row), nil
}

func (s *Store) Update(_ context.Context, table, id string, data ports.Record) (ports.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	patch, err := normalize(data)
	if err != nil {
		return nil, err
	}
	delete(patch, "id")

	for i, r := range s.tables[table] {
		if r["id"] != id {
			continue
		}
		row := maps.Clone(r)
		maps.Copy(row, patch)
		row["updatedAt"] = s.now().Format(time.RFC3339Nano)
		s.tables[table][i] = row
		return maps.Clone(row), nil
	}
	return nil, domain.ErrNotFound
}

func (s *Store) Delete(_ context.Context, table, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := s.tables[table]
	i := slices.IndexFunc(rows, func(r ports.Record) bool { return r["id"] == id })
	if i < 0 {
		return domain.ErrNotFound
	}
	s.tables[table] = slices.Delete(rows, i, i+1)
	return nil
}

func (s *Store) Count(_ context.Context, table string, where map[string]any) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, r := range s.tables[table] {
		if matches(r, where) {
			n++
		}
	}
	return n, nil
}

func (s *Store) Exists(ctx context.Context, table string, where map[string]any) (bool, error) {
	n, err := s.Count(ctx, table, where)
	return n > 0, err
}

func (s *Store) ExecuteRaw(context.Context, string, ...any) (json.RawMessage, error) {
	return nil, fmt.Errorf("execute raw: %w: not supported by the memory driver", domain.ErrDataStore)
}

// Transaction runs ops in order and stops at the first failure. Earlier
// writes stay applied.
func (s *Store) Transaction(ctx context.Context, ops ...ports.Operation) ([]any, error) {
	results := make([]any, 0, len(ops))
	for i, op := range ops {
		res, err := op(ctx)
		if err != nil {
			metrics.DataStoreTransactionsAbortedTotal.WithLabelValues("memory").Inc()
			return results, &ports.TransactionError{Step: i, Committed: i, Err: err}
		}
		results = append(results, res)
	}
	return results, nil
}

func (s *Store) Ping(context.Context) error { return nil }

// expand attaches related rows: "yachts" on a charter resolves yachtId.
// Must be called with the read lock held.
func (s *Store) expand(r ports.Record, include []string) ports.Record {
	for _, rel := range include {
		fk, _ := r[strings.TrimSuffix(rel, "s")+"Id"].(string)
		var related []ports.Record
		for _, other := range s.tables[rel] {
			if fk != "" && other["id"] == fk {
				related = append(related, maps.Clone(other))
			}
		}
		if len(related) == 1 {
			r[rel] = related[0]
		} else {
			r[rel] = related
		}
	}
	return r
}

// normalize copies data through JSON so stored values have the same shapes
// (string, float64, bool, nested maps) a remote store would hand back.
func normalize(data ports.Record) (ports.Record, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: encode row: %w", domain.ErrDataStore, err)
	}
	row := ports.Record{}
	if err := json.Unmarshal(b, &row); err != nil {
		return nil, fmt.Errorf("%w: decode row: %w", domain.ErrDataStore, err)
	}
	return row, nil
}

func matches(r ports.Record, where map[string]any) bool {
	for k, want := range where {
		if want == nil {
			continue
		}
		if compare(r[k], want) != 0 {
			return false
		}
	}
	return true
}

func project(r ports.Record, fields []string) ports.Record {
	if len(fields) == 0 || slices.Contains(fields, "*") {
		return maps.Clone(r)
	}
	out := make(ports.Record, len(fields))
	for _, f := range fields {
		if v, ok := r[f]; ok {
			out[f] = v
		}
	}
	return out
}

func compare(a, b any) int {
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			return cmp.Compare(fa, fb)
		}
	}
	if ba, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok {
			switch {
			case ba == bb:
				return 0
			case !ba:
				return -1
			default:
				return 1
			}
		}
	}
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		default:
			return 1
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
