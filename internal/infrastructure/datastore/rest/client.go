// Package rest implements ports.DataStore on top of a PostgREST endpoint
// (Supabase's /rest/v1 API) using plain HTTP calls.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tsmart/voyage-api/internal/core/domain"
	"github.com/tsmart/voyage-api/internal/core/ports"
	"github.com/tsmart/voyage-api/internal/pkg/metrics"
)

const (
	driverName     = "supabase"
	defaultTimeout = 10 * time.Second
	maxErrorBody   = 4 << 10
)

// Config captures the settings needed to reach the REST endpoint.
type Config struct {
	// URL is the project root, e.g. https://xyz.supabase.co. "/rest/v1" is appended.
	URL            string
	AnonKey        string
	ServiceRoleKey string
	Timeout        time.Duration
	HTTPClient     *http.Client
}

// Client is a ports.DataStore backed by PostgREST.
type Client struct {
	baseURL string
	headers http.Header
	timeout time.Duration
	http    *http.Client
	log     zerolog.Logger
}

var _ ports.DataStore = (*Client)(nil)

// StatusError is returned when the endpoint answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("data store responded %d: %s", e.StatusCode, e.Body)
}

// Unwrap maps 409 to domain.ErrConflict and everything else to domain.ErrDataStore.
func (e *StatusError) Unwrap() error {
	if e.StatusCode == http.StatusConflict {
		return domain.ErrConflict
	}
	return domain.ErrDataStore
}

// New returns a Client. The anon key doubles as apikey; when it is empty the
// service role key is used for both headers.
func New(cfg Config, log zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	apiKey := cfg.AnonKey
	if apiKey == "" {
		apiKey = cfg.ServiceRoleKey
	}

	h := http.Header{}
	h.Set("Content-Type", "application/json")
	h.Set("Accept", "application/json")
	h.Set("apikey", apiKey)
	h.Set("Authorization", "Bearer "+cfg.ServiceRoleKey)

	return &Client{
		baseURL: strings.TrimRight(cfg.URL, "/") + "/rest/v1",
		headers: h,
		timeout: timeout,
		http:    hc,
		log:     log.With().Str("component", "datastore").Str("driver", driverName).Logger(),
	}
}

func (c *Client) FindMany(ctx context.Context, table string, opts ports.QueryOptions) (*ports.FindResult, error) {
	q := url.Values{}
	applySelect(q, opts.Select, opts.Include)
	applyWhere(q, opts.Where)
	applyOrder(q, opts.OrderBy)
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Offset > 0 {
		q.Set("offset", strconv.Itoa(opts.Offset))
	}

	var rows []ports.Record
	hdr, err := c.do(ctx, "find_many", http.MethodGet, table, q, nil, &rows, "count=exact")
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", table, err)
	}

	count := len(rows)
	if total, ok := parseContentRange(hdr.Get("Content-Range")); ok {
		count = total
	}
	return &ports.FindResult{Records: rows, Count: count}, nil
}

func (c *Client) FindUnique(ctx context.Context, table, id string, opts ports.QueryOptions) (ports.Record, error) {
	q := url.Values{}
	q.Set("id", "eq."+id)
	q.Set("limit", "1")
	applySelect(q, opts.Select, opts.Include)

	var rows []ports.Record
	if _, err := c.do(ctx, "find_unique", http.MethodGet, table, q, nil, &rows); err != nil {
		return nil, fmt.Errorf("find %s %s: %w", table, id, err)
	}
	if len(rows) == 0 {
		return nil, domain.ErrNotFound
	}
	return rows[0], nil
}

func (c *Client) Create(ctx context.Context, table string, data ports.Record) (ports.Record, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	body := cloneRecord(data)
	if _, ok := body["createdAt"]; !ok {
		body["createdAt"] = now
	}
	body["updatedAt"] = now

	var rows []ports.Record
	if _, err := c.do(ctx, "create", http.MethodPost, table, nil, body, &rows); err != nil {
		return nil, fmt.Errorf("create %s: %w", table, err)
	}
	if len(rows) == 0 {
		return body, nil
	}
	return rows[0], nil
}

func (c *Client) Update(ctx context.Context, table, id string, data ports.Record) (ports.Record, error) {
	body := cloneRecord(data)
	body["updatedAt"] = time.Now().UTC().Format(time.RFC3339Nano)

	q := url.Values{}
	q.Set("id", "eq."+id)

	var rows []ports.Record
	if _, err := c.do(ctx, "update", http.MethodPatch, table, q, body, &rows); err != nil {
		return nil, fmt.Errorf("update %s %s: %w", table, id, err)
	}
	if len(rows) == 0 {
		return nil, domain.ErrNotFound
	}
	return rows[0], nil
}

func (c *Client) Delete(ctx context.Context, table, id string) error {
	q := url.Values{}
	q.Set("id", "eq."+id)

	var rows []ports.Record
	if _, err := c.do(ctx, "delete", http.MethodDelete, table, q, nil, &rows); err != nil {
		return fmt.Errorf("delete %s %s: %w", table, id, err)
	}
	if len(rows) == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (c *Client) Count(ctx context.Context, table string, where map[string]any) (int, error) {
	q := url.Values{}
	q.Set("select", "count")
	applyWhere(q, where)

	hdr, err := c.do(ctx, "count", http.MethodHead, table, q, nil, nil, "count=exact")
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	total, _ := parseContentRange(hdr.Get("Content-Range"))
	return total, nil
}

func (c *Client) Exists(ctx context.Context, table string, where map[string]any) (bool, error) {
	n, err := c.Count(ctx, table, where)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ExecuteRaw calls the execute_sql stored procedure.
func (c *Client) ExecuteRaw(ctx context.Context, query string, params ...any) (json.RawMessage, error) {
	payload := map[string]any{"query": query, "params": params}

	var out json.RawMessage
	if _, err := c.do(ctx, "execute_raw", http.MethodPost, "rpc/execute_sql", nil, payload, &out); err != nil {
		return nil, fmt.Errorf("execute raw: %w", err)
	}
	return out, nil
}

// Transaction runs ops sequentially and stops at the first failure.
//
// PostgREST has no multi-request transactions: operations that completed
// before the failing one stay committed. Callers needing atomicity must move
// the work into a stored procedure and call it through ExecuteRaw.
func (c *Client) Transaction(ctx context.Context, ops ...ports.Operation) ([]any, error) {
	results := make([]any, 0, len(ops))
	for i, op := range ops {
		res, err := op(ctx)
		if err != nil {
			metrics.DataStoreTransactionsAbortedTotal.WithLabelValues(driverName).Inc()
			c.log.Error().Err(err).
				Int("step", i).
				Int("committed", i).
				Msg("transaction aborted, earlier operations remain committed")
			return results, &ports.TransactionError{Step: i, Committed: i, Err: err}
		}
		results = append(results, res)
	}
	return results, nil
}

// Ping checks that the REST root answers.
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.do(ctx, "ping", http.MethodHead, "", nil, nil, nil); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// do sends one request, records metrics and logs failures.
func (c *Client) do(
	ctx context.Context,
	op, method, path string,
	q url.Values,
	body, out any,
	prefer ...string,
) (http.Header, error) {
	start := time.Now()
	hdr, err := c.send(ctx, method, path, q, body, out, prefer)
	metrics.DataStoreRequestDuration.WithLabelValues(driverName, op).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.DataStoreErrorsTotal.WithLabelValues(driverName, op).Inc()
		c.log.Error().Err(err).
			Str("operation", op).
			Str("method", method).
			Str("path", path).
			Msg("data store request failed")
	}
	return hdr, err
}

func (c *Client) send(
	ctx context.Context,
	method, path string,
	q url.Values,
	body, out any,
	prefer []string,
) (http.Header, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	target := c.baseURL + "/" + path
	if len(q) > 0 {
		target += "?" + q.Encode()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode body: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header = c.headers.Clone()
	req.Header.Set("Prefer", strings.Join(append([]string{"return=representation"}, prefer...), ","))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrDataStore, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return resp.Header, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}

	if out != nil && method != http.MethodHead && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
			return resp.Header, fmt.Errorf("%w: decode response: %w", domain.ErrDataStore, err)
		}
	}
	return resp.Header, nil
}

// applySelect sets "select", appending rel(*) for every include.
func applySelect(q url.Values, fields, include []string) {
	sel := append([]string(nil), fields...)
	if len(include) > 0 {
		if len(sel) == 0 {
			sel = append(sel, "*")
		}
		for _, rel := range include {
			sel = append(sel, rel+"(*)")
		}
	}
	if len(sel) > 0 {
		q.Set("select", strings.Join(sel, ","))
	}
}

// applyWhere adds field=eq.value for every non-nil value.
func applyWhere(q url.Values, where map[string]any) {
	for k, v := range where {
		if v == nil {
			continue
		}
		q.Set(k, "eq."+formatValue(v))
	}
}

func applyOrder(q url.Values, order []ports.OrderBy) {
	if len(order) == 0 {
		return
	}
	parts := make([]string, 0, len(order))
	for _, o := range order {
		dir := o.Direction
		if dir == "" {
			dir = ports.SortAsc
		}
		parts = append(parts, o.Field+"."+string(dir))
	}
	q.Set("order", strings.Join(parts, ","))
}

func formatValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case time.Time:
		return t.UTC().Format(time.RFC3339Nano)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

// parseContentRange extracts the total from "0-9/25" or "*/25".
func parseContentRange(v string) (int, bool) {
	idx := strings.LastIndexByte(v, '/')
	if idx < 0 || idx == len(v)-1 {
		return 0, false
	}
	total, err := strconv.Atoi(v[idx+1:])
	if err != nil {
		return 0, false
	}
	return total, true
}

func cloneRecord(r ports.Record) ports.Record {
	out := make(ports.Record, len(r)+2)
	maps.Copy(out, r)
	return out
}
