package ports

import (
	"context"
	"encoding/json"
	"fmt"
)

// Record is a single row as returned by the backing store.
type Record map[string]any

// SortDirection is "asc" or "desc".
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// OrderBy is one "field.direction" ordering pair.
type OrderBy struct {
	Field     string
	Direction SortDirection
}

// QueryOptions shapes a FindMany / FindUnique call.
// Filters are equality-only; ranges, OR and nested predicates are not supported.
type QueryOptions struct {
	Select  []string
	Where   map[string]any
	OrderBy []OrderBy
	Limit   int
	Offset  int
	// Include names related tables to expand inline.
	Include []string
}

// FindResult is a page of rows plus the total matching count when the store
// reports one (falls back to len(Records)).
type FindResult struct {
	Records []Record
	Count   int
}

// Operation is one step of a Transaction. It receives the context to use for
// its data store calls.
type Operation func(ctx context.Context) (any, error)

// DataStore is the generic entity access layer over the external database.
//
// Every method logs its failures and returns them as errors; a missing row is
// reported as domain.ErrNotFound.
type DataStore interface {
	FindMany(ctx context.Context, table string, opts QueryOptions) (*FindResult, error)
	FindUnique(ctx context.Context, table, id string, opts QueryOptions) (Record, error)
	Create(ctx context.Context, table string, data Record) (Record, error)
	Update(ctx context.Context, table, id string, data Record) (Record, error)
	Delete(ctx context.Context, table, id string) error
	Count(ctx context.Context, table string, where map[string]any) (int, error)
	Exists(ctx context.Context, table string, where map[string]any) (bool, error)
	ExecuteRaw(ctx context.Context, query string, params ...any) (json.RawMessage, error)
	// Transaction runs ops in order and stops at the first failure.
	// Whether earlier operations are rolled back depends on the driver; the
	// REST driver is NOT atomic and leaves them committed.
	Transaction(ctx context.Context, ops ...Operation) ([]any, error)
	Ping(ctx context.Context) error
}

// DecodeRecord converts a Record into a typed value through its JSON form.
func DecodeRecord(r Record, v any) error {
	b, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

// ToRecord converts a typed value (usually a request payload) into a Record.
// Fields tagged omitempty and left empty are not part of the result.
func ToRecord(v any) (Record, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var r Record
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, err
	}
	return r, nil
}

// TransactionError reports which step stopped a Transaction and how many
// earlier steps were left committed by the driver.
type TransactionError struct {
	Step      int
	Committed int
	Err       error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("transaction aborted at step %d (%d committed): %v", e.Step, e.Committed, e.Err)
}

func (e *TransactionError) Unwrap() error { return e.Err }
