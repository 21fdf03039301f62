package ports

import "context"

// ListQuery carries the paging, ordering and equality filters of a list call.
type ListQuery struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder SortDirection
	Filters   map[string]any
	Include   []string
}

// Offset is the zero-based row offset of the requested page.
func (q ListQuery) Offset() int {
	if q.Page < 1 {
		return 0
	}
	return (q.Page - 1) * q.Limit
}

// ResourceService proxies CRUD for one table of the backing store.
type ResourceService interface {
	List(ctx context.Context, q ListQuery) ([]Record, int, error)
	Get(ctx context.Context, id string) (Record, error)
	Create(ctx context.Context, data Record) (Record, error)
	Update(ctx context.Context, id string, data Record) (Record, error)
	Delete(ctx context.Context, id string) error
}
