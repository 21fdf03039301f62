package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tsmart/voyage-api/internal/core/domain"
	"github.com/tsmart/voyage-api/internal/core/ports"
)

// ResourceService passes CRUD for one table straight through to the data store.
type ResourceService struct {
	store  ports.DataStore
	table  string
	logger zerolog.Logger
}

var _ ports.ResourceService = (*ResourceService)(nil)

func NewResourceService(store ports.DataStore, table string, logger zerolog.Logger) *ResourceService {
	return &ResourceService{
		store:  store,
		table:  table,
		logger: logger.With().Str("resource", table).Logger(),
	}
}

func (s *ResourceService) List(ctx context.Context, q ports.ListQuery) ([]ports.Record, int, error) {
	opts := ports.QueryOptions{
		Where:   q.Filters,
		Limit:   q.Limit,
		Offset:  q.Offset(),
		Include: q.Include,
	}
	if q.SortBy != "" {
		dir := q.SortOrder
		if dir == "" {
			dir = ports.SortDesc
		}
		opts.OrderBy = []ports.OrderBy{{Field: q.SortBy, Direction: dir}}
	}

	res, err := s.store.FindMany(ctx, s.table, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list %s: %w", s.table, err)
	}
	return res.Records, res.Count, nil
}

func (s *ResourceService) Get(ctx context.Context, id string) (ports.Record, error) {
	rec, err := s.store.FindUnique(ctx, s.table, id, ports.QueryOptions{})
	if err != nil {
		return nil, fmt.Errorf("get %s %s: %w", s.table, id, err)
	}
	return rec, nil
}

func (s *ResourceService) Create(ctx context.Context, data ports.Record) (ports.Record, error) {
	rec, err := s.store.Create(ctx, s.table, data)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", s.table, err)
	}
	s.logger.Info().Interface("id", rec["id"]).Msg("record created")
	return rec, nil
}

func (s *ResourceService) Update(ctx context.Context, id string, data ports.Record) (ports.Record, error) {
	rec, err := s.store.Update(ctx, s.table, id, data)
	if err != nil {
		return nil, fmt.Errorf("update %s %s: %w", s.table, id, err)
	}
	return rec, nil
}

func (s *ResourceService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, s.table, id); err != nil {
		return fmt.Errorf("delete %s %s: %w", s.table, id, err)
	}
	s.logger.Info().Str("id", id).Msg("record deleted")
	return nil
}

// YachtService refuses to delete a yacht that still has a confirmed charter.
type YachtService struct {
	*ResourceService
}

func NewYachtService(store ports.DataStore, logger zerolog.Logger) *YachtService {
	return &YachtService{ResourceService: NewResourceService(store, domain.TableYachts, logger)}
}

func (s *YachtService) Delete(ctx context.Context, id string) error {
	active, err := s.store.Exists(ctx, domain.TableCharters, map[string]any{
		"yachtId": id,
		"status":  string(domain.CharterConfirmed),
	})
	if err != nil {
		return fmt.Errorf("delete yacht %s: check charters: %w", id, err)
	}
	if active {
		return domain.ErrYachtHasActiveCharters
	}
	return s.ResourceService.Delete(ctx, id)
}

// CharterService books charters against existing yachts. New charters always
// start PENDING.
type CharterService struct {
	*ResourceService
}

func NewCharterService(store ports.DataStore, logger zerolog.Logger) *CharterService {
	return &CharterService{ResourceService: NewResourceService(store, domain.TableCharters, logger)}
}

func (s *CharterService) Create(ctx context.Context, data ports.Record) (ports.Record, error) {
	yachtID, _ := data["yachtId"].(string)
	if yachtID != "" {
		if _, err := s.store.FindUnique(ctx, domain.TableYachts, yachtID, ports.QueryOptions{Select: []string{"id"}}); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, domain.ErrYachtNotFound
			}
			return nil, fmt.Errorf("create charter: yacht %s: %w", yachtID, err)
		}
	}

	rec := make(ports.Record, len(data)+1)
	for k, v := range data {
		rec[k] = v
	}
	rec["status"] = string(domain.CharterPending)
	return s.ResourceService.Create(ctx, rec)
}

// Get expands the booked yacht inline.
func (s *CharterService) Get(ctx context.Context, id string) (ports.Record, error) {
	rec, err := s.store.FindUnique(ctx, domain.TableCharters, id, ports.QueryOptions{Include: []string{domain.TableYachts}})
	if err != nil {
		return nil, fmt.Errorf("get charters %s: %w", id, err)
	}
	return rec, nil
}

// UserService exposes accounts to administrators. Password hashes never leave it.
type UserService struct {
	*ResourceService
}

func NewUserService(store ports.DataStore, logger zerolog.Logger) *UserService {
	return &UserService{ResourceService: NewResourceService(store, domain.TableUsers, logger)}
}

func (s *UserService) List(ctx context.Context, q ports.ListQuery) ([]ports.Record, int, error) {
	recs, total, err := s.ResourceService.List(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	for _, r := range recs {
		stripSecrets(r)
	}
	return recs, total, nil
}

func (s *UserService) Get(ctx context.Context, id string) (ports.Record, error) {
	rec, err := s.ResourceService.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return stripSecrets(rec), nil
}

// Update never touches the stored hash; passwords change through AuthService.
func (s *UserService) Update(ctx context.Context, id string, data ports.Record) (ports.Record, error) {
	patch := make(ports.Record, len(data))
	for k, v := range data {
		if k == "password" || k == "email" {
			continue
		}
		patch[k] = v
	}
	rec, err := s.ResourceService.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	return stripSecrets(rec), nil
}

func (s *UserService) Create(context.Context, ports.Record) (ports.Record, error) {
	return nil, fmt.Errorf("create users: accounts are created through registration: %w", domain.ErrForbidden)
}

func stripSecrets(r ports.Record) ports.Record {
	delete(r, "password")
	return r
}
