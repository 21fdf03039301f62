package handler

import (
	"errors"
	"fmt"

	"github.com/labstack/echo/v4"

	"github.com/tsmart/voyage-api/internal/api/response"
	"github.com/tsmart/voyage-api/internal/core/domain"
	"github.com/tsmart/voyage-api/internal/core/ports"
)

const (
	defaultPage      = 1
	defaultLimit     = 10
	defaultSortBy    = "createdAt"
	defaultSortOrder = ports.SortDesc
)

// ResourceHandler serves list/get/create/update/delete for one resource.
// C and U are the validated create and update payloads.
type ResourceHandler[C, U any] struct {
	name    string
	svc     ports.ResourceService
	resp    *response.Formatter
	filters []string
	// defaults fills fields the client may omit on create.
	defaults ports.Record
}

// NewResourceHandler names the resource for messages ("Yacht") and lists the
// query parameters accepted as equality filters on List.
func NewResourceHandler[C, U any](name string, svc ports.ResourceService, resp *response.Formatter, filters []string, defaults ports.Record) *ResourceHandler[C, U] {
	return &ResourceHandler[C, U]{name: name, svc: svc, resp: resp, filters: filters, defaults: defaults}
}

func (h *ResourceHandler[C, U]) List(c echo.Context) error {
	q := listQuery{}
	if p, err := payload[listQuery](c); err == nil {
		q = *p
	}
	if q.Page == 0 {
		q.Page = defaultPage
	}
	if q.Limit == 0 {
		q.Limit = defaultLimit
	}
	if q.SortBy == "" {
		q.SortBy = defaultSortBy
	}
	order := defaultSortOrder
	if q.SortOrder != "" {
		order = ports.SortDirection(q.SortOrder)
	}

	recs, total, err := h.svc.List(c.Request().Context(), ports.ListQuery{
		Page:      q.Page,
		Limit:     q.Limit,
		SortBy:    q.SortBy,
		SortOrder: order,
		Filters:   response.ParseFilters(c.QueryParams(), h.filters),
	})
	if err != nil {
		return err
	}
	if recs == nil {
		recs = []ports.Record{}
	}
	return h.resp.Success(c, recs, "", response.NewPagination(q.Page, q.Limit, total))
}

func (h *ResourceHandler[C, U]) Get(c echo.Context) error {
	id, err := h.id(c)
	if err != nil {
		return err
	}
	rec, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return h.notFound(err, id)
	}
	return h.resp.Success(c, rec, "", nil)
}

func (h *ResourceHandler[C, U]) Create(c echo.Context) error {
	req, err := payload[C](c)
	if err != nil {
		return err
	}
	data, err := ports.ToRecord(req)
	if err != nil {
		return fmt.Errorf("encode %s: %w", h.name, err)
	}
	for k, v := range h.defaults {
		if cur, ok := data[k]; !ok || cur == nil {
			data[k] = v
		}
	}

	rec, err := h.svc.Create(c.Request().Context(), data)
	if err != nil {
		return err
	}
	return h.resp.Created(c, rec, h.name+" created successfully")
}

func (h *ResourceHandler[C, U]) Update(c echo.Context) error {
	id, err := h.id(c)
	if err != nil {
		return err
	}
	req, err := payload[U](c)
	if err != nil {
		return err
	}
	data, err := ports.ToRecord(req)
	if err != nil {
		return fmt.Errorf("encode %s: %w", h.name, err)
	}
	if len(data) == 0 {
		return response.BadRequest("No fields to update")
	}

	rec, err := h.svc.Update(c.Request().Context(), id, data)
	if err != nil {
		return h.notFound(err, id)
	}
	return h.resp.Updated(c, rec, h.name+" updated successfully")
}

func (h *ResourceHandler[C, U]) Delete(c echo.Context) error {
	id, err := h.id(c)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return h.notFound(err, id)
	}
	return h.resp.Deleted(c, h.name+" deleted successfully")
}

func (h *ResourceHandler[C, U]) id(c echo.Context) (string, error) {
	id := c.Param("id")
	if !validID(id) {
		return "", response.BadRequest("Invalid " + h.name + " ID")
	}
	return id, nil
}

// notFound names the resource in 404s; other errors pass through unchanged.
func (h *ResourceHandler[C, U]) notFound(err error, id string) error {
	if errors.Is(err, domain.ErrNotFound) {
		return response.NotFound(h.name, id)
	}
	return err
}
