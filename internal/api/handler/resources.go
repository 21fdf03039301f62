package handler

import (
	"github.com/tsmart/voyage-api/internal/api/response"
	"github.com/tsmart/voyage-api/internal/core/domain"
	"github.com/tsmart/voyage-api/internal/core/ports"
)

// Equality filters accepted on each list endpoint.
var (
	yachtFilters    = []string{"isAvailable", "location", "type", "capacity", "currency"}
	customerFilters = []string{"email", "nationality"}
	charterFilters  = []string{"status", "customerId", "yachtId", "packageType"}
	userFilters     = []string{"role", "isActive", "email"}
)

// NewYachtHandler serves /yachts. New yachts default to USD, available, with
// no features or images.
func NewYachtHandler(svc ports.ResourceService, resp *response.Formatter) *ResourceHandler[createYachtRequest, updateYachtRequest] {
	return NewResourceHandler[createYachtRequest, updateYachtRequest]("Yacht", svc, resp, yachtFilters, ports.Record{
		"currency":    domain.CurrencyUSD,
		"features":    []string{},
		"images":      []string{},
		"isAvailable": true,
	})
}

func NewCustomerHandler(svc ports.ResourceService, resp *response.Formatter) *ResourceHandler[createCustomerRequest, updateCustomerRequest] {
	return NewResourceHandler[createCustomerRequest, updateCustomerRequest]("Customer", svc, resp, customerFilters, nil)
}

func NewCharterHandler(svc ports.ResourceService, resp *response.Formatter) *ResourceHandler[createCharterRequest, updateCharterRequest] {
	return NewResourceHandler[createCharterRequest, updateCharterRequest]("Charter", svc, resp, charterFilters, nil)
}

// NewUserHandler serves /users. Accounts are created through /auth/register
// only, so the create payload is never bound.
func NewUserHandler(svc ports.ResourceService, resp *response.Formatter) *ResourceHandler[struct{}, updateUserRequest] {
	return NewResourceHandler[struct{}, updateUserRequest]("User", svc, resp, userFilters, nil)
}
