package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/tsmart/voyage-api/internal/api/middleware"
	"github.com/tsmart/voyage-api/internal/core/domain"
)

// Guard returns the authentication chain admitting required and above.
type Guard func(required domain.Role) echo.MiddlewareFunc

// Public marks an operation that needs no token.
const Public domain.Role = ""

// Op names one of the CRUD operations of a ResourceHandler.
type Op int

const (
	OpList Op = iota
	OpGet
	OpCreate
	OpUpdate
	OpDelete
)

// Access maps each exposed operation to its minimum role. Operations absent
// from the map are not routed.
type Access map[Op]domain.Role

// Routes registers the auth endpoints on g.
func (h *AuthHandler) Routes(g *echo.Group, guard Guard) {
	g.POST("/register", h.Register, middleware.Validate[registerRequest]())
	g.POST("/login", h.Login, middleware.Validate[loginRequest]())
	g.POST("/refresh", h.Refresh, middleware.Validate[refreshRequest]())
	g.POST("/password/reset", h.ResetPassword, middleware.Validate[resetPasswordRequest]())
	g.PUT("/password", h.ChangePassword, chain(guard, domain.RoleCustomer, middleware.Validate[changePasswordRequest]()))
	g.GET("/me", h.Me, chain(guard, domain.RoleCustomer))
}

// Routes registers the operations listed in access on g. Updates are served
// on both PUT and PATCH since every update is partial.
func (h *ResourceHandler[C, U]) Routes(g *echo.Group, guard Guard, access Access) {
	if role, ok := access[OpList]; ok {
		g.GET("", h.List, chain(guard, role, middleware.Validate[listQuery]()))
	}
	if role, ok := access[OpGet]; ok {
		g.GET("/:id", h.Get, chain(guard, role))
	}
	if role, ok := access[OpCreate]; ok {
		g.POST("", h.Create, chain(guard, role, middleware.Validate[C]()))
	}
	if role, ok := access[OpUpdate]; ok {
		mw := chain(guard, role, middleware.Validate[U]())
		g.PUT("/:id", h.Update, mw)
		g.PATCH("/:id", h.Update, mw)
	}
	if role, ok := access[OpDelete]; ok {
		g.DELETE("/:id", h.Delete, chain(guard, role))
	}
}

// chain puts the guard for role (if any) ahead of mws.
func chain(guard Guard, role domain.Role, mws ...echo.MiddlewareFunc) echo.MiddlewareFunc {
	if role == Public {
		return middleware.Compose(mws...)
	}
	return middleware.Compose(append([]echo.MiddlewareFunc{guard(role)}, mws...)...)
}
