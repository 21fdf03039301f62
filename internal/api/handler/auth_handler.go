package handler

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/tsmart/voyage-api/internal/api/response"
	"github.com/tsmart/voyage-api/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
	resp        *response.Formatter
}

func NewAuthHandler(authService ports.AuthService, resp *response.Formatter) *AuthHandler {
	return &AuthHandler{authService: authService, resp: resp}
}

// Register creates a customer account and signs it in.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  response.Envelope{data=domain.AuthResult}
// @Failure      400   {object}  response.Envelope
// @Failure      409   {object}  response.Envelope
// @Failure      500   {object}  response.Envelope
// @Router       /api/auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	req, err := payload[registerRequest](c)
	if err != nil {
		return err
	}

	result, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	})
	if err != nil {
		return err
	}
	return h.resp.Created(c, result, "User registered successfully")
}

// Login authenticates a user and returns an access and a refresh token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  response.Envelope{data=domain.AuthResult}
// @Failure      400   {object}  response.Envelope
// @Failure      401   {object}  response.Envelope
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	req, err := payload[loginRequest](c)
	if err != nil {
		return err
	}

	result, err := h.authService.Login(c.Request().Context(), strings.ToLower(strings.TrimSpace(req.Email)), req.Password)
	if err != nil {
		return err
	}
	return h.resp.Success(c, result, "Login successful", nil)
}

// Refresh exchanges a refresh token for a new token pair.
//
// @Summary      Refresh tokens
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      refreshRequest  true  "Refresh token"
// @Success      200   {object}  response.Envelope{data=domain.AuthResult}
// @Failure      401   {object}  response.Envelope
// @Router       /api/auth/refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	req, err := payload[refreshRequest](c)
	if err != nil {
		return err
	}

	result, err := h.authService.RefreshToken(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return err
	}
	return h.resp.Success(c, result, "Token refreshed successfully", nil)
}

// ResetPassword always answers 200 so callers cannot probe for accounts.
//
// @Summary      Request a password reset
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      resetPasswordRequest  true  "Account email"
// @Success      200   {object}  response.Envelope
// @Router       /api/auth/password/reset [post]
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	req, err := payload[resetPasswordRequest](c)
	if err != nil {
		return err
	}

	if err := h.authService.ResetPassword(c.Request().Context(), strings.ToLower(strings.TrimSpace(req.Email))); err != nil {
		return err
	}
	return h.resp.Success(c, nil, "If the email is registered, password reset instructions have been sent", nil)
}

// ChangePassword updates the caller's password.
//
// @Summary      Change password
// @Tags         auth
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body      changePasswordRequest  true  "Current and new password"
// @Success      200   {object}  response.Envelope
// @Failure      400   {object}  response.Envelope
// @Failure      401   {object}  response.Envelope
// @Router       /api/auth/password [put]
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	rc, err := caller(c)
	if err != nil {
		return err
	}
	req, err := payload[changePasswordRequest](c)
	if err != nil {
		return err
	}

	if err := h.authService.ChangePassword(c.Request().Context(), rc.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return h.resp.Success(c, nil, "Password updated successfully", nil)
}

// Me returns the account behind the bearer token.
//
// @Summary      Current user
// @Tags         auth
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Envelope{data=domain.User}
// @Failure      401  {object}  response.Envelope
// @Router       /api/auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	if _, err := caller(c); err != nil {
		return err
	}
	_, token, _ := strings.Cut(c.Request().Header.Get(echo.HeaderAuthorization), " ")

	user, err := h.authService.GetUserByToken(c.Request().Context(), strings.TrimSpace(token))
	if err != nil {
		return err
	}
	return h.resp.Success(c, user, "", nil)
}
