package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kidguard/parental-api/internal/api/metrics"
	"github.com/kidguard/parental-api/internal/core/domain"
	"github.com/kidguard/parental-api/internal/core/ports"
)

const (
	flowToken  = "token"
	flowLogout = "logout"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Token exchanges a username and password for a bearer token.
//
// @Summary      Issue an access token
// @Tags         auth
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        username  formData  string  true  "Username"
// @Param        password  formData  string  true  "Password"
// @Success      200       {object}  tokenResponse
// @Failure      401       {object}  errorResponse
// @Failure      429       {object}  errorResponse
// @Router       /token [post]
func (h *AuthHandler) Token(c echo.Context) error {
	var req tokenRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	token, err := h.authService.Login(c.Request().Context(), req.Username, req.Password)
	observeLogin(flowToken, err)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer"})
}

// Register creates a parent account.
//
// @Summary      Register a parent
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      userCreateRequest  true  "Parent credentials"
// @Success      201   {object}  domain.User
// @Failure      400   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /users/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req userCreateRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.authService.RegisterParent(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return err
	}
	metrics.ParentsRegisteredTotal.Inc()

	return c.JSON(http.StatusCreated, user)
}

// VerifyParentForLogout checks the parent's password before a child device signs out.
//
// @Summary      Verify parent password for child logout
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      verifyLogoutRequest  true  "Child username and parent password"
// @Success      200   {object}  verifyLogoutResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Router       /users/verify-parent-for-logout [post]
func (h *AuthHandler) VerifyParentForLogout(c echo.Context) error {
	var req verifyLogoutRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	verified, err := h.authService.VerifyParentForLogout(c.Request().Context(), req.ChildUsername, req.ParentPassword)
	observeLogin(flowLogout, err)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			return echo.NewHTTPError(http.StatusUnauthorized, "Incorrect parent password")
		}
		return err
	}

	return c.JSON(http.StatusOK, verifyLogoutResponse{Verified: verified})
}

// Me returns the authenticated parent.
//
// @Summary      Current user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.User
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /users/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

func observeLogin(flow string, err error) {
	result := metrics.ResultSuccess
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrTooManyAttempts):
		result = metrics.ResultThrottled
	case errors.Is(err, domain.ErrInvalidCredentials):
		result = metrics.ResultInvalid
	default:
		result = metrics.ResultError
	}
	metrics.LoginAttemptsTotal.WithLabelValues(flow, result).Inc()
}
