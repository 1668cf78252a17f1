package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bioren/user-directory/internal/api/metrics"
	"github.com/bioren/user-directory/internal/core/domain"
	"github.com/bioren/user-directory/internal/core/ports"
	"github.com/bioren/user-directory/internal/core/service"
)

const (
	opRegister = "register"
	opLogin    = "login"
	opLookup   = "lookup"
)

// UserHandler exposes the user directory over HTTP. Token handling is left to
// the service, which receives the raw Authorization header.
type UserHandler struct {
	service ports.UserService
	metrics *metrics.Metrics
}

func NewUserHandler(service ports.UserService, m *metrics.Metrics) *UserHandler {
	return &UserHandler{service: service, metrics: m}
}

// registerRequest carries the display name verbatim. Any string is accepted.
type registerRequest struct {
	Name string `json:"name"`
}

type loginResponse struct {
	SubjectID string `json:"subjectId"`
	Email     string `json:"email"`
}

// Register creates or overwrites the caller's profile.
//
// @Summary      Register the authenticated user
// @Description  Verifies the bearer token and stores a profile keyed by the token subject.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      registerRequest  true  "Display name"
// @Success      201   {object}  domain.UserProfile
// @Failure      400   {object}  errorResponse
// @Failure      401   {string}  string  "invalid or expired token"
// @Failure      500   {object}  errorResponse
// @Router       /api/auth/register [post]
func (h *UserHandler) Register(c echo.Context) error {
	// A missing or malformed header is rejected before the body is read, so
	// unauthenticated callers always get 401.
	if _, err := service.ParseBearer(authorization(c)); err != nil {
		h.metrics.ObserveOperation(opRegister, metrics.ResultUnauthorized)
		return err
	}

	var req registerRequest
	if err := c.Bind(&req); err != nil {
		h.metrics.ObserveOperation(opRegister, metrics.ResultInvalid)
		return domain.ErrInvalidPayload
	}
	if err := c.Validate(&req); err != nil {
		h.metrics.ObserveOperation(opRegister, metrics.ResultInvalid)
		return fmt.Errorf("%w: %s", domain.ErrInvalidPayload, err.Error())
	}

	profile, err := h.service.Register(c.Request().Context(), authorization(c), req.Name)
	h.metrics.ObserveOperation(opRegister, resultOf(err))
	if err != nil {
		return err
	}

	h.metrics.ProfilesUpsertedTotal.Inc()
	return c.JSON(http.StatusCreated, profile)
}

// Login verifies the caller's token and returns who they are.
//
// @Summary      Login with a provider token
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  loginResponse
// @Failure      401  {string}  string  "invalid or expired token"
// @Router       /api/auth/login [post]
func (h *UserHandler) Login(c echo.Context) error {
	res, err := h.service.Login(c.Request().Context(), authorization(c))
	h.metrics.ObserveOperation(opLogin, resultOf(err))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, loginResponse{SubjectID: res.SubjectID, Email: res.Email})
}

// Me returns the caller's stored profile.
//
// @Summary      Get the authenticated user's profile
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.UserProfile
// @Failure      401  {string}  string  "invalid or expired token"
// @Failure      404  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /api/users/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	profile, found, err := h.service.Lookup(c.Request().Context(), authorization(c))
	if err == nil && !found {
		err = domain.ErrProfileNotFound
	}
	h.metrics.ObserveOperation(opLookup, resultOf(err))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, profile)
}

// errorResponse documents the JSON error envelope rendered by the API error handler.
type errorResponse struct {
	Error string `json:"error"`
}

func authorization(c echo.Context) string {
	return c.Request().Header.Get(echo.HeaderAuthorization)
}

func resultOf(err error) string {
	switch {
	case err == nil:
		return metrics.ResultOK
	case errors.Is(err, domain.ErrUnauthorized):
		return metrics.ResultUnauthorized
	case errors.Is(err, domain.ErrInvalidPayload):
		return metrics.ResultInvalid
	case errors.Is(err, domain.ErrProfileNotFound):
		return metrics.ResultNotFound
	default:
		return metrics.ResultError
	}
}
