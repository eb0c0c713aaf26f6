package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kidguard/parental-api/internal/api/metrics"
	"github.com/kidguard/parental-api/internal/core/domain"
	"github.com/kidguard/parental-api/internal/core/ports"
)

type SearchHandler struct {
	service ports.SearchService
}

func NewSearchHandler(service ports.SearchService) *SearchHandler {
	return &SearchHandler{service: service}
}

// Log records a blocked search reported by the browser extension.
//
// @Summary      Log a blocked search
// @Tags         searches
// @Accept       json
// @Produce      json
// @Param        body  body      logSearchRequest  true  "Child username and query"
// @Success      201   {object}  domain.BlockedSearch
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /searches/log [post]
func (h *SearchHandler) Log(c echo.Context) error {
	var req logSearchRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	search, err := h.service.LogSearch(c.Request().Context(), req.ChildUsername, req.SearchQuery)
	if err != nil {
		if errors.Is(err, domain.ErrChildNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Child user not found")
		}
		return err
	}
	metrics.SearchesLoggedTotal.Inc()

	return c.JSON(http.StatusCreated, search)
}

// List returns a child's blocked searches, newest first.
//
// @Summary      List a child's blocked searches
// @Tags         searches
// @Produce      json
// @Security     BearerAuth
// @Param        child_id  path      string  true  "Child id"
// @Success      200       {array}   domain.BlockedSearch
// @Failure      401       {object}  errorResponse
// @Failure      403       {object}  errorResponse
// @Router       /searches/{child_id} [get]
func (h *SearchHandler) List(c echo.Context) error {
	parent, err := currentUser(c)
	if err != nil {
		return err
	}

	searches, err := h.service.ListSearches(c.Request().Context(), parent, c.Param("child_id"))
	if err != nil {
		return hideMissingChild(err, "Not authorized to view this child's data")
	}

	return c.JSON(http.StatusOK, searches)
}

// Clear deletes every blocked search of a child.
//
// @Summary      Clear a child's blocked searches
// @Tags         searches
// @Produce      json
// @Security     BearerAuth
// @Param        child_id  path      string  true  "Child id"
// @Success      200       {object}  clearSearchesResponse
// @Failure      401       {object}  errorResponse
// @Failure      403       {object}  errorResponse
// @Router       /searches/clear/{child_id} [delete]
func (h *SearchHandler) Clear(c echo.Context) error {
	parent, err := currentUser(c)
	if err != nil {
		return err
	}

	res, err := h.service.ClearSearches(c.Request().Context(), parent, c.Param("child_id"))
	if err != nil {
		return hideMissingChild(err, "Not authorized to clear this child's data")
	}
	metrics.SearchesClearedTotal.Add(float64(res.DeletedCount))

	return c.JSON(http.StatusOK, clearSearchesResponse{
		Message:      fmt.Sprintf("Successfully cleared %d search logs for child '%s'.", res.DeletedCount, res.Child.Username),
		DeletedCount: res.DeletedCount,
	})
}

// hideMissingChild answers 403 for both a missing and a foreign child so the
// search routes never reveal whether a child id exists.
func hideMissingChild(err error, msg string) error {
	if errors.Is(err, domain.ErrChildNotFound) || errors.Is(err, domain.ErrForbidden) {
		return echo.NewHTTPError(http.StatusForbidden, msg)
	}
	return err
}
