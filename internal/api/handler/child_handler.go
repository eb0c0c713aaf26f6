package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kidguard/parental-api/internal/api/metrics"
	"github.com/kidguard/parental-api/internal/core/ports"
)

type ChildHandler struct {
	service ports.ChildService
}

func NewChildHandler(service ports.ChildService) *ChildHandler {
	return &ChildHandler{service: service}
}

// Create adds a child account under the authenticated parent.
//
// @Summary      Create a child account
// @Tags         children
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      userCreateRequest  true  "Child credentials"
// @Success      201   {object}  domain.User
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /children/ [post]
func (h *ChildHandler) Create(c echo.Context) error {
	parent, err := currentUser(c)
	if err != nil {
		return err
	}

	var req userCreateRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	child, err := h.service.CreateChild(c.Request().Context(), parent, req.Username, req.Password)
	if err != nil {
		return err
	}
	metrics.ChildrenCreatedTotal.Inc()

	return c.JSON(http.StatusCreated, child)
}

// List returns the authenticated parent's children.
//
// @Summary      List children
// @Tags         children
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.User
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /children/ [get]
func (h *ChildHandler) List(c echo.Context) error {
	parent, err := currentUser(c)
	if err != nil {
		return err
	}

	children, err := h.service.ListChildren(c.Request().Context(), parent)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, children)
}

// Delete removes a child account and its search history.
//
// @Summary      Delete a child account
// @Tags         children
// @Produce      json
// @Security     BearerAuth
// @Param        child_id  path      string  true  "Child id"
// @Success      200       {object}  messageResponse
// @Failure      403       {object}  errorResponse
// @Failure      404       {object}  errorResponse
// @Router       /children/{child_id} [delete]
func (h *ChildHandler) Delete(c echo.Context) error {
	parent, err := currentUser(c)
	if err != nil {
		return err
	}

	child, err := h.service.DeleteChild(c.Request().Context(), parent, c.Param("child_id"))
	if err != nil {
		return err
	}
	metrics.ChildrenDeletedTotal.Inc()

	return c.JSON(http.StatusOK, messageResponse{
		Message: fmt.Sprintf("Child account '%s' and all associated data deleted successfully.", child.Username),
	})
}
