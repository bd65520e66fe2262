package handlers

import (
	"strconv"

	"orderdesk-api/internal/adapters/http/middleware"
	"orderdesk-api/internal/adapters/persistence/repositories"
	"orderdesk-api/internal/core/domain"
	"orderdesk-api/internal/core/services"
	"orderdesk-api/internal/pkg/pagination"
	"orderdesk-api/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// Policy holds the per-resource ownership rules. The zero Policy leaves
// access control to the route middleware.
type Policy[T any] struct {
	// Owner returns the user owning an item. When set, item routes are
	// limited to the owner and admins.
	Owner func(item *T) *uint
	// OwnerField restricts non-admin list and count to owned rows
	OwnerField string
	// Prepare adjusts or rejects a create/update payload for the session.
	// The session is nil on public routes.
	Prepare func(session *services.Session, data repositories.Payload, creating bool) (repositories.Payload, error)
}

// ResourceHandler serves the REST routes of one resource
type ResourceHandler[T any] struct {
	name    string
	service services.CRUDService[T]
	auth    *services.AuthService
	policy  Policy[T]
}

// NewResourceHandler creates a new resource handler
func NewResourceHandler[T any](
	name string,
	service services.CRUDService[T],
	auth *services.AuthService,
	policy Policy[T],
) *ResourceHandler[T] {
	return &ResourceHandler[T]{
		name:    name,
		service: service,
		auth:    auth,
		policy:  policy,
	}
}

// List handles listing a resource
// @Summary List resources
// @Description Get every item of a resource, optionally paged. Non-admins only see their own orders.
// @Tags Resources
// @Produce json
// @Security BearerAuth
// @Param resource path string true "users, roles, products, menus, promotions or orders"
// @Param limit query int false "Items per page"
// @Param page query int false "Page number" default(1)
// @Success 200 {array} object
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /{resource} [get]
func (h *ResourceHandler[T]) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	items, err := h.service.FetchAll(c.Context(), repositories.Filter{
		Where:  h.ownedBy(c),
		Limit:  params.Limit,
		Offset: params.Offset,
	})
	if err != nil {
		return response.FromError(c, err)
	}

	return c.JSON(items)
}

// Count handles counting a resource
// @Summary Count resources
// @Description Count the items of a resource
// @Tags Resources
// @Produce json
// @Security BearerAuth
// @Param resource path string true "users, roles, products, menus, promotions or orders"
// @Success 200 {object} response.Count
// @Failure 401 {object} response.Response
// @Router /{resource}/count [get]
func (h *ResourceHandler[T]) Count(c *fiber.Ctx) error {
	n, err := h.service.Count(c.Context(), repositories.Filter{Where: h.ownedBy(c)})
	if err != nil {
		return response.FromError(c, err)
	}

	return c.JSON(response.Count{Count: n})
}

// Get handles getting an item by ID
// @Summary Get resource by ID
// @Tags Resources
// @Produce json
// @Security BearerAuth
// @Param resource path string true "users, roles, products, menus, promotions or orders"
// @Param id path int true "Item ID"
// @Success 200 {object} object
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /{resource}/{id} [get]
func (h *ResourceHandler[T]) Get(c *fiber.Ctx) error {
	item, err := h.load(c)
	if err != nil {
		return response.FromError(c, err)
	}

	return c.JSON(item)
}

// Head handles checking an item exists
// @Summary Check resource exists
// @Tags Resources
// @Security BearerAuth
// @Param resource path string true "users, roles, products, menus, promotions or orders"
// @Param id path int true "Item ID"
// @Success 200
// @Failure 404
// @Router /{resource}/{id} [head]
func (h *ResourceHandler[T]) Head(c *fiber.Ctx) error {
	if _, err := h.load(c); err != nil {
		return c.SendStatus(response.StatusOf(err))
	}

	return c.SendStatus(fiber.StatusOK)
}

// Create handles creating an item
// @Summary Create resource
// @Description Relation id lists (productIds, menuIds, promotionIds, roleIds, userIds) are attached in the same transaction
// @Tags Resources
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param resource path string true "users, roles, products, menus, promotions or orders"
// @Param body body object true "Item fields"
// @Success 201 {object} object
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /{resource} [post]
func (h *ResourceHandler[T]) Create(c *fiber.Ctx) error {
	data, err := h.payload(c, true)
	if err != nil {
		return response.FromError(c, err)
	}

	item, err := h.service.Create(c.Context(), data)
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Created(c, item)
}

// Update handles a partial update of an item
// @Summary Update resource
// @Description Supplied relation id lists replace the current ones
// @Tags Resources
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param resource path string true "users, roles, products, menus, promotions or orders"
// @Param id path int true "Item ID"
// @Param body body object true "Fields to change"
// @Success 200 {object} object
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /{resource}/{id} [patch]
func (h *ResourceHandler[T]) Update(c *fiber.Ctx) error {
	if _, err := h.load(c); err != nil {
		return response.FromError(c, err)
	}

	data, err := h.payload(c, false)
	if err != nil {
		return response.FromError(c, err)
	}

	id, _ := parseID(c)
	item, found, err := h.service.UpdateByID(c.Context(), id, data)
	if err != nil {
		return response.FromError(c, err)
	}
	if !found {
		return response.NotFound(c, h.name+" not found")
	}

	return c.JSON(item)
}

// Delete handles deleting an item
// @Summary Delete resource
// @Tags Resources
// @Security BearerAuth
// @Param resource path string true "users, roles, products, menus, promotions or orders"
// @Param id path int true "Item ID"
// @Success 204
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /{resource}/{id} [delete]
func (h *ResourceHandler[T]) Delete(c *fiber.Ctx) error {
	if _, err := h.load(c); err != nil {
		return response.FromError(c, err)
	}

	id, _ := parseID(c)
	found, err := h.service.DestroyByID(c.Context(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	if !found {
		return response.NotFound(c, h.name+" not found")
	}

	return response.NoContent(c)
}

// load fetches the item named by :id and checks the session may reach it
func (h *ResourceHandler[T]) load(c *fiber.Ctx) (*T, error) {
	id, err := parseID(c)
	if err != nil {
		return nil, err
	}

	item, found, err := h.service.FetchByID(c.Context(), id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, domain.ErrNotFound
	}

	if h.policy.Owner != nil {
		if err := h.auth.Authorize(middleware.GetSession(c), h.policy.Owner(item)); err != nil {
			return nil, err
		}
	}
	return item, nil
}

// payload parses the JSON body and applies the policy
func (h *ResourceHandler[T]) payload(c *fiber.Ctx, creating bool) (repositories.Payload, error) {
	data := repositories.Payload{}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&data); err != nil {
			return nil, domain.ErrValidation
		}
	}

	if h.policy.Prepare == nil {
		return data, nil
	}
	return h.policy.Prepare(middleware.GetSession(c), data, creating)
}

// ownedBy returns the list criteria of a non-admin session
func (h *ResourceHandler[T]) ownedBy(c *fiber.Ctx) repositories.Payload {
	session := middleware.GetSession(c)
	if h.policy.OwnerField == "" || session == nil || session.IsAdmin() {
		return nil
	}
	return repositories.Payload{h.policy.OwnerField: session.UserID()}
}

func parseID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, domain.ErrNotFound
	}
	return uint(id), nil
}
