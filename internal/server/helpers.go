// Package server contains HTTP handlers for the application's API endpoints.
package server

import (
	"errors"
	"strconv"

	"pressroom/internal/models"
	"pressroom/internal/service"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper.  Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid ID"))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// parsePageQuery extracts pagination, search, and filter query parameters.
// page_number and page_size must be positive integers when present;
// category_id and user_id must parse as positive integers. On invalid input
// it writes a 422 JSON response and returns errResponseWritten.
func (s *Server) parsePageQuery(c *fiber.Ctx) (service.ListArticlesInput, error) {
	fail := func(msg string) (service.ListArticlesInput, error) {
		_ = models.RespondWithError(c, fiber.StatusUnprocessableEntity,
			models.NewValidationError(msg))
		return service.ListArticlesInput{}, errResponseWritten
	}

	in := service.ListArticlesInput{
		Page:     1,
		PageSize: 10,
		Search:   c.Query("search"),
	}

	if raw := c.Query("page_number"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return fail("page_number must be a positive integer")
		}
		in.Page = page
	}
	if raw := c.Query("page_size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size < 1 || size > 100 {
			return fail("page_size must be between 1 and 100")
		}
		in.PageSize = size
	}
	if raw := c.Query("category_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || id == 0 {
			return fail("category_id must be a positive integer")
		}
		in.CategoryID = uint(id)
	}
	if raw := c.Query("user_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || id == 0 {
			return fail("user_id must be a positive integer")
		}
		in.UserID = uint(id)
	}

	return in, nil
}

// respondServiceError writes the response for a service-layer error using
// its mapped HTTP status.
func respondServiceError(c *fiber.Ctx, err error) error {
	return models.RespondWithError(c, models.StatusForError(err), err)
}

// currentUserID reads the authenticated user ID set by AuthRequired.
func currentUserID(c *fiber.Ctx) uint {
	if uid, ok := c.Locals("userID").(uint); ok {
		return uid
	}
	return 0
}
