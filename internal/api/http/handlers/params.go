package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/navidmash/support-ticket-api/internal/pagination"
	apperrors "github.com/navidmash/support-ticket-api/pkg/util/errorutil"
)

// parseID extracts a positive integer path parameter.
func parseID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid "+name, nil)
	}
	return id, nil
}

// parsePagination reads page/pageSize query parameters, applying the
// given default page size when absent. A non-integer value is a
// validation failure, not a silent default; range checks belong to
// pagination.Params.Validate.
func parsePagination(c *fiber.Ctx, defaultPageSize int) (pagination.Params, error) {
	params := pagination.Params{Page: 1, PageSize: defaultPageSize}

	if raw := c.Query("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			return pagination.Params{}, apperrors.NewValidationError("page must be an integer", nil)
		}
		params.Page = page
	}
	if raw := c.Query("pageSize"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil {
			return pagination.Params{}, apperrors.NewValidationError("pageSize must be an integer", nil)
		}
		params.PageSize = size
	}
	return params, nil
}
