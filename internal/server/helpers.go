package server

import (
	"io"
	"strconv"
	"strings"

	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// respondServiceError maps an application error onto its HTTP status and
// writes the standard error body.
func respondServiceError(c *fiber.Ctx, err error) error {
	return models.RespondWithError(c, models.ErrorStatus(err), err)
}

// parsePostID extracts and validates the :id route parameter.
func parsePostID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return 0, models.NewValidationError("Invalid post ID")
	}
	return uint(id), nil
}

// parsePageRequest reads page, size and sort query parameters. The sort
// parameter follows the "field,direction" form (e.g. "publishedAt,desc");
// a bare field name sorts descending. Out-of-range values are clamped, not
// rejected.
func parsePageRequest(c *fiber.Ctx, defaultSortField string) models.PageRequest {
	page := c.QueryInt("page", 0)
	if page < 0 {
		page = 0
	}

	size := c.QueryInt("size", defaultPageSize)
	if size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	field := defaultSortField
	dir := models.SortDesc
	if sort := c.Query("sort"); sort != "" {
		parts := strings.SplitN(sort, ",", 2)
		if parts[0] != "" {
			field = parts[0]
		}
		if len(parts) == 2 && strings.EqualFold(parts[1], "asc") {
			dir = models.SortAsc
		}
	}

	return models.PageRequest{
		Page:      page,
		Size:      size,
		SortField: field,
		SortDir:   dir,
	}
}

// uploadedFileBytes reads the multipart file from the named form field.
func uploadedFileBytes(c *fiber.Ctx, field string) ([]byte, string, error) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		return nil, "", models.NewValidationError("No file uploaded")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, "", models.NewValidationError("Could not read uploaded file")
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return nil, "", models.NewValidationError("Could not read uploaded file")
	}

	return content, fileHeader.Filename, nil
}
