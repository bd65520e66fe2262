package pagination

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// Params represents pagination parameters. A zero Limit means no paging.
type Params struct {
	Page   int `json:"page"`
	Limit  int `json:"limit"`
	Offset int `json:"-"`
}

// MaxLimit is the maximum number of items per page
const MaxLimit = 100

// GetParams extracts optional ?limit=&page= parameters from request.
// Without a limit the whole collection is returned.
func GetParams(c *fiber.Ctx) *Params {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit < 1 {
		return &Params{}
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	page, err := strconv.Atoi(c.Query("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	return &Params{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}
