package utils

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// MaxPage bounds the requested page so Offset cannot overflow.
const MaxPage = 1_000_000

// PageQuery holds sanitized pagination input.
type PageQuery struct {
	Page    int
	PerPage int
}

func (p PageQuery) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// ParsePageQuery reads page and per_page, falling back to defaults on bad
// input and clamping per_page to max and page to MaxPage.
func ParsePageQuery(c *fiber.Ctx, def, max int) PageQuery {
	return PageQuery{
		Page:    ClampInt(c.Query("page"), 1, 1, MaxPage),
		PerPage: ClampInt(c.Query("per_page"), def, 1, max),
	}
}

// ClampInt parses raw, returns def when it is missing or not a number and
// bounds the result to [min, max]. max <= 0 means no upper bound.
func ClampInt(raw string, def, min, max int) int {
	n, err := strconv.Atoi(raw)
	if err != nil {
		n = def
	}
	if n < min {
		n = min
	}
	if max > 0 && n > max {
		n = max
	}
	return n
}

func LastPage(total int64, perPage int) int {
	if total == 0 || perPage <= 0 {
		return 1
	}
	return int((total + int64(perPage) - 1) / int64(perPage))
}
