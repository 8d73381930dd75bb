package pagination

import "github.com/gofiber/fiber/v2"

const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// Params are the normalized page window extracted from a request.
type Params struct {
	Page    int
	PerPage int
}

// FromRequest reads page and per_page query parameters, clamping them to
// valid bounds. Invalid or missing values fall back to defaults.
func FromRequest(c *fiber.Ctx) Params {
	return Normalize(c.QueryInt("page", 1), c.QueryInt("per_page", DefaultPerPage))
}

// Normalize clamps raw page values to valid bounds.
func Normalize(page, perPage int) Params {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return Params{Page: page, PerPage: perPage}
}

// Offset returns the SQL offset for the window.
func (p Params) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// Meta is the pagination envelope returned alongside every list response.
type Meta struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// NewMeta computes the envelope for a total row count.
func NewMeta(p Params, total int64) Meta {
	totalPages := int((total + int64(p.PerPage) - 1) / int64(p.PerPage))
	return Meta{
		Page:       p.Page,
		PerPage:    p.PerPage,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    p.Page < totalPages,
		HasPrev:    p.Page > 1,
	}
}
