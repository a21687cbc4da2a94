package handler

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/werkyrie/shopdesk/internal/view"
)

// viewParams reads the shared collection-view query parameters.
func viewParams(c echo.Context, perPage int) view.Params {
	params := view.Params{
		Search:    c.QueryParam("search"),
		Sort:      c.QueryParam("sort"),
		Direction: view.Ascending,
		Page:      1,
		PerPage:   perPage,
	}
	if c.QueryParam("direction") == string(view.Descending) {
		params.Direction = view.Descending
	}
	if page, err := strconv.Atoi(c.QueryParam("page")); err == nil && page > 0 {
		params.Page = page
	}
	if perPage, err := strconv.Atoi(c.QueryParam("per_page")); err == nil && perPage > 0 {
		params.PerPage = perPage
	}
	return params
}

// splitList parses a comma-separated query parameter into values.
func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// pathID parses the numeric id path parameter.
func pathID(c echo.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}
