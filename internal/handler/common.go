// Package handler contains the HTTP handlers of the API. Handlers
// bind and validate request payloads, call into repositories and map
// repository sentinel errors onto HTTP status codes.
package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

// getUserID extracts the authenticated user id placed in the context
// by the JWT middleware. Claims decode as float64 from JSON, but the
// value may also arrive as a string or integer depending on how the
// token was minted, so all of those are accepted.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// parseID parses the named path parameter as an unsigned integer id.
func parseID(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}

// parseIDList splits a comma-separated query value like "1,2,3" into
// ids. Blank segments are skipped; a malformed segment fails the whole
// parse so that typos do not silently drop a filter.
func parseIDList(raw string) ([]uint64, error) {
	out := make([]uint64, 0)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.ParseUint(part, 10, 64)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

// parsePage reads ?page and ?page_size, clamping to the given default
// and maximum page size. Values below 1 fall back to the defaults.
func parsePage(c echo.Context, defaultSize, maxSize int) (page, pageSize int) {
	page = 1
	if v, err := strconv.Atoi(c.QueryParam("page")); err == nil && v > 0 {
		page = v
	}
	pageSize = defaultSize
	if v, err := strconv.Atoi(c.QueryParam("page_size")); err == nil && v > 0 {
		pageSize = v
	}
	if pageSize > maxSize {
		pageSize = maxSize
	}
	return page, pageSize
}
