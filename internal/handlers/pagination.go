package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	maxPageSize = 100
	// maxPage keeps Offset far from overflow; any larger page is past the
	// end of every listing.
	maxPage = 1 << 20
)

// Page is the requested slice of a listing.
type Page struct {
	Number int
	Size   int
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// lastPage is the number of pages total items fill, at least one.
func (p Page) lastPage(total int64) int64 {
	size := int64(p.Size)
	if size < 1 {
		size = 1
	}
	if total <= 0 {
		return 1
	}
	return (total + size - 1) / size
}

// pageParams reads `page` and `limit`, falling back to page 1 and
// defaultSize for missing or invalid values. Pages beyond maxPage are
// clamped to it.
func pageParams(c echo.Context, defaultSize int) Page {
	// Atoi saturates out-of-range input, so a huge page lands on maxPage.
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	if page > maxPage {
		page = maxPage
	}
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit < 1 {
		limit = defaultSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return Page{Number: page, Size: limit}
}

// paginated writes a `{count, next, previous, results}` envelope. Asking for
// a page past the end of a non-empty listing is a 404.
func paginated(c echo.Context, p Page, total int64, results interface{}) error {
	last := p.lastPage(total)
	if int64(p.Number) > last {
		return echo.NewHTTPError(http.StatusNotFound, "Invalid page.")
	}

	var next, previous *string
	if int64(p.Number) < last {
		u := pageURL(c, p.Number+1)
		next = &u
	}
	if p.Number > 1 {
		u := pageURL(c, p.Number-1)
		previous = &u
	}

	return c.JSON(http.StatusOK, echo.Map{
		"count":    total,
		"next":     next,
		"previous": previous,
		"results":  results,
	})
}

func pageURL(c echo.Context, page int) string {
	u := *c.Request().URL
	q := u.Query()
	if page == 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}
	u.RawQuery = q.Encode()
	u.Scheme = c.Scheme()
	u.Host = c.Request().Host
	return u.String()
}
