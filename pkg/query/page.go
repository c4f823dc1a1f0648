package query

import (
	"errors"
	"math"
	"net/url"
	"strconv"

	"github.com/doodlesbykumbi/jobtracker/pkg/server/store"
)

// ErrInvalidPage is returned for page numbers that are malformed or past
// the end of the listing.
var ErrInvalidPage = errors.New("invalid page")

// ParsePage reads page and page_size. A missing or malformed page_size
// falls back to defaultSize; larger sizes are capped at maxSize. Page
// numbers whose offset would not fit in an int are invalid.
func ParsePage(values url.Values, defaultSize, maxSize int) (store.Page, error) {
	page := store.Page{Number: 1, Size: defaultSize}

	if raw := values.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return store.Page{}, ErrInvalidPage
		}
		page.Number = n
	}

	if raw := values.Get("page_size"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			page.Size = n
		}
	}
	if maxSize > 0 && page.Size > maxSize {
		page.Size = maxSize
	}
	if page.Size > 0 && page.Number-1 > (math.MaxInt-page.Size)/page.Size {
		return store.Page{}, ErrInvalidPage
	}
	return page, nil
}

// CheckPage fails when page lies past the last page of total results. The
// first page is always valid, even when empty.
func CheckPage(page store.Page, total int64) error {
	if page.Number > 1 && int64(page.Offset()) >= total {
		return ErrInvalidPage
	}
	return nil
}

// Links returns the absolute URLs of the pages around page, or nil where
// there is none. base is the URL of the current request; its other query
// parameters are preserved.
func Links(base *url.URL, page store.Page, total int64) (next, previous *string) {
	if int64(page.Offset()+page.Size) < total {
		u := withPage(base, page.Number+1)
		next = &u
	}
	if page.Number > 1 {
		u := withPage(base, page.Number-1)
		previous = &u
	}
	return next, previous
}

func withPage(base *url.URL, number int) string {
	u := *base
	q := u.Query()
	if number == 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(number))
	}
	u.RawQuery = q.Encode()
	return u.String()
}
