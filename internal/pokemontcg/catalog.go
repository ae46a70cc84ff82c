package pokemontcg

import (
	"context"
	"net/url"
	"strconv"
)

const (
	// MaxPageSize is the largest page the upstream API serves.
	MaxPageSize = 250

	// DefaultOrderBy lists newest sets first.
	DefaultOrderBy = "-releaseDate"
)

// ListSets fetches one page of the set catalog. Zero page/pageSize and an
// empty orderBy fall back to page 1, the maximum page size, and descending
// release date.
func (c *Client) ListSets(ctx context.Context, page, pageSize int, orderBy string) (*SetList, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	if orderBy == "" {
		orderBy = DefaultOrderBy
	}

	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("pageSize", strconv.Itoa(pageSize))
	params.Set("orderBy", orderBy)

	var out SetList
	if err := c.get(ctx, "/sets", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetSet fetches a single set by upstream ID. Results are cached for the
// process lifetime; set metadata changes rarely enough that a stale entry is
// refreshed by the next full set sync, not here. A missing set wraps
// ErrNotFound.
func (c *Client) GetSet(ctx context.Context, id string) (*Set, error) {
	if s, ok := c.setCache.Get(id); ok {
		return &s, nil
	}

	var out setResponse
	if err := c.get(ctx, "/sets/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}

	c.setCache.Add(id, out.Data)
	return &out.Data, nil
}

// SearchCards fetches one page of cards matching a query in the upstream
// search DSL, e.g. `set.id:sv4` or `id:xy1-1 OR id:xy1-2`.
func (c *Client) SearchCards(ctx context.Context, query string, page, pageSize int) (*CardList, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("page", strconv.Itoa(page))
	params.Set("pageSize", strconv.Itoa(pageSize))

	var out CardList
	if err := c.get(ctx, "/cards", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
