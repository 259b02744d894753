package pagination

import (
	"net/url"
	"strconv"
)

// PageRequest represents a client request for a window of rows.
type PageRequest struct {
	Limit int `json:"limit"`
	Skip  int `json:"skip"`
}

// Normalize adjusts the request to ensure valid window values based on the config.
func (r *PageRequest) Normalize(cfg Config) {
	if r.Limit < 1 {
		r.Limit = cfg.DefaultLimit
	}
	if r.Limit > cfg.MaxLimit {
		r.Limit = cfg.MaxLimit
	}
	if r.Skip < 0 {
		r.Skip = 0
	}
}

// FromQuery parses limit and skip parameters from URL query values.
func FromQuery(values url.Values, cfg Config) PageRequest {
	limit, _ := strconv.Atoi(values.Get("limit"))
	skip, _ := strconv.Atoi(values.Get("skip"))

	req := PageRequest{Limit: limit, Skip: skip}
	req.Normalize(cfg)
	return req
}

// PageResult holds a window of rows along with the number returned.
type PageResult[T any] struct {
	Count int `json:"count"`
	Items []T `json:"items"`
}

// NewPageResult creates a PageResult, normalizing nil data to an empty slice.
func NewPageResult[T any](items []T) PageResult[T] {
	if items == nil {
		items = []T{}
	}
	return PageResult[T]{
		Count: len(items),
		Items: items,
	}
}
