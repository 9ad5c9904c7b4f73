// Copyright (c) 2026 Revu. All rights reserved.
// Author: d.okoshkin.dev@gmail.com

// Package pagination provides offset-based pagination primitives shared by
// all list endpoints.
package pagination

import (
	"net/http"
	"strconv"
)

const (
	// DefaultPage is the page number used when the client omits the parameter.
	DefaultPage = 1
	// DefaultPerPage is the page size used when the client omits the parameter.
	DefaultPerPage = 20
	// MaxPerPage caps the page size to protect the database from oversized scans.
	MaxPerPage = 100
)

// Params holds normalized pagination input for a list query.
type Params struct {
	Page    int
	PerPage int
}

// FromRequest extracts pagination parameters from the request query string.
// Invalid or out-of-range values fall back to defaults rather than failing
// the request.
func FromRequest(r *http.Request) Params {
	p := Params{Page: DefaultPage, PerPage: DefaultPerPage}

	if raw := r.URL.Query().Get("page"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			p.Page = v
		}
	}
	if raw := r.URL.Query().Get("per_page"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			if v > MaxPerPage {
				v = MaxPerPage
			}
			p.PerPage = v
		}
	}
	return p
}

// Offset returns the row offset matching the page and page size.
func (p Params) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// Limit returns the row limit for the page.
func (p Params) Limit() int {
	return p.PerPage
}

// Meta describes the pagination state of a returned page. It is embedded
// in every paginated response envelope.
type Meta struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	TotalItems int64 `json:"total_items"`
	TotalPages int64 `json:"total_pages"`
}

// NewMeta computes response metadata from the request params and the total
// row count reported by the store.
func NewMeta(p Params, totalItems int64) Meta {
	totalPages := totalItems / int64(p.PerPage)
	if totalItems%int64(p.PerPage) != 0 {
		totalPages++
	}
	return Meta{
		Page:       p.Page,
		PerPage:    p.PerPage,
		TotalItems: totalItems,
		TotalPages: totalPages,
	}
}
