package repository

import "bookmarket/internal/models"

// DefaultPageLimit applies when the caller sends no limit. There is no upper bound.
const DefaultPageLimit = 10

// PageQuery selects one page of a listing query. Zero values fall back to page 1 and DefaultPageLimit.
type PageQuery struct {
	Page  int
	Limit int
}

// Normalize applies the page and limit defaults.
func (q PageQuery) Normalize() PageQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = DefaultPageLimit
	}
	return q
}

// Offset is the number of rows skipped before this page.
func (q PageQuery) Offset() int {
	q = q.Normalize()
	return (q.Page - 1) * q.Limit
}

// Page is one page of listings plus the size of the whole filtered set.
type Page struct {
	Items      []models.TransactionPost `json:"items"`
	TotalCount int64                    `json:"totalCount"`
	Page       int                      `json:"page"`
	Limit      int                      `json:"limit"`
}

// Meta converts the page into the response pagination block.
func (p *Page) Meta() models.PaginationMeta {
	return models.PaginationMeta{Page: p.Page, Total: p.TotalCount, Limit: p.Limit}
}
