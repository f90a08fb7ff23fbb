package service

import (
	"context"

	"restopos/internal/dto"
)

// FetchPage loads one page of rows for a date range.
type FetchPage[T any] func(ctx context.Context, fromDate, toDate string, page, pageSize int64) (*dto.Page[T], error)

// Pager drives date-range pagination for history views. Pages start at 1,
// next/prev clamp to the valid range, and changing the date range always
// snaps back to page 1 before refetching — page 5 of one range is never
// reused as page 5 of another.
type Pager[T any] struct {
	fetch    FetchPage[T]
	pageSize int64

	fromDate string
	toDate   string
	page     int64
	total    int64
	rows     []T
}

func NewPager[T any](fetch FetchPage[T], pageSize int64) *Pager[T] {
	return &Pager[T]{fetch: fetch, pageSize: pageSize, page: 1}
}

// SetRange installs a new date range, resets to page 1 and refetches.
func (p *Pager[T]) SetRange(ctx context.Context, fromDate, toDate string) error {
	p.fromDate = fromDate
	p.toDate = toDate
	p.page = 1
	return p.Reload(ctx)
}

// Reload refetches the current page. On failure the previously loaded rows
// are kept — the operator retries explicitly, there are no automatic retries.
func (p *Pager[T]) Reload(ctx context.Context) error {
	res, err := p.fetch(ctx, p.fromDate, p.toDate, p.page, p.pageSize)
	if err != nil {
		return err
	}
	p.rows = res.Data
	p.total = res.Total
	return nil
}

// Next advances one page, clamped to the last.
func (p *Pager[T]) Next(ctx context.Context) error {
	if p.page >= p.Pages() {
		return nil
	}
	p.page++
	if err := p.Reload(ctx); err != nil {
		p.page--
		return err
	}
	return nil
}

// Prev goes back one page, clamped to the first.
func (p *Pager[T]) Prev(ctx context.Context) error {
	if p.page <= 1 {
		return nil
	}
	p.page--
	if err := p.Reload(ctx); err != nil {
		p.page++
		return err
	}
	return nil
}

// Rows is the currently loaded page.
func (p *Pager[T]) Rows() []T { return p.rows }

func (p *Pager[T]) Page() int64 { return p.page }

func (p *Pager[T]) Total() int64 { return p.total }

func (p *Pager[T]) FromDate() string { return p.fromDate }

func (p *Pager[T]) ToDate() string { return p.toDate }

// Pages is the page count, never below 1 — an empty result still shows
// "page 1 of 1".
func (p *Pager[T]) Pages() int64 {
	if p.total <= 0 {
		return 1
	}
	pages := (p.total + p.pageSize - 1) / p.pageSize
	if pages < 1 {
		return 1
	}
	return pages
}
