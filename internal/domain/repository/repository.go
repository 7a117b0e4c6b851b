// Package repository 定义数据访问层接口
package repository

import (
	"context"
	"errors"
)

// ErrNotFound 写操作命中零行
var ErrNotFound = errors.New("record not found")

// TxKey 事务上下文键类型
type TxKey struct{}

// Transactor 事务管理接口，嵌套调用复用外层事务
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 50
)

// Pagination 分页参数，页码从 1 开始
type Pagination struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

// NewPagination 将越界的页码与页大小收敛到合法区间
func NewPagination(page, pageSize int) Pagination {
	return Pagination{
		Page:     max(page, 1),
		PageSize: clampPageSize(pageSize),
	}
}

func clampPageSize(n int) int {
	switch {
	case n < 1:
		return DefaultPageSize
	case n > MaxPageSize:
		return MaxPageSize
	default:
		return n
	}
}

func (p Pagination) Offset() int { return (p.Page - 1) * p.PageSize }

func (p Pagination) Limit() int { return p.PageSize }

// PagedResult 分页结果，Items 永不为 nil
type PagedResult[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

func NewPagedResult[T any](items []T, total int64, p Pagination) *PagedResult[T] {
	if items == nil {
		items = make([]T, 0)
	}
	r := &PagedResult[T]{Items: items, Total: total, Page: p.Page, PageSize: p.PageSize}
	if p.PageSize > 0 {
		size := int64(p.PageSize)
		r.TotalPages = int((total + size - 1) / size)
	}
	return r
}

// HasNext 是否还有下一页
func (r *PagedResult[T]) HasNext() bool {
	return r.Page < r.TotalPages
}
