package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPagination_Clamps(t *testing.T) {
	assert.Equal(t, Pagination{Page: 1, PageSize: DefaultPageSize}, NewPagination(0, 0))
	assert.Equal(t, Pagination{Page: 3, PageSize: MaxPageSize}, NewPagination(3, 500))
	assert.Equal(t, 40, NewPagination(3, 20).Offset())
}

func TestNewPagedResult(t *testing.T) {
	r := NewPagedResult[string](nil, 41, NewPagination(1, 20))
	assert.Equal(t, 3, r.TotalPages)
	assert.NotNil(t, r.Items)
	assert.Empty(t, r.Items)

	r = NewPagedResult([]string{"a"}, 0, NewPagination(1, 20))
	assert.Equal(t, 0, r.TotalPages)
}

func TestPagedResult_HasNext(t *testing.T) {
	assert.True(t, NewPagedResult([]int{1}, 41, NewPagination(2, 20)).HasNext())
	assert.False(t, NewPagedResult([]int{1}, 41, NewPagination(3, 20)).HasNext())
	assert.False(t, NewPagedResult[int](nil, 0, NewPagination(1, 20)).HasNext())
}
