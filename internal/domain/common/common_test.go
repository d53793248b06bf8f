package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

func TestPaginate(t *testing.T) {
	items := seq(25)

	p2 := Paginate(items, Page{Number: 2, PerPage: 10})
	assert.Equal(t, []int{11, 12, 13, 14, 15, 16, 17, 18, 19, 20}, p2.Items)
	assert.Equal(t, 25, p2.TotalCount)
	assert.Equal(t, 3, p2.TotalPages)
	assert.True(t, p2.HasNext())
	assert.True(t, p2.HasPrevious())

	p3 := Paginate(items, Page{Number: 3, PerPage: 10})
	assert.Len(t, p3.Items, 5)
	assert.False(t, p3.HasNext())

	p9 := Paginate(items, Page{Number: 9, PerPage: 10})
	assert.Empty(t, p9.Items)
	assert.NotNil(t, p9.Items)
}

func TestNormalizePage(t *testing.T) {
	assert.Equal(t, Page{Number: 1, PerPage: 1}, NormalizePage(Page{Number: 0, PerPage: 0}, MaxPerPage))
	assert.Equal(t, Page{Number: 4, PerPage: 100}, NormalizePage(Page{Number: 4, PerPage: 500}, MaxPerPage))
}

func TestErrorKinds(t *testing.T) {
	empty := NewError(ErrInvalidState, "Cart is empty")
	wrapped := fmt.Errorf("checkout: %w", empty)

	require.True(t, errors.Is(wrapped, ErrInvalidState))
	assert.False(t, errors.Is(wrapped, ErrNotFound))
	assert.Equal(t, "Cart is empty", Message(wrapped))
	assert.Equal(t, "", Message(errors.New("boom")))
}

func TestLifecycleVisibility(t *testing.T) {
	assert.True(t, Active.VisibleTo(false))
	assert.False(t, Inactive.VisibleTo(false))
	assert.True(t, Inactive.VisibleTo(true))
	assert.Equal(t, Inactive, LifecycleOf(false))
}
