package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_IsMatchesByCode(t *testing.T) {
	err := NewNotFoundError("project")

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrForbidden))
	assert.True(t, errors.Is(fmt.Errorf("load: %w", err), ErrNotFound))
}

func TestDomainError_Unwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := WrapDomainError(CodeInvalidState, "cannot store file", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "cannot store file: disk full", err.Error())
}

func TestPaginated(t *testing.T) {
	p := NewPaginated[int](nil, 41, 2, 20)

	assert.Equal(t, 3, p.TotalPages)
	assert.NotNil(t, p.Items)

	f := Filter{Page: 0, PageSize: 1000}.Normalize()
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, 200, f.PageSize)
	assert.Equal(t, 0, f.Offset())
}
