package category

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain/common"
)

func TestDeactivate(t *testing.T) {
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	c, err := New("electronics", "Electronics", "Gadgets", "", "", now)
	require.NoError(t, err)

	err = c.Deactivate(3, now)
	assert.ErrorIs(t, err, ErrHasProducts)
	assert.ErrorIs(t, err, common.ErrInvalidState)
	assert.Equal(t, common.Active, c.Lifecycle)

	require.NoError(t, c.Deactivate(0, now.Add(time.Hour)))
	assert.Equal(t, common.Inactive, c.Lifecycle)
	assert.Equal(t, now.Add(time.Hour), c.UpdatedAt)
}

func TestNewRequiresName(t *testing.T) {
	_, err := New("x", "  ", "", "", "", time.Now())
	assert.ErrorIs(t, err, ErrInvalidName)
}
