package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllowed(t *testing.T) {
	assert.True(t, Allowed(RoleAdmin, RoleAdmin))
	assert.True(t, Allowed(RoleCustomer, RoleCustomer, RoleAdmin))
	assert.False(t, Allowed(RoleCustomer, RoleAdmin))
	assert.True(t, Allowed("", RoleGuest))
	assert.False(t, Allowed("", RoleCustomer, RoleAdmin))
}

func TestNew(t *testing.T) {
	u, err := New("uid-1", "  A@X.com ", "Ann", "Lee", "", RoleCustomer, now)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", u.Email)
	assert.True(t, u.IsActive)
	assert.Equal(t, DefaultPreferences(), u.Preferences)
	assert.NotNil(t, u.Addresses)

	_, err = New("uid-1", "not-an-email", "Ann", "Lee", "", RoleCustomer, now)
	assert.ErrorIs(t, err, ErrInvalidEmail)

	_, err = New("uid-1", "a@x.com", "", "Lee", "", RoleCustomer, now)
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestApply(t *testing.T) {
	u, err := New("uid-1", "a@x.com", "Ann", "Lee", "", RoleCustomer, now)
	require.NoError(t, err)

	admin := RoleAdmin
	p := Patch{Role: &admin}
	assert.True(t, p.HasAdminFields())
	require.NoError(t, u.Apply(p, now))
	assert.True(t, u.IsAdmin())

	bad := Role("root")
	assert.ErrorIs(t, u.Apply(Patch{Role: &bad}, now), ErrInvalidRole)
}
