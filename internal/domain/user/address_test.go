package user

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func str(s string) *string { return &s }

func fields() AddressFields {
	return AddressFields{
		Street:  str("1 Main St"),
		City:    str("Springfield"),
		State:   str("IL"),
		ZipCode: str("62701"),
		Country: str("US"),
	}
}

func defaults(b AddressBook) []string {
	var out []string
	for _, a := range b {
		if a.IsDefault {
			out = append(out, a.ID)
		}
	}
	return out
}

func TestAddressBook_FirstAddIsAlwaysDefault(t *testing.T) {
	b, a, err := AddressBook{}.Add("A", fields(), false, now)
	require.NoError(t, err)
	assert.True(t, a.IsDefault)
	assert.Equal(t, []string{"A"}, defaults(b))
	assert.Equal(t, AddressHome, a.Type)
}

func TestAddressBook_AddAsDefaultMovesFlag(t *testing.T) {
	b, _, err := AddressBook{}.Add("A", fields(), false, now)
	require.NoError(t, err)
	b, _, err = b.Add("B", fields(), false, now)
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, defaults(b))

	b, _, err = b.Add("C", fields(), true, now)
	require.NoError(t, err)
	assert.Equal(t, []string{"C"}, defaults(b))
}

func TestAddressBook_RemoveDefaultPromotesFirstRemaining(t *testing.T) {
	b, _, _ := AddressBook{}.Add("A", fields(), false, now)
	b, _, _ = b.Add("B", fields(), false, now)

	b, err := b.Remove("A", now)
	require.NoError(t, err)
	require.Len(t, b, 1)
	assert.Equal(t, []string{"B"}, defaults(b))

	b, err = b.Remove("B", now)
	require.NoError(t, err)
	assert.Empty(t, b)
	assert.Empty(t, defaults(b))
}

func TestAddressBook_RemoveNonDefaultKeepsDefault(t *testing.T) {
	b, _, _ := AddressBook{}.Add("A", fields(), false, now)
	b, _, _ = b.Add("B", fields(), false, now)

	b, err := b.Remove("B", now)
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, defaults(b))
}

func TestAddressBook_SetDefaultAndUpdate(t *testing.T) {
	b, _, _ := AddressBook{}.Add("A", fields(), false, now)
	b, _, _ = b.Add("B", fields(), false, now)

	b, a, err := b.SetDefault("B", now)
	require.NoError(t, err)
	assert.True(t, a.IsDefault)
	assert.Equal(t, []string{"B"}, defaults(b))

	b, a, err = b.Update("A", AddressFields{City: str("Shelbyville")}, true, now)
	require.NoError(t, err)
	assert.Equal(t, "Shelbyville", a.City)
	assert.Equal(t, []string{"A"}, defaults(b))

	_, _, err = b.Update("A", AddressFields{City: str(" ")}, false, now)
	assert.ErrorIs(t, err, ErrInvalidAddress)

	_, _, err = b.SetDefault("missing", now)
	assert.ErrorIs(t, err, ErrAddressNotFound)
}

func TestAddressBook_DoesNotMutateReceiver(t *testing.T) {
	orig, _, _ := AddressBook{}.Add("A", fields(), false, now)
	orig, _, _ = orig.Add("B", fields(), false, now)

	_, _, err := orig.SetDefault("B", now)
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, defaults(orig))
}
