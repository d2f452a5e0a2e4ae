package enums

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBorrowStatus(t *testing.T) {
	status, err := ParseBorrowStatus("BORROWED")
	require.NoError(t, err)
	assert.Equal(t, BorrowStatusBorrowed, status)
	assert.True(t, status.IsOpen())
	assert.False(t, BorrowStatusReturned.IsOpen())

	_, err = ParseBorrowStatus("borrowed")
	require.Error(t, err)
}

func TestParseUserStatusAndRole(t *testing.T) {
	status, err := ParseUserStatus("APPROVED")
	require.NoError(t, err)
	assert.True(t, status.IsValid())

	role, err := ParseUserRole("admin")
	require.NoError(t, err)
	assert.Equal(t, UserRoleAdmin, role)

	_, err = ParseUserRole("librarian")
	require.Error(t, err)
	assert.False(t, UserStatus("UNKNOWN").IsValid())
}
