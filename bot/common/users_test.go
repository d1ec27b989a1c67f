package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasAdminRole(t *testing.T) {
	admins := []string{"The Owner", "Co-Owner"}

	tests := []struct {
		name     string
		roles    []string
		expected bool
	}{
		{"no roles", nil, false},
		{"unrelated roles", []string{"raider scout", "member"}, false},
		{"owner", []string{"member", "The Owner"}, true},
		{"co-owner", []string{"Co-Owner"}, true},
		{"case matters", []string{"the owner"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, HasAdminRole(tt.roles, admins))
		})
	}
}

func TestIDHelpers(t *testing.T) {
	id, err := ParseID("123456789012345678")
	require.NoError(t, err)
	assert.Equal(t, int64(123456789012345678), id)
	assert.Equal(t, "123456789012345678", FormatID(id))
	assert.Equal(t, "<@42>", GetUserMention(42))

	_, err = ParseID("not-a-snowflake")
	assert.Error(t, err)
}
