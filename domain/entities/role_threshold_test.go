package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeRoleColor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected string
	}{
		{"#2ECC71", "#2ecc71"},
		{"e67e22", "#e67e22"},
		{"  #9b59b6 ", "#9b59b6"},
		{"", DefaultRoleColor},
		{"#fff", DefaultRoleColor},
		{"purple", DefaultRoleColor},
		{"#12345g", DefaultRoleColor},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, NormalizeRoleColor(tt.input))
		})
	}
}

func TestRoleThreshold_ColorValue(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0x2ecc71, (&RoleThreshold{RoleColor: "#2ecc71"}).ColorValue())
	assert.Equal(t, 0x3498db, (&RoleThreshold{RoleColor: "not a colour"}).ColorValue())
}

func TestDefaultRoleThresholds(t *testing.T) {
	t.Parallel()

	defaults := DefaultRoleThresholds(42)
	assert.Len(t, defaults, 5)
	assert.Equal(t, []string{"raider newgen", "raider scout", "raider striker", "raider legend", "raider commander"}, RoleNames(defaults))
	for _, d := range defaults {
		assert.Equal(t, int64(42), d.GuildID)
		assert.Equal(t, d.RoleColor, NormalizeRoleColor(d.RoleColor))
	}
}
