package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleAtLeast(t *testing.T) {
	tests := []struct {
		role, minimum string
		want          bool
	}{
		{RoleAdmin, RoleAdmin, true},
		{RoleAdmin, RoleUser, true},
		{RoleUser, RoleAdmin, false},
		{RoleUser, RoleUser, true},
		// Unknown roles on either side never pass.
		{"manager", RoleUser, false},
		{RoleAdmin, "owner", false},
		{"", "", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, RoleAtLeast(tt.role, tt.minimum), "RoleAtLeast(%q, %q)", tt.role, tt.minimum)
	}
}

func TestValidRole(t *testing.T) {
	assert.True(t, ValidRole(RoleAdmin))
	assert.True(t, ValidRole(RoleUser))
	assert.False(t, ValidRole("Admin"))
	assert.False(t, ValidRole(""))
}

func TestValidatePassword(t *testing.T) {
	assert.Error(t, ValidatePassword(""))
	assert.Error(t, ValidatePassword("1234567"))
	assert.NoError(t, ValidatePassword("12345678"))
	assert.NoError(t, ValidatePassword("kojic-soap-2024"))
}
