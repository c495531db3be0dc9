package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pollwise/pollwise/auth"
)

func TestIsValidRole(t *testing.T) {
	assert.True(t, auth.IsValidRole(auth.RoleUser))
	assert.True(t, auth.IsValidRole(auth.RoleSuperAdmin))
	assert.False(t, auth.IsValidRole("Admin"))
	assert.False(t, auth.IsValidRole(""))
	assert.False(t, auth.IsValidRole("user"))
}

func TestRoleIsAtLeast(t *testing.T) {
	t.Run("same role passes", func(t *testing.T) {
		assert.True(t, auth.RoleIsAtLeast(auth.RoleUser, auth.RoleUser))
		assert.True(t, auth.RoleIsAtLeast(auth.RoleSuperAdmin, auth.RoleSuperAdmin))
	})

	t.Run("superadmin outranks user", func(t *testing.T) {
		assert.True(t, auth.RoleIsAtLeast(auth.RoleSuperAdmin, auth.RoleUser))
		assert.False(t, auth.RoleIsAtLeast(auth.RoleUser, auth.RoleSuperAdmin))
	})

	t.Run("unknown roles never pass", func(t *testing.T) {
		assert.False(t, auth.RoleIsAtLeast("Owner", auth.RoleUser))
		assert.False(t, auth.RoleIsAtLeast(auth.RoleSuperAdmin, "Owner"))
	})
}

func TestParseRole(t *testing.T) {
	role, ok := auth.ParseRole("SuperAdmin")
	assert.True(t, ok)
	assert.Equal(t, auth.RoleSuperAdmin, role)

	_, ok = auth.ParseRole("superadmin")
	assert.False(t, ok)

	_, ok = auth.ParseRole("")
	assert.False(t, ok)
}
