package rbac

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckPermission(t *testing.T) {
	assert.NoError(t, CheckPermission("u1", RoleUser, PermissionExportProject))
	assert.NoError(t, CheckPermission("a1", RoleAdmin, PermissionAccessAnyProject))

	err := CheckPermission("u1", RoleUser, PermissionAccessAnyProject)
	var denied *PermissionDeniedError
	assert.True(t, errors.As(err, &denied))
	assert.Equal(t, PermissionAccessAnyProject, denied.Permission)

	assert.Error(t, CheckPermission("x", "guest", PermissionReadProject))
	assert.Error(t, CheckPermission("u1", RoleUser, PermissionManageSystem))
	assert.NoError(t, CheckPermission("a1", RoleAdmin, PermissionManageSystem))
}

func TestCheckOwnership(t *testing.T) {
	assert.NoError(t, CheckOwnership("u1", RoleUser, "u1"))
	assert.NoError(t, CheckOwnership("a1", RoleAdmin, "u1"))

	var oe *OwnershipError
	assert.ErrorAs(t, CheckOwnership("u2", RoleUser, "u1"), &oe)
}

func TestValidRole(t *testing.T) {
	assert.True(t, ValidRole(RoleUser))
	assert.False(t, ValidRole("root"))
}
