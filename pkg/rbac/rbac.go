package rbac

// 权限定义
const (
	PermissionReadProject    = "project:read"
	PermissionCreateProject  = "project:create"
	PermissionUpdateProject  = "project:update"
	PermissionDeleteProject  = "project:delete"
	PermissionExportProject  = "project:export"
	PermissionRecommend      = "recommendation:read"
	PermissionRenderTemplate = "template:render"
	PermissionReadAnalytics  = "analytics:read"
	// PermissionAccessAnyProject lets a role act on projects it does not own.
	PermissionAccessAnyProject = "project:any"
	// PermissionManageSystem covers the admin endpoints.
	PermissionManageSystem = "system:manage"
)

// 角色定义
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

var rolePermissions = map[string][]string{
	RoleUser: {
		PermissionReadProject,
		PermissionCreateProject,
		PermissionUpdateProject,
		PermissionDeleteProject,
		PermissionExportProject,
		PermissionRecommend,
		PermissionRenderTemplate,
		PermissionReadAnalytics,
	},
	RoleAdmin: {
		PermissionReadProject,
		PermissionCreateProject,
		PermissionUpdateProject,
		PermissionDeleteProject,
		PermissionExportProject,
		PermissionRecommend,
		PermissionRenderTemplate,
		PermissionReadAnalytics,
		PermissionAccessAnyProject,
		PermissionManageSystem,
	},
}

// ValidRole reports whether role is known.
func ValidRole(role string) bool {
	_, ok := rolePermissions[role]
	return ok
}

// HasPermission 检查角色是否拥有指定权限
func HasPermission(role, permission string) bool {
	for _, p := range rolePermissions[role] {
		if p == permission {
			return true
		}
	}
	return false
}

// CheckPermission 检查权限，没有权限时返回错误
func CheckPermission(userID, role, permission string) error {
	if !HasPermission(role, permission) {
		return &PermissionDeniedError{UserID: userID, Permission: permission}
	}
	return nil
}

// CheckOwnership allows the owner, or any role holding PermissionAccessAnyProject.
func CheckOwnership(userID, role, ownerID string) error {
	if userID == ownerID || HasPermission(role, PermissionAccessAnyProject) {
		return nil
	}
	return &OwnershipError{UserID: userID, OwnerID: ownerID}
}

type PermissionDeniedError struct {
	UserID     string
	Permission string
}

func (e *PermissionDeniedError) Error() string {
	return "insufficient permissions"
}

// OwnershipError means the resource belongs to another user.
type OwnershipError struct {
	UserID  string
	OwnerID string
}

func (e *OwnershipError) Error() string {
	return "resource belongs to another user"
}
