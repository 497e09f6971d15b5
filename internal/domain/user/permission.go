package user

type Permission string

const (
	// Self
	PermissionViewOwnRecord     Permission = "record.view_own"
	PermissionAcknowledgeAlerts Permission = "notification.acknowledge"

	// Employee Management
	PermissionEmployeeViewAll Permission = "employee.view_all"
	PermissionEmployeeManage  Permission = "employee.manage"

	// Ingestion
	PermissionUploadWorkbooks Permission = "upload.create"

	// Reports
	PermissionReportsView   Permission = "reports.view"
	PermissionReportsExport Permission = "reports.export"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleAdmin: {
		PermissionViewOwnRecord,
		PermissionAcknowledgeAlerts,
		PermissionEmployeeViewAll,
		PermissionEmployeeManage,
		PermissionUploadWorkbooks,
		PermissionReportsView,
		PermissionReportsExport,
	},
	RoleManager: {
		PermissionViewOwnRecord,
		PermissionAcknowledgeAlerts,
		PermissionEmployeeViewAll,
		PermissionEmployeeManage,
		PermissionUploadWorkbooks,
		PermissionReportsView,
		PermissionReportsExport,
	},
	RoleEmployee: {
		PermissionViewOwnRecord,
		PermissionAcknowledgeAlerts,
		PermissionReportsView,
	},
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	permissions, exists := RolePermissions[role]
	if !exists {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}
	return false
}
