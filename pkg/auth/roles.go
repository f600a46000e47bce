package auth

import "math"

// Role represents the primary tier of a user account
type Role string

const (
	RoleSuperAdmin Role = "super_admin" // Full platform control
	RoleAdmin      Role = "admin"       // Staff with content/marketing powers
	RoleProUser    Role = "pro_user"    // Paid subscriber
	RoleFreeUser   Role = "free_user"   // Default tier
)

// QuotaUnlimited marks a quota with no ceiling. Any usage counter
// compares below it.
const QuotaUnlimited = math.MaxInt

// PermissionSet is the static capability and quota table for one role
type PermissionSet struct {
	CanManageUsers           bool `json:"can_manage_users"`
	CanManageAdmins          bool `json:"can_manage_admins"`
	CanManagePDFShop         bool `json:"can_manage_pdf_shop"`
	CanUploadToPDFShop       bool `json:"can_upload_to_pdf_shop"`
	CanCreatePromotions      bool `json:"can_create_promotions"`
	CanRunMarketing          bool `json:"can_run_marketing"`
	CanAccessAIFeatures      bool `json:"can_access_ai_features"`
	CanAccessPremiumFeatures bool `json:"can_access_premium_features"`
	PDFLimit                 int  `json:"pdf_limit"`
	MonthlyUploads           int  `json:"monthly_uploads"`
}

// rolePermissions is immutable after process start; no API mutates it.
var rolePermissions = map[Role]PermissionSet{
	RoleSuperAdmin: {
		CanManageUsers:           true,
		CanManageAdmins:          true,
		CanManagePDFShop:         true,
		CanUploadToPDFShop:       true,
		CanCreatePromotions:      true,
		CanRunMarketing:          true,
		CanAccessAIFeatures:      true,
		CanAccessPremiumFeatures: true,
		PDFLimit:                 QuotaUnlimited,
		MonthlyUploads:           QuotaUnlimited,
	},
	RoleAdmin: {
		CanManageUsers:           false,
		CanManageAdmins:          false,
		CanManagePDFShop:         false,
		CanUploadToPDFShop:       true,
		CanCreatePromotions:      true,
		CanRunMarketing:          true,
		CanAccessAIFeatures:      true,
		CanAccessPremiumFeatures: true,
		PDFLimit:                 QuotaUnlimited,
		MonthlyUploads:           QuotaUnlimited,
	},
	RoleProUser: {
		CanManageUsers:           false,
		CanManageAdmins:          false,
		CanManagePDFShop:         false,
		CanUploadToPDFShop:       false,
		CanCreatePromotions:      false,
		CanRunMarketing:          false,
		CanAccessAIFeatures:      true,
		CanAccessPremiumFeatures: true,
		PDFLimit:                 1000,
		MonthlyUploads:           QuotaUnlimited,
	},
	RoleFreeUser: {
		CanManageUsers:           false,
		CanManageAdmins:          false,
		CanManagePDFShop:         false,
		CanUploadToPDFShop:       false,
		CanCreatePromotions:      false,
		CanRunMarketing:          false,
		CanAccessAIFeatures:      false,
		CanAccessPremiumFeatures: false,
		PDFLimit:                 10,
		MonthlyUploads:           10,
	},
}

// Roles returns all defined roles, most privileged first
func Roles() []Role {
	return []Role{RoleSuperAdmin, RoleAdmin, RoleProUser, RoleFreeUser}
}

func init() {
	// A role without a permission table entry is a programming error,
	// not a runtime condition.
	for _, role := range Roles() {
		if _, ok := rolePermissions[role]; !ok {
			panic("auth: missing permission set for role " + string(role))
		}
	}
}

// PermissionsFor returns the permission set for a role. The lookup is
// total: an unrecognized role value gets the most restrictive
// (free tier) set rather than an error.
func PermissionsFor(role Role) PermissionSet {
	if perms, ok := rolePermissions[role]; ok {
		return perms
	}
	return rolePermissions[RoleFreeUser]
}

// ValidRole reports whether the role is one of the defined enum values
func ValidRole(role Role) bool {
	_, ok := rolePermissions[role]
	return ok
}

// RoleDisplayName returns the human-readable name for a role
func RoleDisplayName(role Role) string {
	switch role {
	case RoleSuperAdmin:
		return "Super Admin"
	case RoleAdmin:
		return "Admin"
	case RoleProUser:
		return "Pro"
	case RoleFreeUser:
		return "Free"
	default:
		return string(role)
	}
}
