package auth

// nearLimitFactor is the fraction of a quota at which the upgrade
// prompt is shown. It never gates access.
const nearLimitFactor = 0.8

// UsageSnapshot holds the live usage counters for one user at
// evaluation time. It is supplied per request and never persisted here.
type UsageSnapshot struct {
	PDFCount       int `json:"pdf_count"`
	MonthlyUploads int `json:"monthly_uploads"`
}

// UserFeatures is the derived capability projection consumed by the UI.
// It is computed fresh on every evaluation; callers must not cache it.
type UserFeatures struct {
	CanUpload         bool `json:"can_upload"`
	CanSearch         bool `json:"can_search"`
	CanSemanticSearch bool `json:"can_semantic_search"`
	CanAskQuestions   bool `json:"can_ask_questions"`
	CanSummarize      bool `json:"can_summarize"`
	CanAccessShop     bool `json:"can_access_shop"`
	ShowUpgradeBanner bool `json:"show_upgrade_banner"`
	NearLimit         bool `json:"near_limit"`
}

// IsSuperAdmin reports whether the role is the super admin role
func IsSuperAdmin(role Role) bool {
	return role == RoleSuperAdmin
}

// IsAdminLevel reports whether an account has admin-equivalent access.
// Three independent signals are ORed: the super admin role, the admin
// role, and the explicit admin flag. The flag lets a non-admin-role
// account (a Pro user on staff) gain admin access without a role change.
func IsAdminLevel(role Role, isAdmin bool) bool {
	return role == RoleSuperAdmin || role == RoleAdmin || isAdmin
}

// IsProLevel reports whether the role carries Pro-tier entitlements.
// Admin roles carry them implicitly; free_user is the only role that
// does not.
func IsProLevel(role Role) bool {
	return role == RoleSuperAdmin || role == RoleAdmin || role == RoleProUser
}

// DeriveFeatures computes the per-request feature projection from a
// role and live usage counters. A nil usage treats both counters as
// zero, so a fresh or unknown account behaves as under quota. The
// function is pure: identical inputs always yield identical output.
func DeriveFeatures(role Role, usage *UsageSnapshot) UserFeatures {
	perms := PermissionsFor(role)

	var pdfCount, monthlyUploads int
	if usage != nil {
		pdfCount = usage.PDFCount
		monthlyUploads = usage.MonthlyUploads
	}

	nearLimit := role == RoleFreeUser &&
		(float64(pdfCount) >= float64(perms.PDFLimit)*nearLimitFactor ||
			float64(monthlyUploads) >= float64(perms.MonthlyUploads)*nearLimitFactor)

	return UserFeatures{
		CanUpload:         monthlyUploads < perms.MonthlyUploads && pdfCount < perms.PDFLimit,
		CanSearch:         true,
		CanSemanticSearch: perms.CanAccessAIFeatures,
		CanAskQuestions:   perms.CanAccessAIFeatures,
		CanSummarize:      perms.CanAccessAIFeatures,
		CanAccessShop:     true,
		ShowUpgradeBanner: role == RoleFreeUser,
		NearLimit:         nearLimit,
	}
}
