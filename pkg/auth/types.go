package auth

import "time"

// User represents a stored profile record. Role is the billing-relevant
// tier; IsAdmin is an orthogonal staff flag that grants admin access
// without changing the role.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	Role      Role      `json:"role"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Permissions returns the static permission set for the user's role
func (u *User) Permissions() PermissionSet {
	return PermissionsFor(u.Role)
}

// ExternalPrincipal is an authenticated identity supplied by an
// identity provider. It carries no role; roles live on the profile
// record only.
type ExternalPrincipal struct {
	ExternalID string `json:"external_id"`
	Email      string `json:"email"`
	Name       string `json:"name,omitempty"`
	AvatarURL  string `json:"avatar_url,omitempty"`
	Provider   string `json:"provider"`
}
