package models

import "time"

// Activity log action names. Kept as free-form strings in storage, these
// constants cover the events the auth flows record.
const (
	ActionLogin          = "login"
	ActionLogout         = "logout"
	ActionRegister       = "register"
	ActionVerifyEmail    = "verify_email"
	ActionPasswordChange = "password_change"
	ActionPasswordReset  = "password_reset"
	ActionProfileUpdate  = "profile_update"
	ActionRoleChange     = "role_change"
)

type ActivityLog struct {
	ID          string
	UserID      string
	Action      string
	Description string
	IPAddress   string
	UserAgent   string
	CreatedAt   time.Time
}
