package domain

// Access token claim names. The subject claim carries the email; userid and
// role are custom claims consumed by the authentication middleware.
const (
	// ClaimUserID is the custom claim holding the user (profile) ID.
	ClaimUserID = "userid"

	// ClaimRole is the custom claim holding the role name.
	ClaimRole = "role"
)

// RevocationReason explains why an access token's jti was registered in the
// revocation registry. The reason is stored as the registry value and logged.
type RevocationReason string

const (
	// ReasonRoleChanged marks tokens cut off because the user's role changed.
	ReasonRoleChanged RevocationReason = "role_changed"

	// ReasonLogout marks tokens revoked by an explicit logout.
	ReasonLogout RevocationReason = "logout"

	// ReasonUserDeleted marks tokens cut off because the user was deleted.
	ReasonUserDeleted RevocationReason = "user_deleted"
)
