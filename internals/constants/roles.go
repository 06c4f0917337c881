package constants

import "fmt"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Keys used with c.Locals by the auth middleware.
const (
	LocalUserID    = "user_id"
	LocalUserRole  = "userRole"
	LocalUserName  = "user_name"
	LocalUserEmail = "user_email"
	LocalReqID     = "reqid"
)

// Template pesan error role
const (
	ErrOnlyAdminsCanAccess = "only admins may access %s"
)

func RoleErrorAdmin(feature string) string {
	return fmt.Sprintf(ErrOnlyAdminsCanAccess, feature)
}

var AdminOnly = []string{
	RoleAdmin,
}
