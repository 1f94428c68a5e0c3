package auth

// Role is the access level carried by a verified credential.
type Role string

const (
	RoleStaff Role = "staff"
	RoleHR    Role = "hr"
	RoleAdmin Role = "admin"
	RoleOwner Role = "owner"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleStaff, RoleHR, RoleAdmin, RoleOwner:
		return true
	}
	return false
}

func elevated(r Role) bool {
	return r == RoleAdmin || r == RoleHR || r == RoleOwner
}

// CanJoinDepartment reports whether the role may explicitly join an
// arbitrary department room. Staff are only ever joined to their own
// department automatically at handshake time.
func CanJoinDepartment(r Role) bool {
	return elevated(r)
}

// CanOverrideTargetDepartment reports whether the role may redirect a
// department broadcast to a department other than its own.
func CanOverrideTargetDepartment(r Role) bool {
	return elevated(r)
}

// CanTeardownConversation reports whether the role may delete a conversation
// and its message history.
func CanTeardownConversation(r Role) bool {
	return r == RoleAdmin
}
