package chat

import "strings"

const deptGroupPrefix = "dept-"

// ConversationKey derives the canonical lookup key for an unordered pair of
// user ids. It is order-independent and is only ever a lookup key; the
// conversation's public id is generated at creation.
func ConversationKey(userA, userB string) string {
	if userB < userA {
		userA, userB = userB, userA
	}
	return userA + ":" + userB
}

// DepartmentGroupID derives the broadcast group id for a department name:
// trimmed, lower-cased, whitespace runs collapsed to a hyphen, then prefixed
// "dept-" unconditionally so distinct names never collide. Never stored as
// independent truth; every persisted group_id is a cache of this function.
func DepartmentGroupID(department string) string {
	slug := strings.ToLower(strings.Join(strings.Fields(department), "-"))
	if slug == "" {
		return ""
	}
	return deptGroupPrefix + slug
}

// UserRoom names the personal room every connection joins at handshake.
func UserRoom(userID string) string {
	return "user:" + userID
}

// DepartmentRoom names the broadcast room for a derived group id.
func DepartmentRoom(groupID string) string {
	return "dept:" + groupID
}
