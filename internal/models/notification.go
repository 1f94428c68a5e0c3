package models

import "time"

// Notification kinds produced by the backend workflows. The set is closed;
// producers publishing an unknown kind are rejected.
const (
	NotificationLeaveApproved   = "leave_approved"
	NotificationLeaveRejected   = "leave_rejected"
	NotificationLeaveRequest    = "leave_request"
	NotificationAttendanceEdit  = "attendance_edit"
	NotificationTaskAssigned    = "task_assigned"
	NotificationTaskCompleted   = "task_completed"
	NotificationInfo            = "info"
	NotificationSalaryGenerated = "salary_generated"
	NotificationSalaryApproved  = "salary_approved"
	NotificationSalaryPaid      = "salary_paid"
	NotificationSalaryReceived  = "salary_received"
	NotificationSalaryRequested = "salary_requested"
	NotificationSalaryIssue     = "salary_issue"
	NotificationChat            = "chat"
	NotificationDepartmentChat  = "department-chat"
	NotificationGeofenceAlert   = "geofence_alert"
)

var notificationKinds = map[string]struct{}{
	NotificationLeaveApproved:   {},
	NotificationLeaveRejected:   {},
	NotificationLeaveRequest:    {},
	NotificationAttendanceEdit:  {},
	NotificationTaskAssigned:    {},
	NotificationTaskCompleted:   {},
	NotificationInfo:            {},
	NotificationSalaryGenerated: {},
	NotificationSalaryApproved:  {},
	NotificationSalaryPaid:      {},
	NotificationSalaryReceived:  {},
	NotificationSalaryRequested: {},
	NotificationSalaryIssue:     {},
	NotificationChat:            {},
	NotificationDepartmentChat:  {},
	NotificationGeofenceAlert:   {},
}

// ValidNotificationKind reports whether k belongs to the closed enumeration.
func ValidNotificationKind(k string) bool {
	_, ok := notificationKinds[k]
	return ok
}

// Notification is a durable per-user notification record. It outlives the
// realtime delivery: offline users read it later through the notification
// list API.
type Notification struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Message   string    `db:"message" json:"message"`
	Kind      string    `db:"kind" json:"kind"`
	Read      bool      `db:"read" json:"read"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
