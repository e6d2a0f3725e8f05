package audit

import (
	"time"

	"github.com/google/uuid"
)

// Audit actions recorded throughout the service.
const (
	ActionLoginSuccess = "LOGIN_SUCCESS"
	ActionLoginFailed  = "LOGIN_FAILED"
	ActionLogout       = "LOGOUT"

	ActionCreatePatient = "CREATE_PATIENT"
	ActionUpdatePatient = "UPDATE_PATIENT"
	ActionViewPatient   = "VIEW_PATIENT"
	ActionDeletePatient = "DELETE_PATIENT"

	ActionAddMetrics    = "ADD_CLINICAL_METRICS"
	ActionUpdateMetrics = "UPDATE_CLINICAL_METRICS"

	ActionPerformAssessment = "PERFORM_ASSESSMENT"
	ActionViewAssessment    = "VIEW_ASSESSMENT"

	ActionGenerateReport = "GENERATE_REPORT"
	ActionDownloadReport = "DOWNLOAD_REPORT"
	ActionDeleteReport   = "DELETE_REPORT"

	ActionCreateUser = "CREATE_USER"
	ActionUpdateUser = "UPDATE_USER"

	ActionSystemStartup = "SYSTEM_STARTUP"
)

// Entry maps to the audit_log table. Entries are append-only.
type Entry struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	UserID    *uuid.UUID `db:"user_id" json:"user_id,omitempty"`
	Action    string     `db:"action" json:"action"`
	Entity    *string    `db:"entity" json:"entity,omitempty"`
	EntityID  *uuid.UUID `db:"entity_id" json:"entity_id,omitempty"`
	Details   *string    `db:"details" json:"details,omitempty"`
	IPAddress *string    `db:"ip_address" json:"ip_address,omitempty"`
	UserAgent *string    `db:"user_agent" json:"user_agent,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}
