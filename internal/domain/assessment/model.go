package assessment

import (
	"time"

	"github.com/google/uuid"

	"github.com/gdmcare/gdmcare/internal/scoring"
)

// Assessment maps to the risk_assessments table. Rows are immutable once
// written; a new assessment is a new row.
type Assessment struct {
	ID             uuid.UUID        `db:"id" json:"id"`
	PatientID      uuid.UUID        `db:"patient_id" json:"patient_id"`
	AssessedBy     uuid.UUID        `db:"assessed_by" json:"assessed_by"`
	Features       scoring.Features `db:"features" json:"features"`
	RiskScore      float64          `db:"risk_score" json:"risk_score"`
	RiskLabel      string           `db:"risk_label" json:"risk_label"`
	RiskPercentage float64          `db:"risk_percentage" json:"risk_percentage"`
	ModelVersion   string           `db:"model_version" json:"model_version"`
	ThresholdLow   float64          `db:"threshold_low" json:"threshold_low"`
	ThresholdHigh  float64          `db:"threshold_high" json:"threshold_high"`
	CreatedAt      time.Time        `db:"created_at" json:"created_at"`
}

// Statistics aggregates assessment counts by risk label.
type Statistics struct {
	Total              int     `json:"total_assessments"`
	LowRisk            int     `json:"low_risk"`
	ModerateRisk       int     `json:"moderate_risk"`
	HighRisk           int     `json:"high_risk"`
	LowPercentage      float64 `json:"low_percentage"`
	ModeratePercentage float64 `json:"moderate_percentage"`
	HighPercentage     float64 `json:"high_percentage"`
}
