package metrics

import (
	"time"

	"github.com/google/uuid"

	"github.com/gdmcare/gdmcare/internal/scoring"
)

// Metrics maps to the clinical_metrics table. One row per visit.
type Metrics struct {
	ID                    uuid.UUID `db:"id" json:"id"`
	PatientID             uuid.UUID `db:"patient_id" json:"patient_id"`
	VisitDate             time.Time `db:"visit_date" json:"visit_date"`
	BMI                   *float64  `db:"bmi" json:"bmi,omitempty"`
	SystolicBP            *int      `db:"systolic_bp" json:"systolic_bp,omitempty"`
	DiastolicBP           *int      `db:"diastolic_bp" json:"diastolic_bp,omitempty"`
	Hemoglobin            *float64  `db:"hemoglobin" json:"hemoglobin,omitempty"`
	HDLCholesterol        *float64  `db:"hdl_cholesterol" json:"hdl_cholesterol,omitempty"`
	PregnanciesCount      *int      `db:"pregnancies_count" json:"pregnancies_count,omitempty"`
	SedentaryLifestyle    *bool     `db:"sedentary_lifestyle" json:"sedentary_lifestyle,omitempty"`
	FamilyHistoryDiabetes *bool     `db:"family_history_diabetes" json:"family_history_diabetes,omitempty"`
	PrediabetesHistory    *bool     `db:"prediabetes_history" json:"prediabetes_history,omitempty"`
	PCOSHistory           *bool     `db:"pcos_history" json:"pcos_history,omitempty"`
	PreviousGDM           *bool     `db:"previous_gdm" json:"previous_gdm,omitempty"`
	PreviousMacrosomia    *bool     `db:"previous_macrosomia" json:"previous_macrosomia,omitempty"`
	Notes                 *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt             time.Time `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time `db:"updated_at" json:"updated_at"`
}

// BMICategory buckets the BMI reading into the standard WHO categories.
func (m *Metrics) BMICategory() string {
	if m.BMI == nil {
		return "Unknown"
	}
	switch bmi := *m.BMI; {
	case bmi < 18.5:
		return "Underweight"
	case bmi < 25:
		return "Normal weight"
	case bmi < 30:
		return "Overweight"
	default:
		return "Obese"
	}
}

// BloodPressureCategory buckets the reading per AHA stages.
func (m *Metrics) BloodPressureCategory() string {
	if m.SystolicBP == nil || m.DiastolicBP == nil {
		return "Unknown"
	}
	sys, dia := *m.SystolicBP, *m.DiastolicBP
	switch {
	case sys < 120 && dia < 80:
		return "Normal"
	case sys < 130 && dia < 80:
		return "Elevated"
	case sys < 140 || dia < 90:
		return "High Blood Pressure Stage 1"
	default:
		return "High Blood Pressure Stage 2"
	}
}

// RiskFactorCount returns how many of the boolean risk factors are set.
func (m *Metrics) RiskFactorCount() int {
	count := 0
	for _, f := range []*bool{
		m.SedentaryLifestyle,
		m.FamilyHistoryDiabetes,
		m.PrediabetesHistory,
		m.PCOSHistory,
		m.PreviousGDM,
		m.PreviousMacrosomia,
	} {
		if f != nil && *f {
			count++
		}
	}
	return count
}

// FeatureVector assembles the scoring input from this visit plus the
// patient's age. Absent boolean factors score as false.
func (m *Metrics) FeatureVector(patientAge int) scoring.Features {
	age := float64(patientAge)
	f := scoring.Features{
		Age:                   &age,
		BMI:                   m.BMI,
		Hemoglobin:            m.Hemoglobin,
		HDLCholesterol:        m.HDLCholesterol,
		PregnanciesCount:      m.PregnanciesCount,
		FamilyHistoryDiabetes: m.FamilyHistoryDiabetes != nil && *m.FamilyHistoryDiabetes,
		SedentaryLifestyle:    m.SedentaryLifestyle != nil && *m.SedentaryLifestyle,
		PrediabetesHistory:    m.PrediabetesHistory != nil && *m.PrediabetesHistory,
	}
	if m.SystolicBP != nil {
		v := float64(*m.SystolicBP)
		f.SystolicBP = &v
	}
	if m.DiastolicBP != nil {
		v := float64(*m.DiastolicBP)
		f.DiastolicBP = &v
	}
	return f
}

// CompleteForPrediction reports whether this visit carries every field the
// engine requires plus the three core history flags.
func (m *Metrics) CompleteForPrediction() bool {
	return m.BMI != nil &&
		m.SystolicBP != nil &&
		m.DiastolicBP != nil &&
		m.PregnanciesCount != nil &&
		m.FamilyHistoryDiabetes != nil &&
		m.SedentaryLifestyle != nil &&
		m.PrediabetesHistory != nil
}
