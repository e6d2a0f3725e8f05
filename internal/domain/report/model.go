package report

import (
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Report maps to the reports table.
type Report struct {
	ID           uuid.UUID `db:"id" json:"id"`
	PatientID    uuid.UUID `db:"patient_id" json:"patient_id"`
	AssessmentID uuid.UUID `db:"assessment_id" json:"assessment_id"`
	PDFPath      *string   `db:"pdf_path" json:"-"`
	SummaryText  string    `db:"summary_text" json:"summary_text"`
	GeneratedBy  uuid.UUID `db:"generated_by" json:"generated_by"`
	Active       bool      `db:"active" json:"active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Filename returns the base name of the stored PDF, or "" when no file
// was rendered.
func (r *Report) Filename() string {
	if r.PDFPath == nil {
		return ""
	}
	return filepath.Base(*r.PDFPath)
}
