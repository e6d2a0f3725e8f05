package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/gdmcare/gdmcare/internal/domain/assessment"
	"github.com/gdmcare/gdmcare/internal/domain/audit"
	"github.com/gdmcare/gdmcare/internal/domain/identity"
	"github.com/gdmcare/gdmcare/internal/domain/patient"
	"github.com/gdmcare/gdmcare/internal/platform/pdf"
	"github.com/gdmcare/gdmcare/internal/scoring"
)

// Auditor records audit entries without failing the caller.
type Auditor interface {
	Record(ctx context.Context, e *audit.Entry)
}

// PatientDirectory resolves patient records.
type PatientDirectory interface {
	Get(ctx context.Context, id uuid.UUID) (*patient.Patient, error)
}

// AssessmentDirectory resolves stored assessments.
type AssessmentDirectory interface {
	Get(ctx context.Context, id uuid.UUID) (*assessment.Assessment, error)
}

// UserDirectory resolves assessor accounts for display names.
type UserDirectory interface {
	GetUser(ctx context.Context, id uuid.UUID) (*identity.User, error)
}

type Service struct {
	reports     Repository
	assessments AssessmentDirectory
	patients    PatientDirectory
	users       UserDirectory
	auditor     Auditor
	reportsDir  string
}

func NewService(reports Repository, assessments AssessmentDirectory, patients PatientDirectory,
	users UserDirectory, auditor Auditor, reportsDir string) *Service {
	return &Service{
		reports:     reports,
		assessments: assessments,
		patients:    patients,
		users:       users,
		auditor:     auditor,
		reportsDir:  reportsDir,
	}
}

// Generate composes the summary text, renders the PDF to the reports
// directory, and persists the report record.
func (s *Service) Generate(ctx context.Context, assessmentID uuid.UUID, generatedBy uuid.UUID) (*Report, error) {
	a, err := s.assessments.Get(ctx, assessmentID)
	if err != nil {
		return nil, fmt.Errorf("assessment not found")
	}
	p, err := s.patients.Get(ctx, a.PatientID)
	if err != nil {
		return nil, fmt.Errorf("patient not found")
	}
	if !p.Active {
		return nil, fmt.Errorf("patient is deactivated")
	}

	assessorName := "Unknown"
	if u, err := s.users.GetUser(ctx, a.AssessedBy); err == nil {
		assessorName = u.Name
	}

	now := time.Now()
	summary := composeSummary(p, a, assessorName, now)

	if err := os.MkdirAll(s.reportsDir, 0o755); err != nil {
		return nil, fmt.Errorf("reports directory: %w", err)
	}
	filename := fmt.Sprintf("gdm_report_%s_%s.pdf", p.ID, now.Format("20060102_150405"))
	path := filepath.Join(s.reportsDir, filename)

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create pdf: %w", err)
	}
	renderErr := pdf.Render(file, reportData(p, a, assessorName, now))
	if closeErr := file.Close(); renderErr == nil {
		renderErr = closeErr
	}
	if renderErr != nil {
		os.Remove(path)
		return nil, fmt.Errorf("render pdf: %w", renderErr)
	}

	rep := &Report{
		PatientID:    p.ID,
		AssessmentID: a.ID,
		PDFPath:      &path,
		SummaryText:  summary,
		GeneratedBy:  generatedBy,
		Active:       true,
	}
	if err := s.reports.Create(ctx, rep); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("persist report: %w", err)
	}

	s.auditor.Record(ctx, &audit.Entry{
		UserID:   &generatedBy,
		Action:   audit.ActionGenerateReport,
		Entity:   strPtr("report"),
		EntityID: &rep.ID,
		Details:  strPtr(fmt.Sprintf("Generated report for patient %s", p.FullName())),
	})
	return rep, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Report, error) {
	return s.reports.GetByID(ctx, id)
}

// Download returns the PDF path for an active report whose file exists.
func (s *Service) Download(ctx context.Context, id uuid.UUID, downloadedBy uuid.UUID) (string, error) {
	rep, err := s.reports.GetByID(ctx, id)
	if err != nil {
		return "", fmt.Errorf("report not found")
	}
	if !rep.Active {
		return "", fmt.Errorf("report is deleted")
	}
	if rep.PDFPath == nil {
		return "", fmt.Errorf("report has no file")
	}
	if _, err := os.Stat(*rep.PDFPath); err != nil {
		return "", fmt.Errorf("report file missing, regenerate the report")
	}

	s.auditor.Record(ctx, &audit.Entry{
		UserID:   &downloadedBy,
		Action:   audit.ActionDownloadReport,
		Entity:   strPtr("report"),
		EntityID: &rep.ID,
		Details:  strPtr(fmt.Sprintf("Downloaded report %s", rep.Filename())),
	})
	return *rep.PDFPath, nil
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Report, int, error) {
	return s.reports.List(ctx, limit, offset)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Report, int, error) {
	return s.reports.ListByPatient(ctx, patientID, limit, offset)
}

// Delete soft-deletes the record and removes the file from disk.
func (s *Service) Delete(ctx context.Context, id uuid.UUID, deletedBy uuid.UUID) error {
	rep, err := s.reports.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("report not found")
	}
	rep.Active = false
	if err := s.reports.Update(ctx, rep); err != nil {
		return fmt.Errorf("delete report: %w", err)
	}
	if rep.PDFPath != nil {
		// File removal is best-effort; the record is already inactive.
		os.Remove(*rep.PDFPath)
	}

	s.auditor.Record(ctx, &audit.Entry{
		UserID:   &deletedBy,
		Action:   audit.ActionDeleteReport,
		Entity:   strPtr("report"),
		EntityID: &rep.ID,
		Details:  strPtr(fmt.Sprintf("Deleted report %s", rep.ID)),
	})
	return nil
}

func reportData(p *patient.Patient, a *assessment.Assessment, assessorName string, generatedAt time.Time) pdf.ReportData {
	return pdf.ReportData{
		PatientName:     p.FullName(),
		DateOfBirth:     p.DateOfBirth,
		Age:             p.Age(),
		AssessmentDate:  a.CreatedAt,
		AssessorName:    assessorName,
		RiskPercentage:  a.RiskPercentage,
		RiskLabel:       a.RiskLabel,
		RiskDescription: scoring.Describe(a.RiskLabel),
		Parameters:      featureParameters(a.Features),
		RiskFactors:     riskFactors(a.Features),
		Recommendations: scoring.Recommendations(a.RiskLabel),
		ModelVersion:    a.ModelVersion,
		GeneratedAt:     generatedAt,
	}
}

func featureParameters(f scoring.Features) []pdf.Parameter {
	var params []pdf.Parameter
	if f.Age != nil {
		params = append(params, pdf.Parameter{Label: "Age", Value: fmt.Sprintf("%.0f years", *f.Age)})
	}
	if f.BMI != nil {
		params = append(params, pdf.Parameter{Label: "BMI", Value: fmt.Sprintf("%.1f kg/m2", *f.BMI)})
	}
	if f.SystolicBP != nil && f.DiastolicBP != nil {
		params = append(params, pdf.Parameter{Label: "Blood Pressure",
			Value: fmt.Sprintf("%.0f/%.0f mmHg", *f.SystolicBP, *f.DiastolicBP)})
	}
	if f.Hemoglobin != nil {
		params = append(params, pdf.Parameter{Label: "Hemoglobin", Value: fmt.Sprintf("%.1f g/dL", *f.Hemoglobin)})
	}
	if f.HDLCholesterol != nil {
		params = append(params, pdf.Parameter{Label: "HDL Cholesterol", Value: fmt.Sprintf("%.0f mg/dL", *f.HDLCholesterol)})
	}
	if f.PregnanciesCount != nil {
		params = append(params, pdf.Parameter{Label: "Number of Pregnancies", Value: fmt.Sprintf("%d", *f.PregnanciesCount)})
	}
	return params
}

func riskFactors(f scoring.Features) []string {
	var factors []string
	if f.FamilyHistoryDiabetes {
		factors = append(factors, "Family history of diabetes")
	}
	if f.SedentaryLifestyle {
		factors = append(factors, "Sedentary lifestyle")
	}
	if f.PrediabetesHistory {
		factors = append(factors, "History of prediabetes")
	}
	return factors
}

func strPtr(s string) *string { return &s }
