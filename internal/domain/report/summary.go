package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/gdmcare/gdmcare/internal/domain/assessment"
	"github.com/gdmcare/gdmcare/internal/domain/patient"
	"github.com/gdmcare/gdmcare/internal/scoring"
)

const summaryDateLayout = "January 2, 2006"
const summaryTimestampLayout = "January 2, 2006 at 3:04 PM"

// composeSummary builds the plain-text assessment summary stored alongside
// the PDF.
func composeSummary(p *patient.Patient, a *assessment.Assessment, assessorName string, generatedAt time.Time) string {
	var b strings.Builder

	line := func(format string, args ...interface{}) {
		fmt.Fprintf(&b, format+"\n", args...)
	}

	line("GESTATIONAL DIABETES RISK ASSESSMENT REPORT")
	line("Patient: %s", p.FullName())
	line("Date of Birth: %s", p.DateOfBirth.Format(summaryDateLayout))
	line("Age: %d years", p.Age())
	line("Assessment Date: %s", a.CreatedAt.Format(summaryTimestampLayout))
	line("Assessed by: %s", assessorName)
	line("")

	line("RISK ASSESSMENT RESULTS")
	line("Risk Score: %.1f%%", a.RiskPercentage)
	line("Risk Level: %s", a.RiskLabel)
	line("Risk Description: %s", scoring.Describe(a.RiskLabel))
	line("")

	line("CLINICAL PARAMETERS USED")
	f := a.Features
	if f.Age != nil {
		line("Age: %.0f years", *f.Age)
	}
	if f.BMI != nil {
		line("BMI: %.1f kg/m2", *f.BMI)
	}
	if f.SystolicBP != nil && f.DiastolicBP != nil {
		line("Blood Pressure: %.0f/%.0f mmHg", *f.SystolicBP, *f.DiastolicBP)
	}
	if f.Hemoglobin != nil {
		line("Hemoglobin: %.1f g/dL", *f.Hemoglobin)
	}
	if f.HDLCholesterol != nil {
		line("HDL Cholesterol: %.0f mg/dL", *f.HDLCholesterol)
	}
	if f.PregnanciesCount != nil {
		line("Number of Pregnancies: %d", *f.PregnanciesCount)
	}
	line("")

	line("RISK FACTORS")
	factors := riskFactors(f)
	if len(factors) == 0 {
		line("No significant risk factors identified from assessed parameters.")
	} else {
		for _, factor := range factors {
			line("- %s", factor)
		}
	}
	line("")

	line("CLINICAL RECOMMENDATIONS")
	for i, rec := range scoring.Recommendations(a.RiskLabel) {
		line("%d. %s", i+1, rec)
	}
	line("")

	line("IMPORTANT NOTES")
	line("- This assessment is based on machine learning prediction and should be used")
	line("  as a clinical decision support tool, not as a definitive diagnosis.")
	line("- Follow-up glucose testing and clinical evaluation are recommended")
	line("  based on standard clinical guidelines.")
	line("- Consult with healthcare provider for comprehensive care planning.")
	line("")
	line("Model Version: %s", a.ModelVersion)
	line("Report Generated: %s", generatedAt.Format(summaryTimestampLayout))

	return b.String()
}
