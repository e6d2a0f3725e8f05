// Package pdf renders risk assessment reports as PDF documents.
package pdf

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// Parameter is a labeled clinical value shown in the parameters table.
type Parameter struct {
	Label string
	Value string
}

// ReportData carries everything needed to render an assessment report.
type ReportData struct {
	PatientName     string
	DateOfBirth     time.Time
	Age             int
	AssessmentDate  time.Time
	AssessorName    string
	RiskPercentage  float64
	RiskLabel       string
	RiskDescription string
	Parameters      []Parameter
	RiskFactors     []string
	Recommendations []string
	ModelVersion    string
	GeneratedAt     time.Time
}

const dateLayout = "January 2, 2006"
const timestampLayout = "January 2, 2006 at 3:04 PM"

// Render writes the assessment report PDF to w.
func Render(w io.Writer, data ReportData) error {
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetTitle("Gestational Diabetes Risk Assessment Report", false)
	doc.SetAutoPageBreak(true, 20)
	doc.AddPage()

	writeHeader(doc)
	writeDemographics(doc, data)
	writeRiskBanner(doc, data)
	writeParameters(doc, data)
	writeRiskFactors(doc, data)
	writeRecommendations(doc, data)
	writeFooter(doc, data)

	return doc.Output(w)
}

func writeHeader(doc *gofpdf.Fpdf) {
	doc.SetFont("Helvetica", "B", 16)
	doc.SetTextColor(33, 37, 41)
	doc.CellFormat(0, 10, "Gestational Diabetes Risk Assessment Report", "", 1, "C", false, 0, "")
	doc.SetDrawColor(33, 37, 41)
	doc.SetLineWidth(0.5)
	doc.Line(10, doc.GetY()+2, 200, doc.GetY()+2)
	doc.Ln(8)
}

func writeDemographics(doc *gofpdf.Fpdf, data ReportData) {
	doc.SetFont("Helvetica", "B", 11)
	doc.CellFormat(0, 7, "Patient Information", "", 1, "L", false, 0, "")
	doc.SetFont("Helvetica", "", 10)

	rows := [][2]string{
		{"Patient", data.PatientName},
		{"Date of Birth", data.DateOfBirth.Format(dateLayout)},
		{"Age", fmt.Sprintf("%d years", data.Age)},
		{"Assessment Date", data.AssessmentDate.Format(timestampLayout)},
		{"Assessed By", data.AssessorName},
	}
	for _, row := range rows {
		doc.CellFormat(45, 6, row[0], "", 0, "L", false, 0, "")
		doc.CellFormat(0, 6, row[1], "", 1, "L", false, 0, "")
	}
	doc.Ln(4)
}

func writeRiskBanner(doc *gofpdf.Fpdf, data ReportData) {
	switch data.RiskLabel {
	case "HIGH":
		doc.SetFillColor(220, 53, 69)
	case "MODERATE":
		doc.SetFillColor(255, 193, 7)
	default:
		doc.SetFillColor(40, 167, 69)
	}
	doc.SetTextColor(255, 255, 255)
	doc.SetFont("Helvetica", "B", 13)
	banner := fmt.Sprintf("Risk Level: %s  (%.1f%%)", data.RiskLabel, data.RiskPercentage)
	doc.CellFormat(0, 12, banner, "", 1, "C", true, 0, "")

	doc.SetTextColor(33, 37, 41)
	doc.SetFont("Helvetica", "I", 10)
	doc.MultiCell(0, 5, data.RiskDescription, "", "L", false)
	doc.Ln(4)
}

func writeParameters(doc *gofpdf.Fpdf, data ReportData) {
	doc.SetFont("Helvetica", "B", 11)
	doc.CellFormat(0, 7, "Clinical Parameters", "", 1, "L", false, 0, "")

	doc.SetFont("Helvetica", "B", 9)
	doc.SetFillColor(240, 240, 240)
	doc.CellFormat(95, 7, "Parameter", "1", 0, "L", true, 0, "")
	doc.CellFormat(95, 7, "Value", "1", 1, "L", true, 0, "")

	doc.SetFont("Helvetica", "", 9)
	for _, p := range data.Parameters {
		doc.CellFormat(95, 6, p.Label, "1", 0, "L", false, 0, "")
		doc.CellFormat(95, 6, p.Value, "1", 1, "L", false, 0, "")
	}
	doc.Ln(4)
}

func writeRiskFactors(doc *gofpdf.Fpdf, data ReportData) {
	doc.SetFont("Helvetica", "B", 11)
	doc.CellFormat(0, 7, "Risk Factors", "", 1, "L", false, 0, "")
	doc.SetFont("Helvetica", "", 10)

	if len(data.RiskFactors) == 0 {
		doc.MultiCell(0, 5, "No significant risk factors identified from assessed parameters.", "", "L", false)
	} else {
		for _, factor := range data.RiskFactors {
			doc.CellFormat(0, 5, "- "+factor, "", 1, "L", false, 0, "")
		}
	}
	doc.Ln(4)
}

func writeRecommendations(doc *gofpdf.Fpdf, data ReportData) {
	if len(data.Recommendations) == 0 {
		return
	}
	doc.SetFont("Helvetica", "B", 11)
	doc.CellFormat(0, 7, "Clinical Recommendations", "", 1, "L", false, 0, "")
	doc.SetFont("Helvetica", "", 10)
	for i, rec := range data.Recommendations {
		doc.MultiCell(0, 5, fmt.Sprintf("%d. %s", i+1, rec), "", "L", false)
	}
	doc.Ln(4)
}

func writeFooter(doc *gofpdf.Fpdf, data ReportData) {
	doc.SetFont("Helvetica", "B", 10)
	doc.CellFormat(0, 6, "Important Notes", "", 1, "L", false, 0, "")
	doc.SetFont("Helvetica", "", 8)
	doc.MultiCell(0, 4,
		"This assessment is based on machine learning prediction and should be used as a "+
			"clinical decision support tool, not as a definitive diagnosis. Follow-up glucose "+
			"testing and clinical evaluation are recommended based on standard clinical "+
			"guidelines. Consult with healthcare provider for comprehensive care planning.",
		"", "L", false)
	doc.Ln(2)

	doc.SetFont("Helvetica", "I", 8)
	doc.SetTextColor(108, 117, 125)
	doc.CellFormat(0, 4, fmt.Sprintf("Model Version: %s", data.ModelVersion), "", 1, "L", false, 0, "")
	doc.CellFormat(0, 4, fmt.Sprintf("Report Generated: %s", data.GeneratedAt.Format(timestampLayout)), "", 1, "L", false, 0, "")
}
