package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/mnogodumalon/schichtplan/internal/schedule"
)

var weekdayNames = []string{"Montag", "Dienstag", "Mittwoch", "Donnerstag", "Freitag", "Samstag", "Sonntag"}

// WeekPlanPDF renders the weekly plan as an A4 portrait document, one
// section per day.
func WeekPlanPDF(plan schedule.WeekPlan) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(60, 10, tr("Schichtplan"))
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(60, 10, tr(plan.Label))
	pdf.Ln(14)

	for i, day := range plan.Days {
		name := ""
		if i < len(weekdayNames) {
			name = weekdayNames[i]
		}
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(60, 8, tr(fmt.Sprintf("%s, %s", name, day.Date)))
		pdf.Ln(8)

		pdf.SetFont("Helvetica", "", 10)
		if len(day.Assignments) == 0 {
			pdf.Cell(60, 6, tr("keine Schichten"))
			pdf.Ln(8)
			continue
		}
		for _, assignment := range day.Assignments {
			line := fmt.Sprintf("%s - %s  %s  %s  %s",
				assignment.Fields[schedule.FieldAssignmentStart],
				assignment.Fields[schedule.FieldAssignmentEnd],
				assignment.EmployeeName,
				assignment.CompanyName,
				assignment.ShiftTypeName,
			)
			if note := assignment.Fields[schedule.FieldAssignmentNote]; note != "" {
				line += "  (" + note + ")"
			}
			pdf.Cell(180, 6, tr(line))
			pdf.Ln(6)
		}
		pdf.Ln(4)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
