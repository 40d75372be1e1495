package export

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/mnogodumalon/schichtplan/internal/livingapps"
	"github.com/mnogodumalon/schichtplan/internal/schedule"
)

func samplePlan() schedule.WeekPlan {
	assignment := schedule.EnrichedAssignment{
		Record: livingapps.Record{
			RecordID: "cccccccccccccccccccccccc",
			Fields: map[string]string{
				schedule.FieldAssignmentDate:  "2026-08-31",
				schedule.FieldAssignmentStart: "06:00",
				schedule.FieldAssignmentEnd:   "14:00",
				schedule.FieldAssignmentNote:  "Übergabe beachten",
			},
		},
		EmployeeName:  "Anna",
		CompanyName:   "Acme GmbH",
		ShiftTypeName: "Frühschicht",
	}
	weekStart, _ := schedule.ParseDate("2026-08-31")
	return schedule.BuildWeekPlan([]schedule.EnrichedAssignment{assignment}, weekStart)
}

func TestWeekPlanPDF(t *testing.T) {
	payload, err := WeekPlanPDF(samplePlan())
	if err != nil {
		t.Fatalf("pdf export failed: %v", err)
	}
	if !bytes.HasPrefix(payload, []byte("%PDF")) {
		t.Fatalf("expected a pdf document, got %q", payload[:min(8, len(payload))])
	}
}

func TestWeekPlanXLSX(t *testing.T) {
	payload, err := WeekPlanXLSX(samplePlan())
	if err != nil {
		t.Fatalf("xlsx export failed: %v", err)
	}

	file, err := excelize.OpenReader(bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer func() { _ = file.Close() }()

	rows, err := file.GetRows("Schichtplan")
	if err != nil {
		t.Fatalf("read sheet: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header plus one row, got %d rows", len(rows))
	}
	if rows[0][0] != "Datum" {
		t.Fatalf("unexpected header row: %v", rows[0])
	}
	if rows[1][3] != "Anna" || rows[1][4] != "Acme GmbH" {
		t.Fatalf("unexpected data row: %v", rows[1])
	}
}
