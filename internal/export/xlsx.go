package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/mnogodumalon/schichtplan/internal/schedule"
)

const planSheet = "Schichtplan"

// WeekPlanXLSX renders the weekly plan as a spreadsheet, one row per
// assignment.
func WeekPlanXLSX(plan schedule.WeekPlan) ([]byte, error) {
	file := excelize.NewFile()
	defer func() { _ = file.Close() }()

	index, err := file.NewSheet(planSheet)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	file.SetActiveSheet(index)
	if err := file.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("drop default sheet: %w", err)
	}

	headers := []string{"Datum", "Beginn", "Ende", "Mitarbeiter", "Unternehmen", "Schichtart", "Notiz"}
	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := file.SetCellValue(planSheet, cell, header); err != nil {
			return nil, err
		}
	}

	row := 2
	for _, day := range plan.Days {
		for _, assignment := range day.Assignments {
			values := []string{
				day.Date,
				assignment.Fields[schedule.FieldAssignmentStart],
				assignment.Fields[schedule.FieldAssignmentEnd],
				assignment.EmployeeName,
				assignment.CompanyName,
				assignment.ShiftTypeName,
				assignment.Fields[schedule.FieldAssignmentNote],
			}
			for col, value := range values {
				cell, err := excelize.CoordinatesToCellName(col+1, row)
				if err != nil {
					return nil, err
				}
				if err := file.SetCellValue(planSheet, cell, value); err != nil {
					return nil, err
				}
			}
			row++
		}
	}

	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("render xlsx: %w", err)
	}
	return buf.Bytes(), nil
}
