package schedule

import (
	"sort"
	"time"
)

const dateLayout = "2006-01-02"

// ParseDate accepts RFC3339 or YYYY-MM-DD.
func ParseDate(value string) (time.Time, error) {
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed, nil
	}
	return time.Parse(dateLayout, value)
}

// WeekOf returns the Monday of the week containing t, truncated to a date.
func WeekOf(t time.Time) time.Time {
	t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -offset)
}

// DayPlan is one calendar day of the weekly plan.
type DayPlan struct {
	Date        string               `json:"date"`
	Assignments []EnrichedAssignment `json:"assignments"`
}

// WeekPlan is the weekly calendar view: seven day slots starting Monday.
type WeekPlan struct {
	WeekStart string    `json:"weekStart"`
	Label     string    `json:"label"`
	Days      []DayPlan `json:"days"`
}

// BuildWeekPlan buckets enriched assignments into the seven days of the
// week starting at weekStart. Assignments without a parseable shift date
// are left out; days are ordered Monday through Sunday and assignments
// within a day by start time, then record id.
func BuildWeekPlan(assignments []EnrichedAssignment, weekStart time.Time) WeekPlan {
	weekStart = WeekOf(weekStart)
	weekEnd := weekStart.AddDate(0, 0, 6)

	plan := WeekPlan{
		WeekStart: weekStart.Format(dateLayout),
		Label:     weekStart.Format("02.01") + " – " + weekEnd.Format("02.01.2006"),
		Days:      make([]DayPlan, 7),
	}

	byDate := make(map[string][]EnrichedAssignment)
	for _, assignment := range assignments {
		date, err := ParseDate(assignment.Fields[FieldAssignmentDate])
		if err != nil {
			continue
		}
		key := date.Format(dateLayout)
		byDate[key] = append(byDate[key], assignment)
	}

	for i := range plan.Days {
		key := weekStart.AddDate(0, 0, i).Format(dateLayout)
		day := byDate[key]
		sort.SliceStable(day, func(a, b int) bool {
			if day[a].Fields[FieldAssignmentStart] != day[b].Fields[FieldAssignmentStart] {
				return day[a].Fields[FieldAssignmentStart] < day[b].Fields[FieldAssignmentStart]
			}
			return day[a].RecordID < day[b].RecordID
		})
		plan.Days[i] = DayPlan{Date: key, Assignments: day}
	}

	return plan
}
