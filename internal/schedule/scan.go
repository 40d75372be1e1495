package schedule

import (
	"context"
	"strings"

	"github.com/mnogodumalon/schichtplan/internal/livingapps"
)

// Extractor is the external photo-extraction capability: given an image and
// a schema description it returns a best-effort mapping of assignment field
// names to extracted values, nil for fields it could not read. It is slow
// and unreliable; callers must treat failures as non-fatal.
type Extractor interface {
	ExtractFields(ctx context.Context, image []byte, mimeType string, schema string) (map[string]*string, error)
}

// AssignmentScanSchema describes the expected extraction result to the
// capability. Reference fields are requested as display names and resolved
// against the lookup collections afterwards.
const AssignmentScanSchema = `{
  "zuweisung_notiz": string | null, // Notiz (optional)
  "zuweisung_beginn": string | null, // Beginn (Uhrzeit)
  "zuweisung_ende": string | null, // Ende (Uhrzeit)
  "zuweisung_mitarbeiter": string | null, // Name des Mitarbeiters
  "zuweisung_datum": string | null, // YYYY-MM-DD // Datum der Schicht
  "zuweisung_unternehmen": string | null, // Name des Unternehmens
  "zuweisung_schichtart": string | null // Name der Schichtart
}`

// Lookups are the collection snapshots reference candidates are matched
// against, in collection iteration order.
type Lookups struct {
	Employees  []livingapps.Record
	Companies  []livingapps.Record
	ShiftTypes []livingapps.Record
}

// MergeExtracted folds extracted key/value pairs into the current form
// state. Extraction never overwrites a non-empty form value. Reference
// fields arrive as display names and are resolved to record URLs by a
// case-insensitive substring match (either direction) against the first
// display field of the lookup collection; the first match in collection
// order wins, no match leaves the field unset. Nil values are skipped.
// The input maps are not modified.
func MergeExtracted(form map[string]string, extracted map[string]*string, lookups Lookups, cols Collections) map[string]string {
	merged := make(map[string]string, len(form)+len(extracted))
	for name, value := range form {
		merged[name] = value
	}

	isReference := map[string]bool{
		FieldAssignmentEmployee:  true,
		FieldAssignmentCompany:   true,
		FieldAssignmentShiftType: true,
	}

	for name, value := range extracted {
		if isReference[name] || value == nil {
			continue
		}
		if merged[name] == "" {
			merged[name] = *value
		}
	}

	resolveReference(merged, extracted, FieldAssignmentEmployee, lookups.Employees, FieldEmployeeFirstName, cols.BaseURL, cols.Employees)
	resolveReference(merged, extracted, FieldAssignmentCompany, lookups.Companies, FieldCompanyName, cols.BaseURL, cols.Companies)
	resolveReference(merged, extracted, FieldAssignmentShiftType, lookups.ShiftTypes, FieldShiftTypeName, cols.BaseURL, cols.ShiftTypes)

	return merged
}

func resolveReference(merged map[string]string, extracted map[string]*string, field string, lookup []livingapps.Record, displayField, baseURL, appID string) {
	if merged[field] != "" {
		return
	}
	candidate := extracted[field]
	if candidate == nil || *candidate == "" {
		return
	}
	for _, record := range lookup {
		if matchName(*candidate, record.Fields[displayField]) {
			merged[field] = livingapps.RecordURL(baseURL, appID, record.RecordID)
			return
		}
	}
}

// matchName: trimmed, case-insensitive, and a match when either string
// contains the other. Deliberately loose; shift notes are handwritten.
func matchName(candidate, fieldValue string) bool {
	name := strings.ToLower(strings.TrimSpace(candidate))
	value := strings.ToLower(fieldValue)
	return strings.Contains(value, name) || strings.Contains(name, value)
}
