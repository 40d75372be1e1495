package schedule

import (
	"strings"

	"github.com/mnogodumalon/schichtplan/internal/livingapps"
)

// Index maps record identifiers to records of one collection.
type Index map[string]livingapps.Record

// BuildIndex keys a collection snapshot by record_id.
func BuildIndex(records []livingapps.Record) Index {
	index := make(Index, len(records))
	for _, record := range records {
		index[record.RecordID] = record
	}
	return index
}

// Indexes holds the lookup indexes an assignment can reference.
type Indexes struct {
	Employees  Index
	Companies  Index
	ShiftTypes Index
}

// EnrichedAssignment is a read-only derived view: the assignment record plus
// resolved display strings for its three references. It is rebuilt on every
// load and never written back to the store.
type EnrichedAssignment struct {
	livingapps.Record
	EmployeeName  string `json:"zuweisung_mitarbeiterName"`
	CompanyName   string `json:"zuweisung_unternehmenName"`
	ShiftTypeName string `json:"zuweisung_schichtartName"`
}

// resolveDisplay turns a reference URL into a display string built from the
// referenced record's fields. Absent, malformed and dangling references all
// resolve to "".
func resolveDisplay(reference string, index Index, fields ...string) string {
	if reference == "" {
		return ""
	}
	id := livingapps.ExtractRecordID(reference)
	if id == "" {
		return ""
	}
	record, ok := index[id]
	if !ok {
		return ""
	}
	parts := make([]string, 0, len(fields))
	for _, name := range fields {
		parts = append(parts, record.Fields[name])
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

// EnrichAssignments resolves the employee, company and shift-type references
// of each assignment. Output order matches input order; inputs are not
// modified.
func EnrichAssignments(assignments []livingapps.Record, indexes Indexes) []EnrichedAssignment {
	enriched := make([]EnrichedAssignment, 0, len(assignments))
	for _, record := range assignments {
		enriched = append(enriched, EnrichedAssignment{
			Record:        record,
			EmployeeName:  resolveDisplay(record.Fields[FieldAssignmentEmployee], indexes.Employees, FieldEmployeeFirstName),
			CompanyName:   resolveDisplay(record.Fields[FieldAssignmentCompany], indexes.Companies, FieldCompanyName),
			ShiftTypeName: resolveDisplay(record.Fields[FieldAssignmentShiftType], indexes.ShiftTypes, FieldShiftTypeName),
		})
	}
	return enriched
}
