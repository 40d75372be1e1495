package schedule

import "github.com/mnogodumalon/schichtplan/internal/livingapps"

// Field names as stored in the record store. The German names are the
// store-side schema and appear verbatim on the wire.
const (
	FieldCompanyName        = "unternehmen_name"
	FieldCompanyStreet      = "unternehmen_strasse"
	FieldCompanyHouseNumber = "unternehmen_hausnummer"
	FieldCompanyPostalCode  = "unternehmen_plz"
	FieldCompanyCity        = "unternehmen_ort"
	FieldCompanyNote        = "unternehmen_notiz"

	FieldShiftTypeName        = "schichtart_name"
	FieldShiftTypeDescription = "schichtart_beschreibung"
	FieldShiftTypeStart       = "schichtart_beginn"
	FieldShiftTypeEnd         = "schichtart_ende"

	FieldEmployeeFirstName = "mitarbeiter_vorname"
	FieldEmployeeEmail     = "mitarbeiter_email"
	FieldEmployeePhone     = "mitarbeiter_telefon"
	FieldEmployeeLastName  = "mitarbeiter_nachname"

	FieldAssignmentNote      = "zuweisung_notiz"
	FieldAssignmentStart     = "zuweisung_beginn"
	FieldAssignmentEnd       = "zuweisung_ende"
	FieldAssignmentEmployee  = "zuweisung_mitarbeiter"
	FieldAssignmentDate      = "zuweisung_datum"
	FieldAssignmentCompany   = "zuweisung_unternehmen"
	FieldAssignmentShiftType = "zuweisung_schichtart"
)

// Schema declares the known field names of a collection. Records coming
// from the store and payloads going to it are normalized against it instead
// of being passed through as arbitrary maps.
type Schema []string

var (
	CompanySchema = Schema{
		FieldCompanyName,
		FieldCompanyStreet,
		FieldCompanyHouseNumber,
		FieldCompanyPostalCode,
		FieldCompanyCity,
		FieldCompanyNote,
	}

	ShiftTypeSchema = Schema{
		FieldShiftTypeName,
		FieldShiftTypeDescription,
		FieldShiftTypeStart,
		FieldShiftTypeEnd,
	}

	EmployeeSchema = Schema{
		FieldEmployeeFirstName,
		FieldEmployeeEmail,
		FieldEmployeePhone,
		FieldEmployeeLastName,
	}

	AssignmentSchema = Schema{
		FieldAssignmentNote,
		FieldAssignmentStart,
		FieldAssignmentEnd,
		FieldAssignmentEmployee,
		FieldAssignmentDate,
		FieldAssignmentCompany,
		FieldAssignmentShiftType,
	}
)

// AssignmentReferenceFields are the foreign-key fields of an assignment.
var AssignmentReferenceFields = []string{
	FieldAssignmentEmployee,
	FieldAssignmentCompany,
	FieldAssignmentShiftType,
}

func (s Schema) contains(name string) bool {
	for _, field := range s {
		if field == name {
			return true
		}
	}
	return false
}

// Normalize returns a copy of the record with exactly the declared fields:
// unknown attributes are dropped and missing ones default to the empty
// string. The input record is not modified.
func (s Schema) Normalize(record livingapps.Record) livingapps.Record {
	fields := make(map[string]string, len(s))
	for _, name := range s {
		fields[name] = record.Fields[name]
	}
	record.Fields = fields
	return record
}

// Filter keeps only declared fields of an inbound payload, preserving
// partial-update semantics: keys the caller did not set stay absent.
func (s Schema) Filter(fields map[string]string) map[string]string {
	filtered := make(map[string]string, len(fields))
	for name, value := range fields {
		if s.contains(name) {
			filtered[name] = value
		}
	}
	return filtered
}

// Collections carries the store location of the four record collections.
type Collections struct {
	BaseURL     string
	Companies   string
	ShiftTypes  string
	Employees   string
	Assignments string
}
