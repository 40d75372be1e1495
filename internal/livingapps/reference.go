package livingapps

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultBaseURL is the production REST endpoint of the record store.
const DefaultBaseURL = "https://my.living-apps.de/rest"

var recordIDPattern = regexp.MustCompile(`([0-9a-fA-F]{24})$`)

// ExtractRecordID pulls the trailing 24-hex record identifier out of a
// reference URL. Returns "" for empty or malformed input; never errors,
// since a dangling reference is not a failure condition.
func ExtractRecordID(reference string) string {
	if reference == "" {
		return ""
	}
	match := recordIDPattern.FindString(reference)
	return match
}

// RecordURL builds the reference URL for a record, the inverse of
// ExtractRecordID for any well-formed record identifier.
func RecordURL(baseURL, appID, recordID string) string {
	base := strings.TrimSuffix(baseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	return fmt.Sprintf("%s/apps/%s/records/%s", base, appID, recordID)
}
