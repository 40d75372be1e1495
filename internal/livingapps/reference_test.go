package livingapps

import (
	"strings"
	"testing"
)

func TestExtractRecordIDRoundTrip(t *testing.T) {
	ids := []string{
		"aaaaaaaaaaaaaaaaaaaaaaaa",
		"682651b67f1fb97703cf487a",
		"ABCDEF0123456789abcdef01",
	}

	for _, id := range ids {
		url := RecordURL(DefaultBaseURL, "682651bf7002b5008a5598bf", id)
		if got := ExtractRecordID(url); got != id {
			t.Fatalf("round trip for %q: got %q", id, got)
		}
	}
}

func TestExtractRecordIDRejectsMalformed(t *testing.T) {
	cases := []string{
		"",
		"https://my.living-apps.de/rest/apps/x/records/",
		"https://my.living-apps.de/rest/apps/x/records/tooshort",
		"aaaaaaaaaaaaaaaaaaaaaaag",                   // non-hex character
		"aaaaaaaaaaaaaaaaaaaaaaaa/",                  // id not at the end
		strings.Repeat("a", 24) + "trailing-garbage", // likewise
	}

	for _, input := range cases {
		if got := ExtractRecordID(input); got != "" {
			t.Fatalf("expected no match for %q, got %q", input, got)
		}
	}
}

func TestExtractRecordIDAcceptsLongerHexRuns(t *testing.T) {
	// Only the trailing 24 characters are the identifier.
	input := "ff" + strings.Repeat("a", 24)
	if got := ExtractRecordID(input); got != strings.Repeat("a", 24) {
		t.Fatalf("got %q", got)
	}
}

func TestRecordURLTrimsTrailingSlash(t *testing.T) {
	url := RecordURL("https://example.test/rest/", "app1", "aaaaaaaaaaaaaaaaaaaaaaaa")
	want := "https://example.test/rest/apps/app1/records/aaaaaaaaaaaaaaaaaaaaaaaa"
	if url != want {
		t.Fatalf("got %q, want %q", url, want)
	}
}
