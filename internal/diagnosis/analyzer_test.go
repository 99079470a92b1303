package diagnosis

import (
	"strings"
	"testing"
)

func TestParseAssessment(t *testing.T) {
	raw := `{"summary":"indikator stres teridentifikasi","recommendations":["tidur cukup"],"severity":"high","next_steps":"follow-up"}`

	a, err := parseAssessment(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if a.Summary != "indikator stres teridentifikasi" {
		t.Fatalf("summary = %q", a.Summary)
	}
	if a.Severity != SeverityHigh {
		t.Fatalf("severity = %q", a.Severity)
	}
	if len(a.Recommendations) != 1 || a.Recommendations[0] != "tidur cukup" {
		t.Fatalf("recommendations = %v", a.Recommendations)
	}
}

func TestParseAssessmentStripsMarkdownFence(t *testing.T) {
	raw := "```json\n{\"summary\":\"ringkasan\",\"recommendations\":[],\"severity\":\"low\",\"next_steps\":\"\"}\n```"

	a, err := parseAssessment(raw)
	if err != nil {
		t.Fatalf("parse fenced: %v", err)
	}
	if a.Summary != "ringkasan" || a.Severity != SeverityLow {
		t.Fatalf("assessment = %+v", a)
	}
}

func TestParseAssessmentUnknownSeverityDefaultsMedium(t *testing.T) {
	raw := `{"summary":"ringkasan","severity":"catastrophic"}`

	a, err := parseAssessment(raw)
	if err != nil {
		t.Fatal(err)
	}
	if a.Severity != SeverityMedium {
		t.Fatalf("severity = %q, want medium", a.Severity)
	}
}

func TestParseAssessmentRejectsGarbage(t *testing.T) {
	if _, err := parseAssessment("I cannot help with that."); err == nil {
		t.Fatal("expected parse error for non-JSON output")
	}
	if _, err := parseAssessment(`{"recommendations":[]}`); err == nil || !strings.Contains(err.Error(), "summary") {
		t.Fatalf("expected missing-summary error, got %v", err)
	}
}
