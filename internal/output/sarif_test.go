package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/dshills/prbot/internal/review"
)

func TestWriteSARIF(t *testing.T) {
	o := sampleOutcome()
	o.Result.Comments = append(o.Result.Comments,
		review.Comment{Path: "", Line: 3, Severity: review.SeverityNitpick, Body: "no path"},
		review.Comment{Path: "c.go", Line: 0, Severity: review.SeverityNitpick, Body: "no line"},
	)

	var buf bytes.Buffer
	if err := WriteSARIF(&buf, o, "1.0"); err != nil {
		t.Fatalf("WriteSARIF error: %v", err)
	}

	var sarif sarifLog
	if err := json.Unmarshal(buf.Bytes(), &sarif); err != nil {
		t.Fatalf("Invalid SARIF JSON: %v", err)
	}
	if sarif.Version != "2.1.0" {
		t.Errorf("Version = %q, want %q", sarif.Version, "2.1.0")
	}
	run := sarif.Runs[0]
	if len(run.Results) != 3 {
		t.Fatalf("Results count = %d, want 3 (unanchored comments dropped)", len(run.Results))
	}
	if len(run.Tool.Driver.Rules) != 2 {
		t.Errorf("Rules count = %d, want 2 (one per severity seen)", len(run.Tool.Driver.Rules))
	}
	if run.Results[0].Level != "error" {
		t.Errorf("critical level = %q, want error", run.Results[0].Level)
	}
	if run.Results[0].Locations[0].PhysicalLocation.Region.StartLine != 10 {
		t.Errorf("StartLine = %d, want 10", run.Results[0].Locations[0].PhysicalLocation.Region.StartLine)
	}
}

func TestWriteSARIF_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSARIF(&buf, &review.Outcome{}, "1.0"); err != nil {
		t.Fatalf("WriteSARIF error: %v", err)
	}
	var sarif sarifLog
	if err := json.Unmarshal(buf.Bytes(), &sarif); err != nil {
		t.Fatalf("Invalid SARIF JSON: %v", err)
	}
	if sarif.Runs[0].Results == nil {
		t.Error("results should be an empty array, not null")
	}
}
