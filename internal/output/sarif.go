package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dshills/prbot/internal/review"
)

// WriteSARIF writes review comments in SARIF v2.1.0 format for code scanning
// upload. Comments without a path or a positive line are dropped because
// SARIF regions must be anchored.
func WriteSARIF(w io.Writer, o *review.Outcome, toolVersion string) error {
	data, err := json.MarshalIndent(buildSARIF(o, toolVersion), "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling SARIF: %w", err)
	}
	_, err = w.Write(data)
	if err != nil {
		return fmt.Errorf("writing SARIF: %w", err)
	}
	_, err = fmt.Fprintln(w)
	return err
}

// SARIF schema types (v2.1.0)

type sarifLog struct {
	Version string     `json:"version"`
	Schema  string     `json:"$schema"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	Version        string      `json:"version"`
	InformationURI string      `json:"informationUri"`
	Rules          []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string             `json:"id"`
	Name             string             `json:"name"`
	ShortDescription sarifMessage       `json:"shortDescription"`
	DefaultConfig    sarifDefaultConfig `json:"defaultConfiguration"`
}

type sarifDefaultConfig struct {
	Level string `json:"level"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           sarifRegion           `json:"region"`
}

type sarifArtifactLocation struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine int `json:"startLine"`
}

var sarifRuleText = map[review.Severity]string{
	review.SeverityCritical:   "Must be fixed before merging",
	review.SeveritySuggestion: "Recommended improvement",
	review.SeverityNitpick:    "Minor polish",
}

func buildSARIF(o *review.Outcome, toolVersion string) sarifLog {
	results := []sarifResult{}
	var rules []sarifRule
	seen := make(map[string]bool)

	for _, c := range o.Result.Comments {
		if c.Path == "" || c.Line <= 0 {
			continue
		}
		sev := c.Severity
		if _, ok := sarifRuleText[sev]; !ok {
			sev = review.SeveritySuggestion
		}
		ruleID := "prbot/" + string(sev)
		if !seen[ruleID] {
			seen[ruleID] = true
			rules = append(rules, sarifRule{
				ID:               ruleID,
				Name:             string(sev),
				ShortDescription: sarifMessage{Text: sarifRuleText[sev]},
				DefaultConfig:    sarifDefaultConfig{Level: severityToLevel(sev)},
			})
		}
		results = append(results, sarifResult{
			RuleID:  ruleID,
			Level:   severityToLevel(sev),
			Message: sarifMessage{Text: c.Body},
			Locations: []sarifLocation{{
				PhysicalLocation: sarifPhysicalLocation{
					ArtifactLocation: sarifArtifactLocation{URI: c.Path},
					Region:           sarifRegion{StartLine: c.Line},
				},
			}},
		})
	}

	return sarifLog{
		Version: "2.1.0",
		Schema:  "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/main/sarif-2.1/schema/sarif-schema-2.1.0.json",
		Runs: []sarifRun{
			{
				Tool: sarifTool{
					Driver: sarifDriver{
						Name:           "prbot",
						Version:        toolVersion,
						InformationURI: "https://github.com/dshills/prbot",
						Rules:          rules,
					},
				},
				Results: results,
			},
		},
	}
}

// severityToLevel maps a comment severity to a SARIF level.
func severityToLevel(s review.Severity) string {
	switch s {
	case review.SeverityCritical:
		return "error"
	case review.SeveritySuggestion:
		return "warning"
	default:
		return "note"
	}
}
