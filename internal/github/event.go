package github

import (
	"encoding/json"
	"fmt"
	"os"
)

type eventPayload struct {
	Number      int `json:"number"`
	PullRequest *struct {
		Number int `json:"number"`
	} `json:"pull_request"`
}

// PRNumberFromEvent reads the pull request number from a GitHub Actions event
// payload file (GITHUB_EVENT_PATH).
func PRNumberFromEvent(path string) (int, error) {
	if path == "" {
		return 0, fmt.Errorf("GITHUB_EVENT_PATH is not set; pass --pr")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("reading event payload: %w", err)
	}
	var ev eventPayload
	if err := json.Unmarshal(data, &ev); err != nil {
		return 0, fmt.Errorf("parsing event payload: %w", err)
	}
	if ev.PullRequest != nil && ev.PullRequest.Number > 0 {
		return ev.PullRequest.Number, nil
	}
	if ev.Number > 0 {
		return ev.Number, nil
	}
	return 0, fmt.Errorf("event payload has no pull request number")
}
