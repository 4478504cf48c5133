package github

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPRNumberFromEvent(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    int
		wantErr bool
	}{
		{"pull_request event", `{"action":"opened","number":12,"pull_request":{"number":12}}`, 12, false},
		{"number only", `{"number":5}`, 5, false},
		{"push event", `{"ref":"refs/heads/main"}`, 0, true},
		{"invalid json", `{`, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "event.json")
			if err := os.WriteFile(path, []byte(tt.payload), 0o644); err != nil {
				t.Fatal(err)
			}
			got, err := PRNumberFromEvent(path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("PRNumberFromEvent = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPRNumberFromEvent_NoPath(t *testing.T) {
	if _, err := PRNumberFromEvent(""); err == nil {
		t.Error("expected error for empty path")
	}
}

func TestRepoFromEnv(t *testing.T) {
	t.Setenv("GITHUB_REPOSITORY", "acme/web")
	owner, repo, ok := RepoFromEnv()
	if !ok || owner != "acme" || repo != "web" {
		t.Errorf("RepoFromEnv = %q, %q, %v", owner, repo, ok)
	}

	t.Setenv("GITHUB_REPOSITORY", "broken")
	if _, _, ok := RepoFromEnv(); ok {
		t.Error("malformed GITHUB_REPOSITORY should not parse")
	}
}
