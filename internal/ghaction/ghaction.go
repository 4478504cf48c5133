// Package ghaction generates the GitHub Actions workflow that runs prbot on
// pull requests and posts its results.
package ghaction

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"
)

// DefaultPath is where the workflow is written relative to the repo root.
const DefaultPath = ".github/workflows/prbot.yml"

const modulePath = "github.com/dshills/prbot/cmd/prbot"

var allowedProviders = []string{"gemini", "openai"}

// WorkflowConfig holds the parameters for generating a workflow.
type WorkflowConfig struct {
	// Provider selects which API key secret the run step receives.
	Provider string
	// Version is the prbot release to install. Empty means "latest".
	Version string
	// Review and QA enable the respective jobs.
	Review bool
	QA     bool
}

// DefaultConfig returns a WorkflowConfig with both jobs enabled.
func DefaultConfig() WorkflowConfig {
	return WorkflowConfig{Provider: "gemini", Review: true, QA: true}
}

// Validate checks fields that end up inside shell commands.
func (c *WorkflowConfig) Validate() error {
	if !slices.Contains(allowedProviders, c.Provider) {
		return fmt.Errorf("invalid provider %q (valid: %s)", c.Provider, strings.Join(allowedProviders, ", "))
	}
	if c.Version != "" {
		if _, err := semver.StrictNewVersion(strings.TrimPrefix(c.Version, "v")); err != nil {
			return fmt.Errorf("invalid prbot version %q (expected semver like 1.2.3): %w", c.Version, err)
		}
	}
	if !c.Review && !c.QA {
		return fmt.Errorf("at least one of review or qa must be enabled")
	}
	return nil
}

// SecretName returns the repository secret holding the provider API key.
func SecretName(provider string) string {
	if provider == "openai" {
		return "OPENAI_API_KEY"
	}
	return "GEMINI_API_KEY"
}

// Workflow is the subset of the Actions workflow schema prbot emits.
type Workflow struct {
	Name        string            `yaml:"name"`
	On          Trigger           `yaml:"on"`
	Permissions map[string]string `yaml:"permissions"`
	Jobs        map[string]Job    `yaml:"jobs"`
}

// Trigger lists the events that start the workflow.
type Trigger struct {
	PullRequest PullRequestTrigger `yaml:"pull_request"`
}

// PullRequestTrigger filters pull_request activity types.
type PullRequestTrigger struct {
	Types []string `yaml:"types,flow"`
}

// Job is one workflow job.
type Job struct {
	Name   string `yaml:"name"`
	RunsOn string `yaml:"runs-on"`
	Steps  []Step `yaml:"steps"`
}

// Step is one job step.
type Step struct {
	Name string            `yaml:"name,omitempty"`
	Uses string            `yaml:"uses,omitempty"`
	With map[string]string `yaml:"with,omitempty"`
	Env  map[string]string `yaml:"env,omitempty"`
	Run  string            `yaml:"run,omitempty"`
}

// Build assembles the workflow for cfg.
func Build(cfg WorkflowConfig) (Workflow, error) {
	if err := cfg.Validate(); err != nil {
		return Workflow{}, fmt.Errorf("invalid config: %w", err)
	}

	version := "latest"
	if cfg.Version != "" {
		version = "v" + strings.TrimPrefix(cfg.Version, "v")
	}
	secret := SecretName(cfg.Provider)

	setup := []Step{
		{Uses: "actions/checkout@v4", With: map[string]string{"fetch-depth": "0"}},
		{Uses: "actions/setup-go@v5", With: map[string]string{"go-version": "stable"}},
		{Name: "Install prbot", Run: "go install " + modulePath + "@" + version},
	}
	diff := "git diff origin/${{ github.base_ref }}...HEAD"
	modelEnv := map[string]string{
		secret:           "${{ secrets." + secret + " }}",
		"PRBOT_PROVIDER": cfg.Provider,
	}
	postEnv := map[string]string{"GITHUB_TOKEN": "${{ secrets.GITHUB_TOKEN }}"}

	wf := Workflow{
		Name: "prbot",
		On: Trigger{PullRequest: PullRequestTrigger{
			Types: []string{"opened", "synchronize", "reopened"},
		}},
		Permissions: map[string]string{
			"contents":      "read",
			"pull-requests": "write",
		},
		Jobs: map[string]Job{},
	}

	if cfg.Review {
		steps := slices.Clone(setup)
		steps = append(steps,
			Step{Name: "Generate review", Env: modelEnv, Run: diff + " | prbot review"},
			Step{Name: "Post review", Env: postEnv, Run: "prbot post review"},
		)
		wf.Jobs["review"] = Job{Name: "AI code review", RunsOn: "ubuntu-latest", Steps: steps}
	}
	if cfg.QA {
		steps := slices.Clone(setup)
		steps = append(steps,
			Step{Name: "Generate QA scenarios", Env: modelEnv, Run: diff + " | prbot qa"},
			Step{Name: "Post QA scenarios", Env: postEnv, Run: "prbot post qa"},
		)
		wf.Jobs["qa"] = Job{Name: "AI QA scenarios", RunsOn: "ubuntu-latest", Steps: steps}
	}
	return wf, nil
}

// Generate produces the workflow YAML for cfg.
func Generate(cfg WorkflowConfig) (string, error) {
	wf, err := Build(cfg)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString("# Generated by prbot workflow. Re-run with --force to regenerate.\n")
	enc := yaml.NewEncoder(&b)
	enc.SetIndent(2)
	if err := enc.Encode(wf); err != nil {
		return "", fmt.Errorf("encoding workflow: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("encoding workflow: %w", err)
	}
	return b.String(), nil
}

// WriteWorkflow generates the workflow and writes it to outputPath, creating
// parent directories. It refuses to overwrite an existing file unless force
// is set.
func WriteWorkflow(cfg WorkflowConfig, outputPath string, force bool) error {
	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("workflow file already exists: %s (use --force to overwrite)", outputPath)
		}
	}

	content, err := Generate(cfg)
	if err != nil {
		return err
	}

	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}
	if err := os.WriteFile(outputPath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write workflow: %w", err)
	}
	return nil
}
