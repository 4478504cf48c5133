package redact

import (
	"path/filepath"
	"regexp"
	"strings"
)

const placeholder = "[REDACTED]"

// secretPatterns are regex heuristics for common secret types.
var secretPatterns = []*regexp.Regexp{
	// Generic API keys (long hex/base64 strings after common key patterns)
	regexp.MustCompile(`(?i)(api[_-]?key|apikey|api[_-]?secret)\s*[:=]\s*["']?([A-Za-z0-9/+=_-]{20,})["']?`),
	// AWS access key IDs
	regexp.MustCompile(`AKIA[0-9A-Z]{16}`),
	// AWS secret access keys
	regexp.MustCompile(`(?i)(aws[_-]?secret[_-]?access[_-]?key)\s*[:=]\s*["']?([A-Za-z0-9/+=]{40})["']?`),
	// Generic secrets/tokens/passwords in assignments
	regexp.MustCompile(`(?i)(secret|token|password|passwd|credential)\s*[:=]\s*["']([^"']{8,})["']`),
	// Bearer tokens
	regexp.MustCompile(`(?i)Bearer\s+[A-Za-z0-9._-]{20,}`),
	// JWTs
	regexp.MustCompile(`eyJ[A-Za-z0-9_-]{10,}\.eyJ[A-Za-z0-9_-]{10,}\.[A-Za-z0-9_-]{10,}`),
	// Private key blocks
	regexp.MustCompile(`-----BEGIN\s+(RSA\s+|EC\s+|OPENSSH\s+)?PRIVATE KEY-----`),
	// GitHub tokens
	regexp.MustCompile(`gh[pousr]_[A-Za-z0-9_]{36,}`),
	// Slack tokens
	regexp.MustCompile(`xox[bporas]-[A-Za-z0-9-]{10,}`),
	// Google API keys (Gemini)
	regexp.MustCompile(`AIza[0-9A-Za-z_-]{35}`),
	// OpenAI API keys, including project keys
	regexp.MustCompile(`sk-(proj-)?[A-Za-z0-9_-]{20,}`),
	// Connection strings with inline credentials
	regexp.MustCompile(`[a-z][a-z0-9+.-]*://[^\s:/@]+:[^\s@/]+@[^\s]+`),
	// Generic long hex strings that look like secrets (32+ chars in an assignment)
	regexp.MustCompile(`(?i)(key|secret|token)\s*[:=]\s*["']?[0-9a-f]{32,}["']?`),
}

// Secrets replaces detected secrets in text with [REDACTED].
func Secrets(text string) string {
	out, _ := secrets(text)
	return out
}

func secrets(text string) (string, int) {
	n := 0
	for _, pat := range secretPatterns {
		text = pat.ReplaceAllStringFunc(text, func(string) string {
			n++
			return placeholder
		})
	}
	return text, n
}

// ShouldRedactPath checks if a file path matches any of the redaction path patterns.
func ShouldRedactPath(path string, patterns []string) bool {
	for _, pattern := range patterns {
		matched, err := filepath.Match(pattern, path)
		if err == nil && matched {
			return true
		}
		// "**/.env" style patterns also match on the base name.
		cleanPattern := strings.TrimPrefix(pattern, "**/")
		if cleanPattern != pattern {
			matched, err = filepath.Match(cleanPattern, filepath.Base(path))
			if err == nil && matched {
				return true
			}
		}
	}
	return false
}

// Diff redacts a unified diff before it is sent to a provider. File sections
// whose path matches pathPatterns keep only their "diff --git" header; all
// other sections are scanned for secrets. It returns the redacted diff and the
// number of replacements.
func Diff(diff string, pathPatterns []string) (string, int) {
	var b strings.Builder
	total := 0
	for _, section := range splitSections(diff) {
		if path := sectionPath(section); path != "" && ShouldRedactPath(path, pathPatterns) {
			header, _, _ := strings.Cut(section, "\n")
			b.WriteString(header)
			b.WriteString("\n" + placeholder + " (file content redacted by path policy)\n")
			total++
			continue
		}
		out, n := secrets(section)
		b.WriteString(out)
		total += n
	}
	return b.String(), total
}

// splitSections cuts diff at each "diff --git" line. Text before the first
// header is its own section. Concatenating the sections yields diff.
func splitSections(diff string) []string {
	var sections []string
	start := 0
	for i := 0; i < len(diff); {
		nl := strings.IndexByte(diff[i:], '\n')
		end := len(diff)
		if nl >= 0 {
			end = i + nl + 1
		}
		if i > start && strings.HasPrefix(diff[i:], "diff --git ") {
			sections = append(sections, diff[start:i])
			start = i
		}
		i = end
	}
	if start < len(diff) {
		sections = append(sections, diff[start:])
	}
	return sections
}

// sectionPath returns the new-side path of a section, falling back to the
// old side for deletions.
func sectionPath(section string) string {
	var old string
	for _, line := range strings.Split(section, "\n") {
		switch {
		case strings.HasPrefix(line, "+++ b/"):
			return strings.TrimRight(strings.TrimPrefix(line, "+++ b/"), "\r")
		case strings.HasPrefix(line, "--- a/"):
			old = strings.TrimRight(strings.TrimPrefix(line, "--- a/"), "\r")
		case strings.HasPrefix(line, "@@"):
			return old
		}
	}
	if old == "" {
		// Binary or mode-only sections carry the path in the header.
		if header, _, _ := strings.Cut(section, "\n"); strings.HasPrefix(header, "diff --git a/") {
			if _, b, ok := strings.Cut(header, " b/"); ok {
				return strings.TrimRight(b, "\r")
			}
		}
	}
	return old
}
