package review

// Severity represents the urgency of a review comment.
type Severity string

const (
	SeverityCritical   Severity = "critical"
	SeveritySuggestion Severity = "suggestion"
	SeverityNitpick    Severity = "nitpick"
)

// Severities lists every severity from most to least urgent.
var Severities = []Severity{SeverityCritical, SeveritySuggestion, SeverityNitpick}

// SeverityRank returns a numeric rank for sorting (higher = more urgent).
func SeverityRank(s Severity) int {
	switch s {
	case SeverityCritical:
		return 3
	case SeveritySuggestion:
		return 2
	case SeverityNitpick:
		return 1
	default:
		return 0
	}
}

// SeverityIcon maps a severity to the marker used in both the summary
// document and inline comments. Unknown severities get the suggestion icon.
func SeverityIcon(s Severity) string {
	switch s {
	case SeverityCritical:
		return "🚨"
	case SeverityNitpick:
		return "✏️"
	default:
		return "💡"
	}
}

// Comment is a single line-anchored review comment.
type Comment struct {
	Path     string   `json:"path"`
	Line     int      `json:"line"`
	Severity Severity `json:"severity"`
	Body     string   `json:"body"`
}

// Result is the normalized review returned by the model.
// Comments is never nil once it has passed through Normalize.
type Result struct {
	Summary  string    `json:"summary"`
	Comments []Comment `json:"comments"`
}

// Usage holds the token counters reported by the provider.
type Usage struct {
	InputTokens  int `json:"inputTokens"`
	OutputTokens int `json:"outputTokens"`
}

// Known reports whether the provider returned any usage data.
func (u Usage) Known() bool {
	return u.InputTokens > 0 || u.OutputTokens > 0
}

// SeverityCounts holds counts by severity level.
type SeverityCounts struct {
	Critical   int `json:"critical"`
	Suggestion int `json:"suggestion"`
	Nitpick    int `json:"nitpick"`
}

// CountSeverities tallies comments by severity. Unknown severities are ignored.
func CountSeverities(comments []Comment) SeverityCounts {
	var c SeverityCounts
	for _, cm := range comments {
		switch cm.Severity {
		case SeverityCritical:
			c.Critical++
		case SeveritySuggestion:
			c.Suggestion++
		case SeverityNitpick:
			c.Nitpick++
		}
	}
	return c
}

// HasCritical reports whether any comment is critical.
func HasCritical(comments []Comment) bool {
	for _, c := range comments {
		if c.Severity == SeverityCritical {
			return true
		}
	}
	return false
}

// FileGroup is the set of comments for one file path.
type FileGroup struct {
	Path     string
	Comments []Comment
}

// GroupByFile groups comments by path, keeping files in first-seen order and
// comments in their original order. Empty paths are grouped under "unknown".
func GroupByFile(comments []Comment) []FileGroup {
	var groups []FileGroup
	index := make(map[string]int)
	for _, c := range comments {
		path := c.Path
		if path == "" {
			path = "unknown"
		}
		i, ok := index[path]
		if !ok {
			i = len(groups)
			index[path] = i
			groups = append(groups, FileGroup{Path: path})
		}
		groups[i].Comments = append(groups[i].Comments, c)
	}
	return groups
}
