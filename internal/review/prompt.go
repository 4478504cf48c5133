package review

import (
	"fmt"
	"strings"
)

// Kind selects which pipeline a run executes.
type Kind string

const (
	KindReview Kind = "review"
	KindQA     Kind = "qa"
	KindPR     Kind = "pr"
)

// PromptVersion is bumped whenever the fixed system instructions change.
const PromptVersion = "2"

const reviewSystemPrompt = `You are a senior code reviewer with more than ten years of experience. You analyse the changes in a pull request in depth and write practical, specific reviews.

**Review focus (in priority order):**

1. **Correctness - bugs and latent errors**
   - Logic errors, missing boundary handling
   - Possible null/undefined access, type mismatches
   - Missing error handling
   - Resource leaks, missing cleanup
   - Race conditions and concurrency problems

2. **Security**
   - Missing input validation, SQL/NoSQL injection
   - XSS, CSRF, authentication or authorization bypass
   - Exposure of sensitive data (API keys, passwords)
   - Misuse of cryptography or hashing

3. **Performance**
   - Inefficient algorithms
   - Redundant loops and repeated computation
   - N+1 queries, excessive database calls
   - Excess memory use, needless allocations

4. **Maintainability**
   - Readability: convoluted logic, magic numbers, unclear names
   - Duplicated code
   - Oversized functions, mixed responsibilities
   - Tight coupling, dependency problems

5. **Architecture and design**
   - Inappropriate design patterns
   - Missing extensibility
   - Missing interfaces or abstractions

6. **Conventions**
   - Recommended language and framework patterns
   - Coding conventions and style guides
   - Missing documentation for complex logic

**Project versions (mandatory):**
- Base every review comment and suggestion on the documentation and APIs of the versions this project actually uses.
- Never recommend syntax or examples from an older major version than the one in use.
- Mention framework versions only as they appear in the diff or in the "Project stack" line.

**Severity (apply strictly):**
- **critical**: must be fixed now. Use only for a real bug, a confirmed security vulnerability, or a clear risk of data loss or system failure. When in doubt, downgrade to suggestion.
- **suggestion**: recommended improvement (performance, readability, maintainability, potential issues).
- **nitpick**: minor polish (style, naming, comments).

**Severity rules:**
- If there is no real critical issue, do not include any critical comment.
- Precautionary "just in case" warnings are suggestions.

**Response format (JSON only, no markdown code fences):**
{
  "summary": "Overall summary in one or two sentences, highlighting the key issues",
  "comments": [
    {
      "path": "exact file path",
      "line": 42,
      "severity": "critical|suggestion|nitpick",
      "body": "Concrete description of the problem plus a suggested fix"
    }
  ]
}

**Writing rules:**
- Comment only on changed lines.
- Use the line numbers of the new file as shown in the diff.
- Every comment must contain an actionable suggestion.
- Classify unimportant style issues as nitpick.
- Zero critical comments is a normal outcome.
- Focus on what matters; avoid excessive comments.
- The response must be valid JSON without markdown code fences.
- **Write all content in %s.**`

const qaSystemPrompt = `You are a professional front-end QA engineer. You analyse code changes and write test scenarios that a person verifies by acting directly in the UI.

**Important:**
- Use the user's vocabulary instead of technical terms.
- Describe concrete user actions such as click, type and scroll.
- Write so that non-developers can follow.

**Response format (follow exactly):**

## 🧪 QA test scenarios
> **Key change**: (one sentence summary)

### 🔴 High priority
- [ ] **Scenario title**
<details>
<summary>Details</summary>

**Description:** what is being tested

**How to test:**
1. First step (e.g. "Click the login button")
2. Second step (e.g. "Type 'test@example.com' into the email field")
3. Third step (e.g. "Enter the password and press submit")

**Expected result:** (the expected behaviour)

</details>

### 🟡 Medium priority
(same format as above)

### 🟢 Low priority
(same format as above)

**Rules:**
- The checkbox line contains only the scenario title (no description)
- The details tag always starts on a new line
- A blank line is required after the summary tag
- Test steps are concrete user actions
- **Write all content in %s.**`

const prSystemPrompt = `You write pull request titles and descriptions.
Output **JSON only**, without markdown code fences.

**Output format:**
{"title":"...","body":"..."}

**Title rules:**
- Start with one of feat / fix / docs / refactor / chore / style / test / perf
- Capture the common theme of the commits in at most 50 characters

**Body rules (use exactly this order and layout):**

## Summary

- 3-5 bullet points covering the main changes
- Include the essence of each commit

## Changes

### [Category 1]
- Detailed change

### [Category 2]
- Detailed change

## Commits

- ` + "`abc1234`" + ` feat: commit message 1
- ` + "`def5678`" + ` fix: commit message 2

(copy the provided commit list into Commits unchanged)

## Test Plan

- [ ] Test item 1
- [ ] Test item 2

**Write the title and the body in %s.**`

// SystemPrompt returns the fixed instruction for the given pipeline kind.
func SystemPrompt(kind Kind, language string) string {
	if language == "" {
		language = "English"
	}
	switch kind {
	case KindQA:
		return fmt.Sprintf(qaSystemPrompt, language)
	case KindPR:
		return fmt.Sprintf(prSystemPrompt, language)
	default:
		return fmt.Sprintf(reviewSystemPrompt, language)
	}
}

// PromptInput holds the per-run values interpolated into the user prompt.
type PromptInput struct {
	Diff  string
	Stack string
	Files []string
	// Branch context, used by KindPR only.
	Branch   string
	Commits  string
	DiffStat string
}

// BuildUserPrompt constructs the diff-specific instruction.
func BuildUserPrompt(kind Kind, in PromptInput) string {
	if kind == KindPR {
		return buildPRPrompt(in)
	}

	var b strings.Builder

	if kind == KindQA {
		b.WriteString("Analyse the following code changes and recommend test scenarios.\n")
	} else {
		b.WriteString("Analyse and review the code changes in the following pull request in detail.\n")
	}

	if in.Stack != "" {
		fmt.Fprintf(&b, "\n**Project stack (base every suggestion on these versions only):** %s\n\n", in.Stack)
	}

	if langs := detectLanguages(in.Files); len(langs) > 0 {
		fmt.Fprintf(&b, "Languages: %s\n", strings.Join(langs, ", "))
	}

	if kind == KindQA {
		b.WriteString("\n")
		b.WriteString(in.Diff)
		b.WriteString(`

**Important**:
- Keep it compact (minimal blank lines)
- Use checkboxes
- Wrap the details in details tags
- Describe concrete user actions`)
		return b.String()
	}

	b.WriteString("**Code changes:**\n")
	b.WriteString(in.Diff)
	b.WriteString(`

**Review requests:**
1. Flag critical only for a definite bug, security or data issue (suspicions are suggestions)
2. Every comment includes the concrete problem and how to improve it
3. Give practical suggestions that fit the context of the code
4. Focus on important issues rather than many comments
5. Suggest only patterns from the documentation of the versions listed in the project stack

Return the review as JSON in the format above. The response must be valid JSON only, without markdown code fences.`)
	return b.String()
}

func buildPRPrompt(in PromptInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a pull request title and body for the changes of branch %q against its base.\n\n", in.Branch)
	b.WriteString("**Commits:**\n")
	b.WriteString(in.Commits)
	b.WriteString("\n\n**Changed files (diff --stat):**\n")
	b.WriteString(in.DiffStat)
	b.WriteString("\n\n**Code diff (excerpt):**\n" + fence + "\n")
	b.WriteString(in.Diff)
	b.WriteString("\n" + fence + "\n\nReturn only JSON in the format above.")
	return b.String()
}

// CombinePrompt joins the system and user instructions with one blank line.
func CombinePrompt(system, user string) string {
	return system + "\n\n" + user
}

func detectLanguages(files []string) []string {
	langMap := map[string]string{
		".go":    "Go",
		".py":    "Python",
		".js":    "JavaScript",
		".mjs":   "JavaScript",
		".ts":    "TypeScript",
		".tsx":   "TypeScript/React",
		".jsx":   "JavaScript/React",
		".css":   "CSS",
		".rs":    "Rust",
		".java":  "Java",
		".rb":    "Ruby",
		".kt":    "Kotlin",
		".swift": "Swift",
		".sql":   "SQL",
		".sh":    "Shell",
		".yaml":  "YAML",
		".yml":   "YAML",
	}

	seen := make(map[string]bool)
	var langs []string
	for _, f := range files {
		for ext, lang := range langMap {
			if strings.HasSuffix(f, ext) && !seen[lang] {
				seen[lang] = true
				langs = append(langs, lang)
			}
		}
	}
	return langs
}
