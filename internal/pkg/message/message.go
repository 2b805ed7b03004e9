// Package message inspects generated commit messages.
//
// Inspection never rewrites a message and never blocks a commit: the text the
// user accepts is committed exactly. Findings are reported as warnings so the
// user can decide before confirming.
package message

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxSubjectLength is the recommended maximum length for commit subject lines.
const MaxSubjectLength = 72

var (
	markdownRegex  = regexp.MustCompile("^(#{1,6}\\s|[-*+]\\s|>\\s)|\\*\\*|__|`|\\[[^\\]]+\\]\\([^)]+\\)")
	vagueRegex     = regexp.MustCompile(`(?i)^(update|change|modify|edit)[sd]?\s+(the\s+)?(file|files|readme(\.md)?|code|stuff|things)\.?$|^(update|changes?|fix(es)?|misc|wip|tweaks?)\.?$`)
	pastTenseRegex = regexp.MustCompile(`(?i)^(added|fixed|updated|removed|changed|improved|renamed|refactored|deleted|implemented)\b`)
	selfRefRegex   = regexp.MustCompile(`(?i)\b(this diff|the following|this commit|the diff)\b`)
	footerRegex    = regexp.MustCompile(`(?i)^(BREAKING[ -]CHANGE|Refs|Closes|Fixes|Resolves|See|Co-authored-by|Signed-off-by|Reviewed-by|Acked-by):`)
)

// ValidationResult contains the warnings found by Inspect.
type ValidationResult struct {
	Warnings []string
}

// CommitMessage is a commit message split into its sections.
type CommitMessage struct {
	Subject string
	Body    string
	Footer  string

	// separated is false when the line after the subject is not blank.
	separated bool
}

// NewCommitMessage creates a new CommitMessage from raw text.
func NewCommitMessage(rawText string) *CommitMessage {
	cm := &CommitMessage{separated: true}
	cm.Parse(rawText)
	return cm
}

// Parse splits raw text into subject, body and footer.
func (cm *CommitMessage) Parse(rawText string) {
	rawText = strings.TrimSpace(strings.ReplaceAll(rawText, "\r\n", "\n"))
	if rawText == "" {
		return
	}

	lines := strings.Split(rawText, "\n")
	cm.Subject = strings.TrimSpace(lines[0])

	if len(lines) > 1 {
		cm.separated = strings.TrimSpace(lines[1]) == ""
		cm.parseBodyAndFooter(lines[1:])
	}
}

func (cm *CommitMessage) parseBodyAndFooter(lines []string) {
	var bodyLines, footerLines []string
	inFooter := false

	for _, line := range lines {
		if footerRegex.MatchString(strings.TrimSpace(line)) {
			inFooter = true
		}
		if inFooter {
			footerLines = append(footerLines, line)
		} else {
			bodyLines = append(bodyLines, line)
		}
	}

	cm.Body = strings.TrimSpace(strings.Join(bodyLines, "\n"))
	cm.Footer = strings.TrimSpace(strings.Join(footerLines, "\n"))
}

// Inspect checks the message against the same rules the prompts ask the
// model to follow and reports every deviation as a warning.
func (cm *CommitMessage) Inspect() *ValidationResult {
	result := &ValidationResult{Warnings: []string{}}

	if cm.Subject == "" {
		result.Warnings = append(result.Warnings, "missing commit subject")
		return result
	}

	if n := utf8.RuneCountInString(cm.Subject); n > MaxSubjectLength {
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"subject line exceeds %d characters (%d chars)", MaxSubjectLength, n))
	}
	if isQuoted(cm.Subject) {
		result.Warnings = append(result.Warnings, "subject is wrapped in quotes")
	}
	if markdownRegex.MatchString(cm.Subject) {
		result.Warnings = append(result.Warnings, "subject contains markdown formatting")
	}
	if vagueRegex.MatchString(cm.Subject) {
		result.Warnings = append(result.Warnings, "subject is vague; describe what the change does")
	}
	if pastTenseRegex.MatchString(cm.Subject) {
		result.Warnings = append(result.Warnings, "subject should use present tense (\"add\", not \"added\")")
	}
	if selfRefRegex.MatchString(cm.Subject) {
		result.Warnings = append(result.Warnings, "subject refers to the diff instead of the change")
	}
	if !cm.separated {
		result.Warnings = append(result.Warnings, "subject and body should be separated by a blank line")
	}

	return result
}

func isQuoted(s string) bool {
	if len(s) < 2 {
		return false
	}
	first, last := s[0], s[len(s)-1]
	return first == last && (first == '"' || first == '\'')
}

// Inspect parses raw and inspects it.
func Inspect(raw string) *ValidationResult {
	return NewCommitMessage(raw).Inspect()
}
