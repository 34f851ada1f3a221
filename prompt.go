package snipwatch

import (
	"strings"
	"time"
)

// SummaryTimeout bounds a single summarizer call.
const SummaryTimeout = 30 * time.Second

// SummaryPrompt is the system instruction sent to every summarizer backend.
const SummaryPrompt = "You are a code review assistant. The user will send you a unified diff for a SMALL CODE SNIPPET, " +
	"not the whole file. The diff only includes changed lines and @@ hunk headers. " +
	"Summarize the change in 1-3 short bullet points, focusing on behavior changes, security impact, " +
	"and configuration changes. Reply in plain text, no markdown code fences."

// SummaryInput renders the user message carrying the diff body.
func SummaryInput(diff string) string {
	return "Here is the diff:\n\n" + diff
}

// Blank reports whether a diff body has nothing worth summarizing.
func Blank(diff string) bool {
	return strings.TrimSpace(diff) == ""
}
