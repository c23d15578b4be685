package domain

// Severity is the traffic-light color attached to a suggestion.
type Severity string

const (
	SeverityRed    Severity = "red"
	SeverityYellow Severity = "yellow"
	SeverityGreen  Severity = "green"
)

// IsValid reports whether the severity is part of the closed set.
func (s Severity) IsValid() bool {
	switch s {
	case SeverityRed, SeverityYellow, SeverityGreen:
		return true
	}
	return false
}

// SuggestionStatus is the lifecycle flag of a suggestion. Suggestions are
// never updated in place or deleted; archiving flips the status.
type SuggestionStatus string

const (
	StatusActive   SuggestionStatus = "active"
	StatusArchived SuggestionStatus = "archived"
)

// Suggestion sources. SourceRules marks rows produced by the built-in rule
// skeleton, SourceManual operator-entered rows, SourceN8N rows submitted by
// the trusted external rule-runner.
const (
	SourceRules  = "rule_skeleton_v2"
	SourceManual = "manual"
	SourceN8N    = "n8n"
)

// EngineNotesKey is the evidence-map key holding free-text engine notes,
// extracted into its own response field for display.
const EngineNotesKey = "engine_notes"
