package domain

import "context"

// SessionPreferences are the classification defaults applied to new reports.
type SessionPreferences struct {
	Severity   Severity
	Language   Language
	Complexity Complexity
	Depth      int
}

// AnalysisRequest captures one report submitted by the user.
type AnalysisRequest struct {
	Context    context.Context
	Kind       InputKind
	Text       string // text body, or file contents for KindFile
	FileName   string // KindFile only
	Image      *Attachment
	Severity   Severity
	Language   Language
	Complexity Complexity
	Depth      int
}

// AnalysisOutcome is what the pipeline hands back to the presentation layer.
type AnalysisOutcome struct {
	Record BugRecord
	// Failed is set when the service call failed and Record.Result holds the degraded text.
	Failed bool
	// Before and After hold the first two code blocks when HasDiff is true.
	Before  string
	After   string
	HasDiff bool
}
