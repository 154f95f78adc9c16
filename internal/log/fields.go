package log

// Canonical field name constants for structured logging.
const (
	FieldService   = "service"
	FieldComponent = "component"
	FieldEvent     = "event"

	// Engine state
	FieldStatus    = "status"
	FieldOldStatus = "old_status"
	FieldKind      = "kind"
	FieldSeverity  = "severity"
	FieldTier      = "tier"
	FieldDuration  = "duration"
	FieldAnalyzer  = "analyzer"
	FieldCommand   = "command"

	// Files
	FieldPath = "path"
)
