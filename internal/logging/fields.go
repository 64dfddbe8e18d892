package logging

// Standardized attribute keys. Console output promotes the component field
// into the message prefix; everything else renders as key=value pairs.
const (
	FieldComponent = "component"
	FieldEventType = "event_type"
	FieldErrorHint = "error_hint"
	FieldAsset     = "asset"
	FieldStep      = "step"
	FieldRunID     = "run_id"
)
