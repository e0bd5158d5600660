package app

// Event names emitted on the Wails event bus.
const (
	EventCaptureSaved      = "capture-saved"
	EventCaptureFailed     = "capture-failed"
	EventAccessibilityPerm = "accessibility-permission"
)
