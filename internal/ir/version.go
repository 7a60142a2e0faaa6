package ir

// Version constants for the event log format and the engine.
const (
	// LogVersion is the event log schema version.
	LogVersion = "1"

	// EngineVersion is the sortstep engine version.
	EngineVersion = "0.1.0"
)
