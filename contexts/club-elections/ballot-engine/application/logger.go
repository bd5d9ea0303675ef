package application

import (
	"log/slog"

	"clubvote/contexts/club-elections/ballot-engine/ports"
)

// ModuleName tags every structured log line emitted by this module.
const ModuleName = "club-elections/ballot-engine"

// ResolveLogger guarantees a non-nil logger for application/worker code paths.
func ResolveLogger(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// RecordOutcome forwards to telemetry when one is wired.
func RecordOutcome(telemetry ports.Telemetry, operation string, outcome string) {
	if telemetry == nil {
		return
	}
	telemetry.RecordOutcome(operation, outcome)
}

func RecordRetry(telemetry ports.Telemetry, operation string) {
	if telemetry == nil {
		return
	}
	telemetry.RecordRetry(operation)
}
