// Package logging provides the structured logging system for fhirmcp.
//
// It is a thin wrapper around Go's standard slog package that tags every
// entry with a subsystem identifier and keeps all diagnostic output off
// stdout, which is reserved for the MCP protocol stream when serving over
// stdio.
//
// Usage:
//
//	logging.Init(logging.LevelInfo, os.Stderr)
//	logging.Info("fhir-client", "request to %s", url)
//	logging.Error("tools", err, "apply failed for PlanDefinition/%s", id)
package logging
