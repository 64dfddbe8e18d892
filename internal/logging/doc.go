// Package logging builds the slog loggers used across amberpipe and holds
// the shared attribute helpers and field-name constants so log output stays
// uniform between the daemon, the workflow manager, and the CLI.
package logging
