// Package logger provides structured logging functionality for the application.
//
// Application code logs through log/slog. The root *slog.Logger is backed by a
// Facade, which fans every record out to the configured transports: console
// (JSON on stdout), datadog (HTTP log intake via zap) and kafka (a topic via
// kafka-go). Remote transports are optional; one that cannot be configured or
// built is left out and the rest keep working.
package logger
