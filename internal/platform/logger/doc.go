// Package logger provides structured logging functionality for the application.
//
// It utilizes Go's standard library log/slog package to implement structured
// JSON logging with configurable log levels, logging to stderr or a file so
// command output on stdout stays clean. Loggers travel through contexts via
// WithLogger and FromContext, letting stores and services log with whatever
// operation-scoped attributes their caller attached.
package logger
