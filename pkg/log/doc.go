// Package log implements structured event logging for the registry.
//
// The registry and dispatcher emit an Event for every lifecycle and
// dispatch operation (create, destroy, release, publish, read, write).
// Applications choose where events go by supplying a Logger:
//
//   - NoopLogger: discard everything (the default)
//   - SlogAdapter: forward to a log/slog logger for console output
//   - FileLogger: append CBOR-encoded events to a file
//   - MultiLogger: fan out to several of the above
//
// Events written by FileLogger can be read back with Reader, optionally
// filtered, which is what the statefs-log tool builds on.
//
// Logging is an ambient concern: a Logger must never block registry
// operations for long, and Log errors are swallowed rather than
// propagated into registry call paths.
package log
