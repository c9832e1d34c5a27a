// Package logging provides structured logging for cargodeck.
//
// This package wraps Go's log/slog to provide JSON-formatted logs with
// persistent context attributes. Every toolchain command the engine accepts,
// rejects or finishes is logged with its session ID and command name so a
// misbehaving build can be traced after the fact.
//
// # Basic Usage
//
//	logger, err := logging.NewLogger("/path/to/logs", "INFO")
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	logger.Info("command accepted", "command", "build")
//
// # Context Propagation
//
// Child loggers carry attributes into every entry they write:
//
//	cmdLogger := logger.WithSession(id).WithCommand("build")
//	cmdLogger.Info("process exited", "exit_code", 0, "duration_ms", 1520)
//
// Output:
//
//	{"time":"...","level":"INFO","msg":"process exited","session_id":"...","command":"build","exit_code":0,"duration_ms":1520}
//
// # Thread Safety
//
// [Logger] is safe for concurrent use. Child loggers share the underlying
// writer.
//
// # Testing
//
// Use [NopLogger] to discard all log output.
package logging
