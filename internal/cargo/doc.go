// Package cargo is the command engine: it turns new, build, run and clean
// requests into cargo invocations, runs at most one at a time, and publishes
// decoded, styled output on the event bus.
//
// # State Machine
//
// A [Manager] is idle or running one [CommandKind]. Only idle accepts a new
// command; a running command always ends back in idle, whether it succeeded,
// failed, crashed, failed to launch or was stopped.
//
//	mgr := cargo.NewManager(process.NewExecTransport(), bus,
//	    cargo.WithProjectPath(root),
//	    cargo.WithLogger(logger),
//	)
//	if err := mgr.Build(cargo.Release); errors.Is(err, errors.ErrCommandRunning) {
//	    // another command is still in flight
//	}
//	mgr.Wait()
//
// # Events
//
// Per command, subscribers see an optional start banner, the relayed output
// as [event.ConsoleEvent] values, a summary line, then exactly one
// [event.CommandFinishedEvent]. A successful `cargo new` is followed by an
// [event.ProjectCreatedEvent].
package cargo
