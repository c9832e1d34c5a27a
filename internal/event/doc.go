// Package event provides a pub-sub event bus that decouples the cargo
// command engine from whatever displays its output.
//
// The engine publishes [ConsoleEvent] values for every decoded chunk of
// toolchain output and for its own banners and summaries, a
// [CommandStartedEvent] / [CommandFinishedEvent] pair around every accepted
// command, and a [ProjectCreatedEvent] when `cargo new` succeeds. Sinks (the
// plain console writer, the TUI, the watcher) subscribe to the types they
// care about.
//
// # Thread Safety
//
// [Bus] is safe for concurrent use. Handlers run synchronously on the
// publishing goroutine; a panicking handler is recovered and does not
// prevent delivery to the remaining handlers.
//
// # Basic Usage
//
//	bus := event.NewBus()
//
//	bus.Subscribe(event.TypeConsole, func(e event.Event) {
//	    msg := e.(event.ConsoleEvent)
//	    fmt.Print(msg.Text)
//	})
//
//	// Subscribe to all events (useful for logging)
//	bus.SubscribeAll(func(e event.Event) {
//	    log.Printf("event: %s at %v", e.EventType(), e.Timestamp())
//	})
//
// # Event Type Naming Convention
//
// Event types follow the pattern "category.action":
//   - console.output
//   - command.started, command.finished
//   - project.created
package event
