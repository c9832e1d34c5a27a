// Package process defines the transport used by the command engine to run
// toolchain processes, and an os/exec implementation of it.
//
// The [Transport] interface decouples command semantics from process
// mechanics so the engine can be driven by a fake in tests. A [Session]
// reports raw output chunks for stdout and stderr and a single terminal
// exit event over one channel.
//
// # Exec Transport
//
// [ExecTransport] starts the child in its own process group (on unix) so
// that stopping `cargo run` also stops the program it launched:
//
//	t := process.NewExecTransport(process.WithGracePeriod(3 * time.Second))
//	sess, err := t.Spawn(ctx, process.Spec{Executable: "cargo", Args: []string{"build"}, Dir: root})
//	if err != nil {
//	    return err // errors.Is(err, errors.ErrLaunchFailed)
//	}
//	for ev := range sess.Events() {
//	    ...
//	}
//
// # Graceful Shutdown
//
// Stop sends SIGTERM to the process group, waits up to the grace period,
// then sends SIGKILL. On Windows the process is killed immediately.
//
// # Thread Safety
//
// Sessions are safe for concurrent use; Stop may be called from any
// goroutine.
package process
