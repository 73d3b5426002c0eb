package runner

// Package runner implements the action lifecycle: receiving code from an
// invoker, preparing it for execution and running it on demand.
//
// Overview
// A Runner owns a single loaded action. Init materializes the payload
// (inline source or a base64 zip archive), gives the pluggable Hooks a
// chance to finalize and build it, and verifies that an executable binary
// exists. Run spawns that binary once per request and recovers exactly one
// JSON object result from its output.
//
// Data flow:
//
//   Proxy                 Runner                    Executor{binary}
//     |                     |                          |
//   /init ----------------> | Materialize              |
//     |                     | Hooks.Epilogue/Build     |
//     |<----- features ---- | Verify                   |
//   /run -----------------> | Env + Run -------------> | os/exec, stdin=args
//     |                     |                          | capture stdout+stderr
//     |<----- result ------ |<------- last line ------ | (process exits)
//
// The action may log freely on stdout; only the last line of its output is
// parsed as the result, everything before it is forwarded verbatim to the
// runner's log sinks. Stderr is always forwarded.
//
// Invariants:
//   - Init succeeds at most once unless reinitialization is allowed.
//   - A successful Init resets the started flag.
//   - Run requires Verify to be true and blocks for the child's full
//     lifetime; one child process per call, no pooling.
//   - All failures surface as error values at the operation boundary,
//     log content is forwarded even on failure paths.
//
// The Runner itself performs no locking. The invoker initializes an action
// exactly once and then serves requests, so callers that do interleave
// Init with other calls must serialize at a higher layer.
