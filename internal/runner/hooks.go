package runner

import "context"

// Hooks are the extension points a language runtime can override to turn
// materialized source into something executable. The Runner invokes them
// in a fixed order during Init: Epilogue first, then Build, both before
// verification. A failing hook aborts the initialization.
//
// Start, Pause and Stop are lifecycle notifications forwarded from the
// invoker, Features is the opaque capability string returned by a
// successful initialization.
type Hooks interface {
	// Epilogue may append to or otherwise finalize the materialized
	// source. The full init payload is passed along as it may carry
	// fields relevant to a specific runtime.
	Epilogue(ctx context.Context, payload map[string]any) error
	// Build compiles the materialized source into the action binary.
	Build(ctx context.Context, payload map[string]any) error

	Start(ctx context.Context)
	Pause(ctx context.Context)
	Stop(ctx context.Context)

	Features() string
}

// NopHooks is the default Hooks implementation: no epilogue, no build
// step. It fits runtimes whose payload is already executable, like the
// docker skeleton.
type NopHooks struct{}

func (NopHooks) Epilogue(context.Context, map[string]any) error { return nil }
func (NopHooks) Build(context.Context, map[string]any) error    { return nil }
func (NopHooks) Start(context.Context)                          {}
func (NopHooks) Pause(context.Context)                          {}
func (NopHooks) Stop(context.Context)                           {}
func (NopHooks) Features() string                               { return "OK" }
