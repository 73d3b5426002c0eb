package runner

import (
	"context"
	"fmt"
	"io"
	"os"
)

// LogSentinel delimits one invocation's log output from the next. The
// surrounding proxy emits it on both log sinks after every init and run
// completion, successful or not.
const LogSentinel = "XXX_THE_END_OF_A_WHISK_ACTIVATION_XXX"

// Runner is the lifecycle controller for a single loaded action. It gates
// initialize-once semantics, sequences materialization, hooks and
// verification, and dispatches requests to the Executor.
//
// A Runner does no internal locking, see the package documentation.
type Runner struct {
	cfg   Config
	hooks Hooks

	stdout io.Writer
	stderr io.Writer

	allowReinit bool
	initialized bool
	started     bool
}

// New creates a Runner with reinitialization disallowed and log output
// forwarded to the process streams. A nil hooks falls back to NopHooks.
func New(cfg Config, hooks Hooks) *Runner {
	if hooks == nil {
		hooks = NopHooks{}
	}
	return &Runner{
		cfg:    cfg.withDefaults(),
		hooks:  hooks,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
}

// WithOutput redirects the forwarded action log output, mainly for tests.
func (r *Runner) WithOutput(stdout, stderr io.Writer) *Runner {
	r.stdout = stdout
	r.stderr = stderr
	return r
}

// WithReinit sets the reinitialization policy. The invoker initializes an
// action exactly once, allowing more is generally useful only for local
// development.
func (r *Runner) WithReinit(allow bool) *Runner {
	r.allowReinit = allow
	return r
}

// Init materializes the payload, runs the epilogue and build hooks and
// verifies the binary. On success the runner becomes initialized and the
// started flag resets. On any failure state and disk artifacts relevant to
// previous initializations stay as they were.
func (r *Runner) Init(ctx context.Context, payload map[string]any) (string, error) {
	if r.initialized && !r.allowReinit {
		return "", ErrReinitForbidden
	}

	prepared, err := Materialize(r.cfg, payload)
	if err != nil {
		return "", fmt.Errorf("materializing action code: %w", err)
	}
	if prepared {
		if err := r.hooks.Epilogue(ctx, payload); err != nil {
			return "", fmt.Errorf("epilogue hook: %w", err)
		}
		if err := r.hooks.Build(ctx, payload); err != nil {
			return "", fmt.Errorf("build hook: %w", err)
		}
	}
	if !Verify(r.cfg.Binary) {
		return "", ErrNoBinary
	}

	r.initialized = true
	r.started = false
	return r.hooks.Features(), nil
}

// Verify reports whether the action binary currently exists and is
// executable.
func (r *Runner) Verify() bool {
	return Verify(r.cfg.Binary)
}

// Env derives the child-process environment for a run request from its
// metadata, on top of the inherited process environment.
func (r *Runner) Env(message map[string]any) []string {
	return Env(os.Environ(), message)
}

// Run invokes the action once. It fails with ErrNoBinary when no
// executable artifact is in place, without spawning anything.
func (r *Runner) Run(ctx context.Context, args map[string]any, env []string) (map[string]any, error) {
	if !r.Verify() {
		return nil, ErrNoBinary
	}
	ex := &Executor{
		Binary: r.cfg.Binary,
		Stdout: r.stdout,
		Stderr: r.stderr,
	}
	return ex.Run(ctx, args, env)
}

// NotifyStart forwards the invoker's start notification, at most once per
// initialization.
func (r *Runner) NotifyStart(ctx context.Context) error {
	if r.started {
		return ErrStartAlreadyTriggered
	}
	r.started = true
	r.hooks.Start(ctx)
	return nil
}

// NotifyPause forwards the invoker's pause notification.
func (r *Runner) NotifyPause(ctx context.Context) {
	r.hooks.Pause(ctx)
}

// NotifyStop forwards the invoker's stop notification.
func (r *Runner) NotifyStop(ctx context.Context) {
	r.hooks.Stop(ctx)
}
