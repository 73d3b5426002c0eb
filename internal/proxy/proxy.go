// Package proxy exposes the runner over the invoker's HTTP contract:
// /init, /run and the onstart/onpause/onfinish notifications. It maps the
// runner's error taxonomy onto status classes (policy violations are
// client errors, everything else a bad gateway) and emits the activation
// sentinel on both log sinks after every init and run completion so the
// invoker can delimit one call's output from the next.
package proxy

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ISE-SMILE/openwhisk-runtime-docker/internal/log"
	"github.com/ISE-SMILE/openwhisk-runtime-docker/internal/runner"
)

// Proxy serves the invoker-facing routes for a single Runner. The two
// sinks receive forwarded action logs and sentinels; they default to the
// process streams, which the invoker captures as container output.
type Proxy struct {
	runner *runner.Runner
	stdout io.Writer
	stderr io.Writer
}

func New(r *runner.Runner) *Proxy {
	return &Proxy{
		runner: r,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
}

// WithOutput redirects sentinel and notification lines, mainly for tests.
// The runner's own forwarding sinks are configured separately.
func (p *Proxy) WithOutput(stdout, stderr io.Writer) *Proxy {
	p.stdout = stdout
	p.stderr = stderr
	return p
}

// Routes assembles the invoker contract.
func (p *Proxy) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(activationID)
	r.Post("/init", p.handleInit)
	r.Post("/run", p.handleRun)
	r.Post("/onstart", p.handleStart)
	r.Post("/onpause", p.handlePause)
	r.Post("/onfinish", p.handleFinish)
	return r
}

// activationID tags every request with a fresh id carried through the
// slog context.
func activationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		ctx := log.ContextAttrs(req.Context(),
			slog.String("activation_id", uuid.NewString()),
		)
		next.ServeHTTP(w, req.WithContext(ctx))
	})
}

// complete emits the sentinel delimiting this activation's log output.
func (p *Proxy) complete() {
	p.logLine(runner.LogSentinel)
}

// logLine mirrors one line to both sinks, the way the invoker expects
// container output.
func (p *Proxy) logLine(msg string) {
	_, _ = fmt.Fprintln(p.stdout, msg)
	_, _ = fmt.Fprintln(p.stderr, msg)
}
