package proxy

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/ISE-SMILE/openwhisk-runtime-docker/internal/runner"
)

func (p *Proxy) handleInit(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	defer p.complete()

	message, ok := decodeMessage(req)
	if !ok {
		writeError(w, http.StatusNotFound, "The action did not receive a dictionary as an argument.")
		return
	}
	value, ok := objectField(message, "value")
	if !ok {
		writeError(w, http.StatusNotFound, "The action did not receive a dictionary as an argument.")
		return
	}

	features, err := p.runner.Init(ctx, value)
	switch {
	case errors.Is(err, runner.ErrReinitForbidden):
		slog.WarnContext(ctx, "initialization rejected", "error", err)
		writeError(w, http.StatusForbidden, err.Error()+".")
	case err != nil:
		slog.ErrorContext(ctx, "initialization failed", "error", err)
		writeError(w, http.StatusBadGateway,
			fmt.Sprintf("The action failed to generate or locate a binary: %v. See logs for details.", err))
	default:
		slog.InfoContext(ctx, "action initialized", "features", features)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(features))
	}
}

func (p *Proxy) handleRun(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	defer p.complete()

	message, ok := decodeMessage(req)
	if !ok {
		writeError(w, http.StatusNotFound, "The action did not receive a dictionary as an argument.")
		return
	}
	args, ok := objectField(message, "value")
	if !ok {
		writeError(w, http.StatusNotFound, "The action did not receive a dictionary as an argument.")
		return
	}

	result, err := p.runner.Run(ctx, args, p.runner.Env(message))
	var runErr *runner.RunError
	switch {
	case errors.Is(err, runner.ErrNoBinary):
		slog.ErrorContext(ctx, "run rejected", "error", err)
		writeError(w, http.StatusBadGateway, "The action failed to locate a binary. See logs for details.")
	case errors.As(err, &runErr):
		slog.ErrorContext(ctx, "run failed", "error", runErr)
		writeError(w, http.StatusBadGateway, runErr.Line)
	case err != nil:
		slog.ErrorContext(ctx, "run failed", "error", err)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Internal error. %v", err))
	default:
		writeJSON(w, http.StatusOK, result)
	}
}

func (p *Proxy) handleStart(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	if err := p.runner.NotifyStart(ctx); err != nil {
		slog.WarnContext(ctx, "start rejected", "error", err)
		writeError(w, http.StatusForbidden, err.Error()+".")
		return
	}
	p.logLine("onStart")
	writeJSON(w, http.StatusOK, map[string]string{"msg": "onStart"})
}

func (p *Proxy) handlePause(w http.ResponseWriter, req *http.Request) {
	p.runner.NotifyPause(req.Context())
	p.logLine("onpause")
	writeJSON(w, http.StatusOK, map[string]string{"msg": "onpause"})
}

func (p *Proxy) handleFinish(w http.ResponseWriter, req *http.Request) {
	p.runner.NotifyStop(req.Context())
	p.logLine("onfinish")
	writeJSON(w, http.StatusOK, map[string]string{"msg": "onfinish"})
}

// decodeMessage reads the request body as a JSON object. A body that does
// not decode at all counts as an empty message, the way the original
// proxy's lenient parsing did; a body holding a non-object JSON value is
// rejected.
func decodeMessage(req *http.Request) (map[string]any, bool) {
	var raw any
	if err := json.NewDecoder(req.Body).Decode(&raw); err != nil {
		return nil, true
	}
	if raw == nil {
		return nil, true
	}
	message, ok := raw.(map[string]any)
	return message, ok
}

// objectField extracts a JSON-object field, defaulting to an empty object
// when absent or null.
func objectField(message map[string]any, key string) (map[string]any, bool) {
	v, present := message[key]
	if !present || v == nil {
		return map[string]any{}, true
	}
	obj, ok := v.(map[string]any)
	return obj, ok
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
