package runner

import (
	"encoding/json"
	"slices"
	"strings"
)

// EnvPrefix marks environment variables derived from request metadata so
// the action can tell them apart from the inherited environment.
const EnvPrefix = "__OW_"

// Env derives the child-process environment: the base environment plus one
// entry per metadata key other than "value", named EnvPrefix plus the
// upper-cased key. String values pass through unchanged, anything else is
// JSON-encoded. The message map is never mutated and the derived entries
// are sorted, so identical inputs yield identical environments.
func Env(base []string, message map[string]any) []string {
	env := slices.Clone(base)

	keys := make([]string, 0, len(message))
	for k := range message {
		if k == "value" {
			continue
		}
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, k := range keys {
		env = append(env, EnvPrefix+strings.ToUpper(k)+"="+envValue(message[k]))
	}
	return env
}

func envValue(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(raw)
}
