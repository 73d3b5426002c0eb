package runner

import "path/filepath"

// DefaultBinary is the well-known location where the invoker expects the
// action executable inside the container.
const DefaultBinary = "/action/exec"

// Config holds the filesystem locations a Runner works with. The zero
// value is usable: missing fields fall back to the container defaults.
type Config struct {
	// Source is where inline action code is written during Init.
	Source string
	// Binary is the executable artifact spawned by Run.
	Binary string
	// ZipDest is the directory archive payloads are extracted into.
	ZipDest string
}

func (c Config) withDefaults() Config {
	if c.Binary == "" {
		c.Binary = DefaultBinary
	}
	if c.Source == "" {
		c.Source = c.Binary
	}
	if c.ZipDest == "" {
		c.ZipDest = filepath.Dir(c.Source)
	}
	return c
}
