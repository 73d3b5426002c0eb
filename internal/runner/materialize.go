package runner

import (
	"archive/zip"
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Materialize turns an init payload into on-disk action code. It reports
// whether anything was prepared: a payload without code is not an error,
// verification alone decides such an initialization (pre-baked images
// ship their own binary).
//
// With the binary flag unset the code is written verbatim to cfg.Source,
// keeping the permissions of an already existing file. With the flag set
// the code is base64-decoded, read as a zip archive and extracted into
// cfg.ZipDest preserving relative paths.
func Materialize(cfg Config, payload map[string]any) (bool, error) {
	cfg = cfg.withDefaults()

	v, ok := payload["code"]
	if !ok || v == nil {
		return false, nil
	}
	code, ok := v.(string)
	if !ok {
		return false, fmt.Errorf("payload code must be a string, got %T", v)
	}

	if isBinary, _ := payload["binary"].(bool); isBinary {
		if err := extractArchive(cfg.ZipDest, code); err != nil {
			return false, err
		}
		return true, nil
	}

	if err := os.WriteFile(cfg.Source, []byte(code), 0o644); err != nil {
		return false, fmt.Errorf("writing action source: %w", err)
	}
	return true, nil
}

func extractArchive(dest, code string) error {
	raw, err := base64.StdEncoding.DecodeString(code)
	if err != nil {
		return fmt.Errorf("decoding base64 archive: %w", err)
	}
	archive, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return fmt.Errorf("opening zip archive: %w", err)
	}
	for _, entry := range archive.File {
		if err := extractEntry(dest, entry); err != nil {
			return fmt.Errorf("extracting %q: %w", entry.Name, err)
		}
	}
	return nil
}

func extractEntry(dest string, entry *zip.File) error {
	name := filepath.FromSlash(entry.Name)
	if !filepath.IsLocal(name) {
		return fmt.Errorf("entry escapes the destination directory")
	}
	path := filepath.Join(dest, name)

	if entry.FileInfo().IsDir() {
		return os.MkdirAll(path, 0o755)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	mode := entry.Mode().Perm()
	if mode == 0 {
		mode = 0o644
	}
	in, err := entry.Open()
	if err != nil {
		return err
	}
	defer func() {
		_ = in.Close()
	}()

	out, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
