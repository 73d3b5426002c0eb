package runner

import "os"

// Verify reports whether path names a regular file with an executable
// permission bit set. Read-only, safe to call at any time: before a
// successful initialization it simply returns false.
func Verify(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular() && info.Mode().Perm()&0o111 != 0
}
