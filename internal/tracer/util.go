package tracer

import (
	"encoding/binary"
	"path/filepath"

	"github.com/CastilloDel/debugito/internal/curated"
)

// hostEndian is little-endian on every platform this debugger supports
// (x86-64).
var hostEndian = binary.LittleEndian

// canonicalizeExecPath resolves the executable path the same way the
// DWARF resolver canonicalizes source file paths, so that it matches the
// pathname /proc/<pid>/maps reports for the mapping.
func canonicalizeExecPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", curated.Errorf("resolving executable path: %w", err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", curated.Errorf("resolving executable path: %w", err)
	}
	return resolved, nil
}
