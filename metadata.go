package formfs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SidecarPath returns where parameter key of the value stored at dest is
// kept: ".<dest>:<key>" for a top level value and "<dir>/.<base>:<key>"
// otherwise.
func SidecarPath(dest, key string) string {
	dir, base := filepath.Split(dest)
	return dir + "." + base + ":" + key
}

// writeSidecars stores every parameter next to the value at dest, one file
// per key holding the value and a newline. Existing sidecars are replaced.
func (ns *Namespace) writeSidecars(dest string, params []Param) error {
	for _, p := range params {
		side := SidecarPath(dest, p.Key)
		if err := os.WriteFile(ns.path(side), []byte(p.Value+"\n"), 0o666); err != nil {
			return fmt.Errorf("form: write %s: %w", side, err)
		}
	}
	return nil
}

// ReadSidecar returns the value of parameter key stored next to dest, without
// its trailing newline.
func (ns *Namespace) ReadSidecar(dest, key string) (string, error) {
	side := SidecarPath(dest, key)
	b, err := os.ReadFile(ns.path(side))
	if err != nil {
		return "", fmt.Errorf("form: read %s: %w", side, err)
	}
	if n := len(b); n > 0 && b[n-1] == '\n' {
		b = b[:n-1]
	}
	return string(b), nil
}

// Sidecars returns every parameter stored next to dest, ordered by key.
func (ns *Namespace) Sidecars(dest string) ([]Param, error) {
	dir, base := filepath.Split(dest)
	entries, err := os.ReadDir(ns.path(dir))
	if err != nil {
		return nil, fmt.Errorf("form: read dir %s: %w", dir, err)
	}

	prefix := "." + base + ":"
	var params []Param
	for _, e := range entries {
		key, ok := strings.CutPrefix(e.Name(), prefix)
		if !ok || e.IsDir() {
			continue
		}
		val, err := ns.ReadSidecar(dest, key)
		if err != nil {
			return nil, err
		}
		params = append(params, Param{Key: key, Value: val})
	}
	return params, nil
}
