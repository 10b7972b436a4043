package formfs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	// counterName is the file inside a multi-value directory holding the
	// number of values allocated so far.
	counterName = ".n"

	// tempDirName is the scratch directory used while turning a single value
	// into a directory of values.
	tempDirName = ".tmp"
)

// Namespace is the working directory fields are written into. Each field
// name is either a plain file holding a single value or, once the name has
// been seen twice, a directory of indexed values.
//
// A Namespace is not safe for concurrent use, and neither is the directory
// behind it: two processes decoding into the same root can interleave the
// steps of a file to directory conversion. Nothing is fsynced, so a crash in
// the middle of a conversion can leave the temporary directory behind.
type Namespace struct {
	root string
}

// OpenNamespace returns the namespace rooted at root, creating the directory
// and its parents when they do not exist.
func OpenNamespace(root string) (*Namespace, error) {
	if root == "" {
		return nil, errors.New("form: empty namespace root")
	}
	if err := os.MkdirAll(root, 0o777); err != nil {
		return nil, fmt.Errorf("form: create namespace: %w", err)
	}
	return &Namespace{root: root}, nil
}

// Root returns the directory the namespace writes into.
func (ns *Namespace) Root() string {
	return ns.root
}

// Allocation is the destination chosen for one occurrence of a field.
type Allocation struct {
	// Name is the logical field name.
	Name string
	// Path is the destination relative to the namespace root: the name
	// itself, or "name/<index>" for repeated names.
	Path string
	// Index is the position of this value among values of the same name, or
	// -1 while the name holds a single value.
	Index int
	// Converted reports whether this allocation turned a single value into
	// a directory, relocating its sidecar files.
	Converted bool
}

// Allocate picks the destination for the next value of name.
//
// The first value is stored at name. The second moves it to name/0 (with its
// sidecars moved to name/.0:<key>) and is itself stored at name/1. Later
// values take the next index from the counter file name/.n.
func (ns *Namespace) Allocate(name string) (Allocation, error) {
	info, err := os.Stat(ns.path(name))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return Allocation{Name: name, Path: name, Index: -1}, nil
	case err != nil:
		return Allocation{}, fmt.Errorf("form: stat %s: %w", name, err)
	}

	a := Allocation{Name: name}
	if info.IsDir() {
		a.Index, err = ns.readCounter(name)
		if err != nil {
			return Allocation{}, err
		}
	} else {
		if err := ns.convert(name); err != nil {
			return Allocation{}, err
		}
		a.Index = 1
		a.Converted = true
	}

	if err := ns.writeCounter(name, a.Index+1); err != nil {
		return Allocation{}, err
	}
	a.Path = filepath.Join(name, strconv.Itoa(a.Index))
	return a, nil
}

// Count returns how many values name holds: 0 when it does not exist, 1 for
// a plain file, and the counter of a multi-value directory.
func (ns *Namespace) Count(name string) (int, error) {
	info, err := os.Stat(ns.path(name))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return 0, nil
	case err != nil:
		return 0, fmt.Errorf("form: stat %s: %w", name, err)
	case info.IsDir():
		return ns.readCounter(name)
	default:
		return 1, nil
	}
}

// convert turns the plain file name into a directory holding it as value 0.
// The steps are not atomic as a whole and there is no rollback: a failure
// part way leaves the namespace as it is.
func (ns *Namespace) convert(name string) error {
	parent := filepath.Dir(name)
	tmp := filepath.Join(parent, tempDirName)

	if err := os.Mkdir(ns.path(tmp), 0o777); err != nil {
		return fmt.Errorf("form: mkdir %s: %w", tmp, err)
	}
	if err := os.Rename(ns.path(name), ns.path(filepath.Join(tmp, "0"))); err != nil {
		return fmt.Errorf("form: mv %s %s/0: %w", name, tmp, err)
	}
	if err := os.Rename(ns.path(tmp), ns.path(name)); err != nil {
		return fmt.Errorf("form: mv %s %s: %w", tmp, name, err)
	}
	return ns.relocateSidecars(name)
}

// relocateSidecars moves the sidecars of the former single value,
// .<name>:<key> next to it, to <name>/.0:<key>.
func (ns *Namespace) relocateSidecars(name string) error {
	parent := filepath.Dir(name)
	prefix := "." + filepath.Base(name) + ":"

	entries, err := os.ReadDir(ns.path(parent))
	if err != nil {
		return fmt.Errorf("form: read dir %s: %w", parent, err)
	}
	for _, e := range entries {
		key, ok := strings.CutPrefix(e.Name(), prefix)
		if !ok {
			continue
		}
		from := filepath.Join(parent, e.Name())
		to := filepath.Join(name, ".0:"+key)
		if err := os.Rename(ns.path(from), ns.path(to)); err != nil {
			return fmt.Errorf("form: mv %s %s: %w", from, to, err)
		}
	}
	return nil
}

func (ns *Namespace) readCounter(name string) (int, error) {
	p := filepath.Join(name, counterName)
	b, err := os.ReadFile(ns.path(p))
	if err != nil {
		return 0, fmt.Errorf("form: read %s: %w", p, err)
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(b)))
	if err != nil || n < 0 {
		return 0, fmt.Errorf("form: invalid counter in %s: %q", p, b)
	}
	return n, nil
}

func (ns *Namespace) writeCounter(name string, n int) error {
	p := filepath.Join(name, counterName)
	if err := os.WriteFile(ns.path(p), []byte(strconv.Itoa(n)+"\n"), 0o666); err != nil {
		return fmt.Errorf("form: write %s: %w", p, err)
	}
	return nil
}

// path maps a namespace relative name to a filesystem path.
func (ns *Namespace) path(name string) string {
	return filepath.Join(ns.root, name)
}
