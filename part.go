package formfs

import (
	"fmt"
	"os"
)

// partWriter streams the body of the current part to its destination. With
// no destination open, body bytes are dropped.
type partWriter struct {
	f    *os.File
	path string
	n    int64
}

// open truncates or creates dest and makes it the current destination,
// closing any previous one.
func (pw *partWriter) open(ns *Namespace, dest string) error {
	if err := pw.close(); err != nil {
		return err
	}
	f, err := os.OpenFile(ns.path(dest), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o666)
	if err != nil {
		return fmt.Errorf("form: open %s: %w", dest, err)
	}
	pw.f = f
	pw.path = dest
	pw.n = 0
	return nil
}

func (pw *partWriter) write(p []byte) (int, error) {
	if pw.f == nil || len(p) == 0 {
		return len(p), nil
	}
	n, err := pw.f.Write(p)
	pw.n += int64(n)
	if err != nil {
		return n, fmt.Errorf("form: write %s: %w", pw.path, err)
	}
	return n, nil
}

func (pw *partWriter) close() error {
	if pw.f == nil {
		return nil
	}
	f := pw.f
	pw.f = nil
	if err := f.Close(); err != nil {
		return fmt.Errorf("form: close %s: %w", pw.path, err)
	}
	return nil
}
