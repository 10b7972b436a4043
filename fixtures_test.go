package formfs_test

import (
	"bytes"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/tomasbasham/formfs"
)

// field is one part of a test payload.
type field struct {
	name   string
	body   string
	params []formfs.Param
}

// mustBoundary builds a boundary or fails the test.
func mustBoundary(t *testing.T, token string) formfs.Boundary {
	t.Helper()
	b, err := formfs.NewBoundary(token)
	if err != nil {
		t.Fatalf("NewBoundary(%q): %v", token, err)
	}
	return b
}

// encode renders fields as a complete multipart body.
func encode(t *testing.T, b formfs.Boundary, fields ...field) []byte {
	t.Helper()
	var buf bytes.Buffer
	enc := formfs.NewEncoder(&buf, b)
	for _, f := range fields {
		if err := enc.WriteField(f.name, []byte(f.body), f.params...); err != nil {
			t.Fatalf("WriteField(%q): %v", f.name, err)
		}
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	return buf.Bytes()
}

// tree returns every regular file below root with its content, keyed by the
// slash separated relative path.
func tree(t *testing.T, root string) map[string]string {
	t.Helper()
	files := map[string]string{}
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		b, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		files[filepath.ToSlash(rel)] = string(b)
		return nil
	})
	if err != nil {
		t.Fatalf("walk %s: %v", root, err)
	}
	return files
}

// names returns the sorted keys of a tree.
func names(files map[string]string) []string {
	out := make([]string, 0, len(files))
	for k := range files {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// chunkReader returns at most n bytes per Read, to split markers across
// reads at every possible offset.
type chunkReader struct {
	r io.Reader
	n int
}

func (c *chunkReader) Read(p []byte) (int, error) {
	if len(p) > c.n {
		p = p[:c.n]
	}
	return c.r.Read(p)
}

// failingWriter fails every write.
type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, io.ErrClosedPipe
}
