package formfs

import (
	"fmt"
	"strings"
)

const dispositionPrefix = "Content-Disposition: form-data; "

// Param is a header parameter of a form field other than its name, such as
// filename="photo.jpg".
type Param struct {
	Key   string
	Value string
}

// header is the parsed form of one part header line.
type header struct {
	// blank marks the empty line that ends the header block.
	blank bool
	// disposition is set for a form-data Content-Disposition line.
	disposition bool
	name        string
	params      []Param
}

// parseHeaderLine parses one header line with its CRLF already removed.
// Lines other than a blank line or a form-data disposition are ignored.
// Parameters are split on ';', space and tab, except inside a quoted value,
// which keeps its separators: filename="my file.txt" is a single parameter.
func parseHeaderLine(line string) (header, error) {
	if line == "" {
		return header{blank: true}, nil
	}
	if !strings.HasPrefix(line, dispositionPrefix) {
		return header{}, nil
	}

	h := header{disposition: true}
	named := false
	for _, tok := range tokenize(line[len(dispositionPrefix):]) {
		key, val, hasVal := strings.Cut(tok, "=")
		if hasVal {
			val = unquote(val)
		}

		if key == "name" && !named {
			if !hasVal || val == "" {
				return header{}, fmt.Errorf("%w: %q", ErrMalformedDisposition, line)
			}
			h.name = val
			named = true
			continue
		}
		h.params = append(h.params, Param{Key: key, Value: val})
	}
	return h, nil
}

// tokenize splits s on ';', ' ' and '\t'. Separators inside a quoted value
// are kept, so filename="a b.txt" stays one token. A quote with no closing
// match is an ordinary character.
func tokenize(s string) []string {
	var (
		toks  []string
		start = -1
		quote byte
	)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == ';' || c == ' ' || c == '\t':
			if start >= 0 {
				toks = append(toks, s[start:i])
				start = -1
			}
		default:
			if start < 0 {
				start = i
			}
			if (c == '"' || c == '\'') && i > 0 && s[i-1] == '=' &&
				strings.IndexByte(s[i+1:], c) >= 0 {
				quote = c
			}
		}
	}
	if start >= 0 {
		toks = append(toks, s[start:])
	}
	return toks
}

// unquote strips one pair of matching surrounding quotes.
func unquote(v string) string {
	if len(v) >= 2 && (v[0] == '"' || v[0] == '\'') && v[len(v)-1] == v[0] {
		return v[1 : len(v)-1]
	}
	return v
}
