// Package contentpath addresses leaves of a slide's structured content
// tree by dotted/bracketed data paths such as body.items[2].caption, and
// maps rendered text back to the path it came from.
package contentpath

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

var errEmptyPath = errors.New("data path cannot be empty")

// toGJSON converts a bracketed data path into gjson's dotted form:
// body.items[2].caption -> body.items.2.caption.
func toGJSON(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", errEmptyPath
	}

	var b strings.Builder
	for i := 0; i < len(path); i++ {
		switch path[i] {
		case '[':
			j := strings.IndexByte(path[i:], ']')
			if j < 0 {
				return "", fmt.Errorf("unclosed bracket in path %q", path)
			}
			idx := path[i+1 : i+j]
			if _, err := strconv.Atoi(idx); err != nil {
				return "", fmt.Errorf("non-numeric index %q in path %q", idx, path)
			}
			b.WriteByte('.')
			b.WriteString(idx)
			i += j
		default:
			b.WriteByte(path[i])
		}
	}

	return b.String(), nil
}

// Get returns the string value of the leaf at path, reporting whether
// the leaf exists.
func Get(doc []byte, path string) (string, bool) {
	gpath, err := toGJSON(path)
	if err != nil {
		return "", false
	}

	res := gjson.GetBytes(doc, gpath)
	if !res.Exists() {
		return "", false
	}
	return res.String(), true
}

// Set writes a string value to the leaf at path and returns the updated
// document. The original document is never modified in place: callers
// swap the result in as a single atomic update.
func Set(doc []byte, path string, value string) ([]byte, error) {
	gpath, err := toGJSON(path)
	if err != nil {
		return nil, err
	}

	updated, err := sjson.SetBytes(doc, gpath, value)
	if err != nil {
		return nil, fmt.Errorf("setting value at %q: %w", path, err)
	}
	return updated, nil
}
