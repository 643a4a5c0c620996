package contentpath

import (
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// Resolve walks the content tree depth-first in natural key/index order
// and returns the path of the first string leaf whose trimmed value
// equals the trimmed target text. ok is false when no leaf matches:
// renderer-generated text (auto-numbered markers and the like) has no
// originating field and is simply not editable.
//
// Two leaves holding identical trimmed values are indistinguishable by
// text; callers that carry a stable fragment ID should pass it through
// ResolveByID first and use text matching only as the fallback.
func Resolve(doc []byte, targetText string) (string, bool) {
	target := strings.TrimSpace(targetText)
	if target == "" {
		return "", false
	}
	return walk(gjson.ParseBytes(doc), "", target)
}

// ResolveByID returns the path of the leaf whose sibling "id" field
// matches fragmentID. Content generated with per-leaf identifiers is
// resolved this way regardless of text edits; text matching remains the
// fallback for decks that predate identifiers.
func ResolveByID(doc []byte, fragmentID string) (string, bool) {
	if fragmentID == "" {
		return "", false
	}

	var found string
	var ok bool

	var visit func(value gjson.Result, path string)
	visit = func(value gjson.Result, path string) {
		if ok || !value.IsObject() && !value.IsArray() {
			return
		}
		if value.IsObject() {
			if id := value.Get("id"); id.Type == gjson.String && id.Str == fragmentID {
				if text := value.Get("text"); text.Exists() {
					found, ok = joinPath(path, "text"), true
					return
				}
			}
		}
		value.ForEach(func(key, child gjson.Result) bool {
			if value.IsArray() {
				visit(child, path+"["+strconv.FormatInt(key.Int(), 10)+"]")
			} else {
				visit(child, joinPath(path, key.String()))
			}
			return !ok
		})
	}

	visit(gjson.ParseBytes(doc), "")
	return found, ok
}

func walk(value gjson.Result, path, target string) (string, bool) {
	switch {
	case value.Type == gjson.String:
		if strings.TrimSpace(value.Str) == target {
			return path, true
		}
		return "", false

	case value.IsArray():
		i := 0
		var found string
		var ok bool
		value.ForEach(func(_, child gjson.Result) bool {
			found, ok = walk(child, path+"["+strconv.Itoa(i)+"]", target)
			i++
			return !ok
		})
		return found, ok

	case value.IsObject():
		var found string
		var ok bool
		value.ForEach(func(key, child gjson.Result) bool {
			found, ok = walk(child, joinPath(path, key.String()), target)
			return !ok
		})
		return found, ok

	default:
		return "", false
	}
}

func joinPath(base, key string) string {
	if base == "" {
		return key
	}
	return base + "." + key
}
