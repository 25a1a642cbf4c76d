package filter

import "bytes"

// matchSubstring reports whether value (already normalized the same way
// as initial/any/final) satisfies a decomposed substring pattern, per
// RFC 4511 §4.5.1 substring matching: initial anchors the start, final
// anchors the end, and each "any" component must occur, in order,
// somewhere between them.
func matchSubstring(value []byte, sub *Substrings) bool {
	pos := 0
	if len(sub.Initial) > 0 {
		if !bytes.HasPrefix(value, sub.Initial) {
			return false
		}
		pos = len(sub.Initial)
	}
	for _, part := range sub.Any {
		if len(part) == 0 {
			continue
		}
		idx := bytes.Index(value[pos:], part)
		if idx < 0 {
			return false
		}
		pos += idx + len(part)
	}
	if len(sub.Final) > 0 {
		if !bytes.HasSuffix(value[pos:], sub.Final) {
			return false
		}
	}
	return true
}
