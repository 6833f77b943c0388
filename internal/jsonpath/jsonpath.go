// Package jsonpath pulls string values out of arbitrary JSON documents
// using a small dot/index path syntax ("result.segments[0].text").
package jsonpath

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ExtractText returns the transcription text from a JSON response body.
// If path is set it is tried first; otherwise (or on a miss) a top-level
// "text" field is used, then any non-empty top-level string value.
func ExtractText(body []byte, path string) string {
	var root any
	if err := json.Unmarshal(body, &root); err != nil {
		return ""
	}

	if path != "" {
		if v, ok := Lookup(root, path); ok {
			return v
		}
	}

	m, ok := root.(map[string]any)
	if !ok {
		return ""
	}
	if v, exists := m["text"]; exists {
		if s, ok := asString(v); ok {
			return s
		}
	}
	for _, val := range m {
		if s, ok := val.(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// Lookup walks a decoded JSON value along a dot-separated path. Each
// segment is a map key optionally followed by array indexes, e.g.
// "alternatives[0][1]" or a bare "[2]" to index the current value.
func Lookup(root any, path string) (string, bool) {
	if path == "" {
		return "", false
	}
	cur := root
	for _, segment := range strings.Split(path, ".") {
		key, idxs, err := splitSegment(segment)
		if err != nil {
			return "", false
		}
		if key != "" {
			m, ok := cur.(map[string]any)
			if !ok {
				return "", false
			}
			cur, ok = m[key]
			if !ok {
				return "", false
			}
		}
		for _, idx := range idxs {
			arr, ok := cur.([]any)
			if !ok || idx < 0 || idx >= len(arr) {
				return "", false
			}
			cur = arr[idx]
		}
	}
	return asString(cur)
}

func asString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10), true
		}
		return strconv.FormatFloat(t, 'g', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return "", false
	}
}

// splitSegment parses "foo[0][1]" into its key and index parts.
func splitSegment(segment string) (string, []int, error) {
	if segment == "" {
		return "", nil, fmt.Errorf("empty path segment")
	}
	br := strings.IndexByte(segment, '[')
	if br == -1 {
		return segment, nil, nil
	}
	key := segment[:br]
	rest := segment[br:]
	var idxs []int
	for rest != "" {
		if rest[0] != '[' {
			return "", nil, fmt.Errorf("bad index syntax in %q", segment)
		}
		end := strings.IndexByte(rest, ']')
		if end <= 1 {
			return "", nil, fmt.Errorf("bad index in %q", segment)
		}
		n, err := strconv.Atoi(rest[1:end])
		if err != nil {
			return "", nil, fmt.Errorf("bad index %q in %q", rest[1:end], segment)
		}
		idxs = append(idxs, n)
		rest = rest[end+1:]
	}
	return key, idxs, nil
}
