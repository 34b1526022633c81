// Package scope builds and parses scoped property paths. A path is a
// "::"-joined sequence of field names and decimal element indices, e.g.
// "plugins::0::header::stamp". Field names never contain ':' so the delimiter
// cannot collide with a segment.
package scope

import (
	"strconv"
	"strings"
)

// Delimiter separates path segments.
const Delimiter = "::"

// Join appends a field name to parent. An empty parent yields the bare name.
func Join(parent, field string) string {
	if parent == "" {
		return field
	}
	if field == "" {
		return parent
	}
	return parent + Delimiter + field
}

// JoinIndex appends a repeated element index to parent.
func JoinIndex(parent string, index int) string {
	return Join(parent, strconv.Itoa(index))
}

// Split returns the segments of path. The empty path has no segments.
func Split(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, Delimiter)
}

// IsIndex reports whether segment is a repeated element index.
func IsIndex(segment string) bool {
	if segment == "" {
		return false
	}
	for _, r := range segment {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Index parses the trailing segment of path as an element index.
func Index(path string) (int, bool) {
	base := Base(path)
	if !IsIndex(base) {
		return 0, false
	}
	idx, err := strconv.Atoi(base)
	if err != nil {
		return 0, false
	}
	return idx, true
}

// FamilyName strips every element index from path, producing the name shared
// by all repetitions of a slot: "plugins::3::header" -> "plugins::header".
func FamilyName(path string) string {
	segments := Split(path)
	if len(segments) == 0 {
		return ""
	}
	kept := make([]string, 0, len(segments))
	for _, segment := range segments {
		if IsIndex(segment) {
			continue
		}
		kept = append(kept, segment)
	}
	return strings.Join(kept, Delimiter)
}

// HasPrefix reports whether path equals prefix or lies below it. The check is
// segment aware: "plugins::10" is not under "plugins::1".
func HasPrefix(path, prefix string) bool {
	if prefix == "" {
		return true
	}
	if path == prefix {
		return true
	}
	return strings.HasPrefix(path, prefix+Delimiter)
}

// Parent drops the last segment of path.
func Parent(path string) string {
	idx := strings.LastIndex(path, Delimiter)
	if idx < 0 {
		return ""
	}
	return path[:idx]
}

// Base returns the last segment of path.
func Base(path string) string {
	idx := strings.LastIndex(path, Delimiter)
	if idx < 0 {
		return path
	}
	return path[idx+len(Delimiter):]
}

// Depth counts the segments of path.
func Depth(path string) int {
	if path == "" {
		return 0
	}
	return strings.Count(path, Delimiter) + 1
}

// URI builds the drag-and-drop identifier of a property: the path with "/"
// separators, prefixed by "<topic>?p=/" when a topic is known.
func URI(topic, path string) string {
	slashed := strings.ReplaceAll(path, Delimiter, "/")
	if topic == "" {
		return slashed
	}
	return topic + "?p=/" + slashed
}
