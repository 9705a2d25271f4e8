package introspect

import (
	"reflect"
	"strings"

	"github.com/example/plugincli/pkg/plugin"
)

const (
	tagMarker   = ":"
	paramMarker = ":param "
)

// Summary returns the free text of a documentation block: every line
// that does not start with a tag marker, trimmed and joined by spaces.
func Summary(doc string) string {
	var parts []string
	for _, line := range strings.Split(doc, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, tagMarker) {
			continue
		}
		parts = append(parts, line)
	}
	return strings.Join(parts, " ")
}

// ParamHelp returns the text after the first ":param <name>:" line, or ""
// when doc has no such line. The match on name is exact.
func ParamHelp(doc, name string) string {
	marker := paramMarker + name + tagMarker
	for _, line := range strings.Split(doc, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, marker) {
			return strings.TrimSpace(line[len(marker):])
		}
	}
	return ""
}

// DocOf returns the documentation block for member on values of type t,
// or "" when the type is not plugin.Documented. Doc is called on a fresh
// zero value.
func DocOf(t reflect.Type, member string) string {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if documented, ok := reflect.New(t).Interface().(plugin.Documented); ok {
		return documented.Doc(member)
	}
	return ""
}
