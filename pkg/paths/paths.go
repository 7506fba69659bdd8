// Package paths splits search-path lists such as $SCENEMESH_DATA.
package paths

import (
	"os"
	"strings"
)

// Separator is the path-list separator of the host platform:
// ':' on POSIX systems and ';' on Windows.
const Separator = os.PathListSeparator

// ParseDirectories splits a path list on the host separator. It fails only
// for a nil input. Every segment is kept, including empty ones produced by
// adjacent or trailing separators, so "" yields a single empty segment.
func ParseDirectories(dirs *string) ([]string, bool) {
	return ParseDirectoriesSep(dirs, Separator)
}

// ParseDirectoriesSep is ParseDirectories with an explicit separator.
func ParseDirectoriesSep(dirs *string, sep rune) ([]string, bool) {
	if dirs == nil {
		return nil, false
	}
	return strings.Split(*dirs, string(sep)), true
}

// NonEmpty drops empty segments from a parsed list.
func NonEmpty(dirs []string) []string {
	out := make([]string, 0, len(dirs))
	for _, d := range dirs {
		if d != "" {
			out = append(out, d)
		}
	}
	return out
}
