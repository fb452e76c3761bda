package expr

import (
	"errors"
	"fmt"
	"go/token"
	"strings"
)

// ParsePath splits a member token such as "Field" or "Nested.Field" into
// its member names.
func ParsePath(path string) ([]string, error) {
	if path == "" {
		return nil, errors.New("empty path")
	}

	var names []string

	for part := range strings.SplitSeq(path, ".") {
		if part == "" {
			return nil, fmt.Errorf("invalid path %q: empty segment", path)
		}

		if !token.IsIdentifier(part) {
			return nil, fmt.Errorf("invalid path %q: invalid identifier %q", path, part)
		}

		names = append(names, part)
	}

	return names, nil
}
