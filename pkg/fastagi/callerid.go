package fastagi

import (
	"regexp"
	"strings"
)

var (
	// "name" <id>, "name"<id>, name <id> and <id>
	bracketedCallerID = regexp.MustCompile(`^(?:"([^"]*)"|([^"<]*))\s*<([^>]*)>$`)
	// "name" id
	quotedCallerID = regexp.MustCompile(`^"([^"]*)"\s*(.*)$`)
)

// splitCallerID decomposes the combined caller id sent by Asterisk before 1.2
// into display name and number. Missing parts come back empty.
func splitCallerID(s string) (name, id string) {
	s = strings.TrimSpace(s)

	if m := bracketedCallerID.FindStringSubmatch(s); m != nil {
		name = m[1]
		if name == "" {
			name = strings.TrimSpace(m[2])
		}

		return name, strings.TrimSpace(m[3])
	}

	if m := quotedCallerID.FindStringSubmatch(s); m != nil {
		return m[1], strings.TrimSpace(m[2])
	}

	return "", s
}
