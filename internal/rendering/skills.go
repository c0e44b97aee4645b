package rendering

import (
	"slices"
	"strings"
)

// JoinSkills renders a skill list as one display string. It never changes the list.
func JoinSkills(skills []string, sep string) string {
	return strings.Join(skills, sep)
}

// SplitSkills is the inverse of JoinSkills for inline edits: it splits on the
// separator (surrounding spaces optional), trims each fragment and drops blanks
// and repeats.
func SplitSkills(s, sep string) []string {
	delim := strings.TrimSpace(sep)
	if delim == "" {
		delim = sep
	}

	out := []string{}
	for _, part := range strings.Split(s, delim) {
		part = strings.TrimSpace(part)
		if part != "" && !slices.Contains(out, part) {
			out = append(out, part)
		}
	}
	return out
}
