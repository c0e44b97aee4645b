package rendering

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitSkills(t *testing.T) {
	tests := []struct {
		name  string
		input string
		sep   string
		want  []string
	}{
		{name: "comma", input: "Go, SQL, Docker", sep: ", ", want: []string{"Go", "SQL", "Docker"}},
		{name: "comma without spaces", input: "Go,SQL", sep: ", ", want: []string{"Go", "SQL"}},
		{name: "bullet", input: "Go • SQL", sep: " • ", want: []string{"Go", "SQL"}},
		{name: "pipe", input: " Go |SQL| ", sep: " | ", want: []string{"Go", "SQL"}},
		{name: "drops blanks and repeats", input: "Go, , Go, SQL", sep: ", ", want: []string{"Go", "SQL"}},
		{name: "empty", input: "   ", sep: ", ", want: []string{}},
		{name: "case sensitive", input: "go, Go", sep: ", ", want: []string{"go", "Go"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitSkills(tt.input, tt.sep))
		})
	}
}

func TestJoinSplitRoundTrip(t *testing.T) {
	skills := []string{"Go", "PostgreSQL", "Public speaking"}
	for _, tmpl := range Templates() {
		joined := JoinSkills(skills, tmpl.Separator())
		assert.Equal(t, skills, SplitSkills(joined, tmpl.Separator()), tmpl.ID())
	}
}
