package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPreview(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"short text unchanged", "kurz", 10, "kurz"},
		{"newlines flattened", "erste\nzweite  Zeile", 40, "erste zweite Zeile"},
		{"truncated with ellipsis", "ein ziemlich langer Satz", 10, "ein zie..."},
		{"multibyte safe", "äöüäöüäöüäöü", 6, "äöü..."},
		{"tiny max", "abcdef", 2, "ab"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Preview(tt.in, tt.max))
		})
	}
}
