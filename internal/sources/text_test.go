package sources

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "empty",
			in:   "",
			want: "",
		},
		{
			name: "crlf normalized",
			in:   "line one\r\nline two\r",
			want: "line one\nline two",
		},
		{
			name: "inline whitespace collapsed",
			in:   "Senior   Backend\tEngineer",
			want: "Senior Backend Engineer",
		},
		{
			name: "blank line runs collapse",
			in:   "a\n\n\n\n\nb",
			want: "a\n\nb",
		},
		{
			name: "surrounding whitespace trimmed",
			in:   "\n\n  hello  \n\n",
			want: "hello",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanText(tt.in))
		})
	}
}

func TestStripMarkup(t *testing.T) {
	in := `<w:p><w:t>Jane Doe</w:t></w:p><w:t>Engineer</w:t>`
	out := CleanText(stripMarkup(in))
	assert.Equal(t, "Jane Doe Engineer", out)
}
