package razorblog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateSlug(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"lower case", "MyCamelCaseString", "mycamelcasestring"},
		{"trim", " trimmed  ", "trimmed"},
		{"whitespace", "no whitespaces", "no-whitespaces"},
		{"dash runs", "no - whitespaces", "no-whitespaces"},
		{"special characters", "no & whitespaces", "no-whitespaces"},
		{"trim dashes", "-trimmed-", "trimmed"},
		{"swedish characters", "åäöÅÄÖ", "aaoaao"},
		{"accented characters", "áàóòéèíìÁÀÓÒÉÈÍÌ", "aaooeeiiaaooeeii"},
		{"slashes", "no/more / slashes", "no-more-slashes"},
		{"empty", "", ""},
		{"only punctuation", "!?&", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, GenerateSlug(tc.in))
		})
	}
}

func TestGenerateSlugIdempotent(t *testing.T) {
	inputs := []string{
		"MyCamelCaseString", " trimmed  ", "no - whitespaces", "-trimmed-",
		"åäöÅÄÖ", "no/more / slashes", "", "Hello, World!", "2023/08 post",
	}
	for _, in := range inputs {
		once := GenerateSlug(in)
		require.Equal(t, once, GenerateSlug(once), "input %q", in)
	}
}
