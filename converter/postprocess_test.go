package converter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPostProcess(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"heading spacing", "intro\n# H\ntext", "intro\n\n# H\n\ntext"},
		{"blank runs collapse", "a\n\n\n\nb", "a\n\nb"},
		{"leading and trailing blanks", "\n\n# H\n\n\n", "# H"},
		{"list gets blank before", "text\n- a\n- b", "text\n\n- a\n- b"},
		{"ordered list", "text\n1. a\n2. b", "text\n\n1. a\n2. b"},
		{"fence spacing", "para\n```go\nx := 1\n```\nnext", "para\n\n```go\nx := 1\n```\n\nnext"},
		{"fence content untouched", "```\n# not a heading\n\n\n\n- nor a list\n```", "```\n# not a heading\n\n\n\n- nor a list\n```"},
		{"tilde fence", "a\n~~~\ncode\n~~~\nb", "a\n\n~~~\ncode\n~~~\n\nb"},
		{"longer closing fence", "```\nx\n`````\ny", "```\nx\n`````\n\ny"},
		{"unclosed fence", "```\n# x", "```\n# x"},
		{"crlf", "a\r\nb", "a\nb"},
		{"hashtag without space", "#tag\ntext", "#tag\ntext"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PostProcess(tt.input))
		})
	}
}

func TestPostProcessIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"# A\n## B\n### C",
		"- a\n\n\n- b\ntext\n1. c",
		"```\n\n\n```\n```\nx\n```",
		":::note\n\nbody\n\n:::\n# after",
		"| a |\n| --- |\n# h\n- x",
		"\n\n\ntext\n\n\n",
	}

	for _, input := range inputs {
		once := PostProcess(input)
		assert.Equal(t, once, PostProcess(once), "input %q", input)
	}
}
