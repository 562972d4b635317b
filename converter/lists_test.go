package converter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConvertLists(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "unordered",
			html: `<ul><li>a</li><li>b</li></ul>`,
			want: "- a\n- b",
		},
		{
			name: "ordered start",
			html: `<ol start="3"><li>x</li><li>y</li></ol>`,
			want: "3. x\n4. y",
		},
		{
			name: "invalid start",
			html: `<ol start="zero"><li>x</li></ol>`,
			want: "1. x",
		},
		{
			name: "empty items skipped",
			html: `<ol><li>x</li><li>  </li><li>y</li></ol>`,
			want: "1. x\n2. y",
		},
		{
			name: "nested flattened",
			html: `<ul><li>a<ul><li>b</li></ul></li><li>c</li></ul>`,
			want: "- a\n- b\n- c",
		},
		{
			name: "nested ordered keeps own numbering",
			html: `<ul><li>top<ol><li>one</li><li>two</li></ol></li></ul>`,
			want: "- top\n1. one\n2. two",
		},
		{
			name: "inline formatting",
			html: `<ul><li><a href="/x">Link</a> and <em>em</em></li></ul>`,
			want: "- [Link](/x) and *em*",
		},
		{
			name: "items without closing tags",
			html: `<ul><li>alpha<li>beta</ul><p>after</p>`,
			want: "- alpha\n- beta\n\nafter",
		},
		{
			name: "closed and unclosed items mixed",
			html: `<ol><li>one</li><li>two<li>three</ol>`,
			want: "1. one\n2. two\n3. three",
		},
		{
			name: "unclosed item holding nested list",
			html: `<ul><li>a<ul><li>b</ul><li>c</ul>`,
			want: "- a\n- b\n- c",
		},
		{
			name: "blank line before list",
			html: `<p>Intro</p><ul><li>a</li></ul>`,
			want: "Intro\n\n- a",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := convertBody(t, Config{}, tt.html)
			assert.Equal(t, tt.want, result.Markdown)
		})
	}
}

func TestConvertListItemWithCodeBlock(t *testing.T) {
	result := convertBody(t, Config{}, `<ul><li>Run<pre><code>make</code></pre></li></ul>`)
	assert.Equal(t, "- Run\n\n```\nmake\n```", result.Markdown)
}
