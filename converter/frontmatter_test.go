package converter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateFrontmatterFieldOrder(t *testing.T) {
	cfg := Config{
		Title:             "Guide",
		Description:       "How to",
		SidebarPosition:   2,
		SidebarLabel:      "Start",
		Slug:              "/start",
		Tags:              []string{"a", "", "b", " a "},
		Keywords:          []string{"k"},
		CustomFrontmatter: "author: 'Jane'\nquote: \"it's\"",
	}

	fm, warnings := GenerateFrontmatter(cfg)

	assert.Empty(t, warnings)
	assert.Equal(t, strings.Join([]string{
		"---",
		`title: "Guide"`,
		`description: "How to"`,
		"sidebar_position: 2",
		`sidebar_label: "Start"`,
		`slug: "/start"`,
		"tags:",
		"  - a",
		"  - b",
		"keywords:",
		"  - k",
		`author: "Jane"`,
		`quote: "it's"`,
		"---",
		"",
	}, "\n"), fm)
}

func TestGenerateFrontmatterOmitsEmptyFields(t *testing.T) {
	fm, warnings := GenerateFrontmatter(Config{Title: "Only", Tags: []string{" "}})

	assert.Empty(t, warnings)
	assert.Equal(t, "---\ntitle: \"Only\"\n---\n", fm)
}

func TestGenerateFrontmatterEmpty(t *testing.T) {
	fm, warnings := GenerateFrontmatter(Config{})
	assert.Empty(t, fm)
	assert.Empty(t, warnings)
}

func TestGenerateFrontmatterCustomKeyCollision(t *testing.T) {
	fm, _ := GenerateFrontmatter(Config{
		Title:             "Original",
		Slug:              "/x",
		CustomFrontmatter: "title: Replaced",
	})

	assert.Equal(t, "---\ntitle: \"Replaced\"\nslug: \"/x\"\n---\n", fm)
	assert.Equal(t, 1, strings.Count(fm, "title:"))
}

func TestGenerateFrontmatterMalformedCustomLines(t *testing.T) {
	fm, warnings := GenerateFrontmatter(Config{CustomFrontmatter: "no colon here\n\n: missing key\nok: yes"})

	assert.Equal(t, "---\nok: \"yes\"\n---\n", fm)
	require.Len(t, warnings, 2)
	assert.Equal(t, WarningFrontmatterLine, warnings[0].Type)
	assert.Contains(t, warnings[0].Message, "line 1")
	assert.Contains(t, warnings[1].Message, "line 3")
}

func TestGenerateFrontmatterOnlyMalformed(t *testing.T) {
	fm, warnings := GenerateFrontmatter(Config{CustomFrontmatter: "broken"})
	assert.Empty(t, fm)
	assert.Len(t, warnings, 1)
}

func TestParseCustomLine(t *testing.T) {
	tests := []struct {
		line     string
		key, val string
		ok       bool
	}{
		{"key: value", "key", "value", true},
		{"url: https://example.com", "url", "https://example.com", true},
		{`name: "quoted"`, "name", "quoted", true},
		{`name: 'single'`, "name", "single", true},
		{`name: "mismatched'`, "name", `"mismatched'`, true},
		{"empty:", "empty", "", true},
		{":value", "", "", false},
		{"   : value", "", "", false},
		{"nocolon", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			key, val, ok := parseCustomLine(tt.line)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.key, key)
			assert.Equal(t, tt.val, val)
		})
	}
}

func TestGenerateFrontmatterKeepsEmojiRaw(t *testing.T) {
	fm, warnings := GenerateFrontmatter(Config{
		Title:             "Launch 😀",
		Tags:              []string{"🚀"},
		CustomFrontmatter: "icon: '🎉'",
	})

	assert.Empty(t, warnings)
	assert.Equal(t, strings.Join([]string{
		"---",
		`title: "Launch 😀"`,
		"tags:",
		"  - 🚀",
		`icon: "🎉"`,
		"---",
		"",
	}, "\n"), fm)
	assert.NotContains(t, fm, `\U`)
}
