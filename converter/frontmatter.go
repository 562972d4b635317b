package converter

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// frontmatter builds an ordered YAML mapping. Setting a key twice replaces
// the value in place, so the first position is kept and the last value wins.
type frontmatter struct {
	root  *yaml.Node
	index map[string]int
}

func newFrontmatter() *frontmatter {
	return &frontmatter{
		root:  &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"},
		index: map[string]int{},
	}
}

func (f *frontmatter) set(key string, value *yaml.Node) {
	if i, ok := f.index[key]; ok {
		f.root.Content[i] = value
		return
	}
	f.root.Content = append(f.root.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}, value)
	f.index[key] = len(f.root.Content) - 1
}

func (f *frontmatter) setString(key, value string) {
	f.set(key, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Style: yaml.DoubleQuotedStyle, Value: value})
}

func (f *frontmatter) setInt(key string, value int) {
	f.set(key, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(value)})
}

func (f *frontmatter) setList(key string, values []string) {
	seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	for _, v := range values {
		seq.Content = append(seq.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v})
	}
	f.set(key, seq)
}

func (f *frontmatter) empty() bool {
	return len(f.root.Content) == 0
}

// GenerateFrontmatter renders the Docusaurus frontmatter block for cfg,
// delimited by "---" lines and ending with a newline. It returns "" when no
// field is populated. Malformed custom lines are skipped with a warning.
func GenerateFrontmatter(cfg Config) (string, []Warning) {
	fm := newFrontmatter()
	if cfg.Title != "" {
		fm.setString("title", cfg.Title)
	}
	if cfg.Description != "" {
		fm.setString("description", cfg.Description)
	}
	if cfg.SidebarPosition != 0 {
		fm.setInt("sidebar_position", cfg.SidebarPosition)
	}
	if cfg.SidebarLabel != "" {
		fm.setString("sidebar_label", cfg.SidebarLabel)
	}
	if cfg.Slug != "" {
		fm.setString("slug", cfg.Slug)
	}
	if tags := nonEmpty(cfg.Tags); len(tags) > 0 {
		fm.setList("tags", tags)
	}
	if keywords := nonEmpty(cfg.Keywords); len(keywords) > 0 {
		fm.setList("keywords", keywords)
	}

	var warnings []Warning
	for i, line := range strings.Split(normalizeNewlines(cfg.CustomFrontmatter), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		key, value, ok := parseCustomLine(line)
		if !ok {
			warnings = append(warnings, Warning{
				Type:    WarningFrontmatterLine,
				Element: "frontmatter",
				Message: fmt.Sprintf("skipping custom frontmatter line %d: expected \"key: value\"", i+1),
			})
			continue
		}
		fm.setString(key, value)
	}

	if fm.empty() {
		return "", warnings
	}

	restore := shieldAstral(fm.root)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(fm.root); err != nil {
		warnings = append(warnings, Warning{
			Type:    WarningFrontmatterLine,
			Element: "frontmatter",
			Message: fmt.Sprintf("failed to encode frontmatter: %v", err),
		})
		return "", warnings
	}
	if err := enc.Close(); err != nil {
		return "", warnings
	}

	return "---\n" + restore.Replace(buf.String()) + "---\n", warnings
}

const (
	privateUseFirst rune = 0xE000
	privateUseLast  rune = 0xF8FF
)

// shieldAstral swaps runes above U+FFFF in the tree for private use
// placeholders and returns the replacer that puts them back. yaml.v3
// writes such runes as \U escapes in every scalar style.
func shieldAstral(root *yaml.Node) *strings.Replacer {
	used := map[rune]bool{}
	walkScalars(root, func(n *yaml.Node) {
		for _, r := range n.Value {
			if r >= privateUseFirst && r <= privateUseLast {
				used[r] = true
			}
		}
	})

	swapped := map[rune]rune{}
	var pairs []string
	next := privateUseFirst
	walkScalars(root, func(n *yaml.Node) {
		n.Value = strings.Map(func(r rune) rune {
			if r <= 0xFFFF {
				return r
			}
			if p, ok := swapped[r]; ok {
				return p
			}
			for next <= privateUseLast && used[next] {
				next++
			}
			if next > privateUseLast {
				return r
			}
			swapped[r] = next
			used[next] = true
			pairs = append(pairs, string(next), string(r))
			return next
		}, n.Value)
	})
	return strings.NewReplacer(pairs...)
}

func walkScalars(n *yaml.Node, fn func(*yaml.Node)) {
	if n.Kind == yaml.ScalarNode {
		fn(n)
	}
	for _, child := range n.Content {
		walkScalars(child, fn)
	}
}

// parseCustomLine splits "key: value" at the first colon and strips one
// pair of matching surrounding quotes from the value.
func parseCustomLine(line string) (string, string, bool) {
	idx := strings.Index(line, ":")
	if idx <= 0 {
		return "", "", false
	}
	key := strings.TrimSpace(line[:idx])
	if key == "" {
		return "", "", false
	}
	value := strings.TrimSpace(line[idx+1:])
	if len(value) >= 2 {
		first, last := value[0], value[len(value)-1]
		if (first == '"' || first == '\'') && first == last {
			value = value[1 : len(value)-1]
		}
	}
	return key, value, true
}

// nonEmpty trims values and drops blanks and repeats, keeping first occurrences.
func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
