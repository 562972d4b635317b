package mdcheck

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const frontmatterDelimiter = "---"

// frontmatter records the leading YAML block, if any, and returns the
// remaining body with the number of source lines that precede it.
func (r *reporter) frontmatter(source string) (string, int) {
	if !strings.HasPrefix(source, frontmatterDelimiter+"\n") {
		return source, 0
	}

	start := len(frontmatterDelimiter) + 1
	for pos := start; pos <= len(source); {
		end := strings.IndexByte(source[pos:], '\n')
		line := source[pos:]
		next := len(source)
		if end >= 0 {
			line = source[pos : pos+end]
			next = pos + end + 1
		}

		if strings.TrimRight(line, " \t") == frontmatterDelimiter {
			r.parseFrontmatter(source[start:pos])
			return source[next:], strings.Count(source[:next], "\n")
		}
		if end < 0 {
			break
		}
		pos = next
	}

	r.addIssue(IssueFrontmatterUnclosed, 1, `frontmatter is not closed by a "---" line`)
	return source, 0
}

func (r *reporter) parseFrontmatter(text string) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(text), &doc); err != nil {
		r.addIssue(IssueFrontmatterSyntax, 1, fmt.Sprintf("invalid frontmatter: %v", err))
		return
	}
	if len(doc.Content) == 0 {
		return
	}

	mapping := doc.Content[0]
	if mapping.Kind != yaml.MappingNode {
		r.addIssue(IssueFrontmatterSyntax, mapping.Line+1, "frontmatter must be a mapping")
		return
	}

	seen := make(map[string]int, len(mapping.Content)/2)
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		key, value := mapping.Content[i], mapping.Content[i+1]
		line := key.Line + 1

		if first, ok := seen[key.Value]; ok {
			r.addIssue(IssueDuplicateKey, line, fmt.Sprintf("frontmatter key %q already defined on line %d", key.Value, first))
		} else {
			seen[key.Value] = line
		}

		field := Field{Key: key.Value}
		switch value.Kind {
		case yaml.ScalarNode:
			field.Value = value.Value
		case yaml.SequenceNode:
			for _, item := range value.Content {
				field.List = append(field.List, item.Value)
			}
		}
		r.report.Frontmatter = append(r.report.Frontmatter, field)
	}
}
