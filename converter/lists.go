package converter

import (
	"strconv"
	"strings"
)

var listOpen = openTagPattern("ul", "ol")

func (s *state) convertLists(doc string) (string, Stats) {
	out := rewriteElements(doc, listOpen, func(el element) (string, bool) {
		lines, blocks := s.listLines(el.name, el.attrs, el.inner(doc))
		if len(lines) == 0 {
			return isolateBlocks(strings.Join(blocks, "")), true
		}
		return "\n" + strings.Join(lines, "\n") + "\n\n" + isolateBlocks(strings.Join(blocks, "")), true
	})
	return out, Stats{}
}

// listLines renders one list level. Nested lists are flattened into the
// lines that follow their parent item, each keeping its own marker style
// and numbering. Block content found inside items is returned separately.
func (s *state) listLines(name, rawAttrs, inner string) ([]string, []string) {
	ordered := name == "ol"
	index := 1
	if ordered {
		if start, err := strconv.Atoi(strings.TrimSpace(parseAttrs(rawAttrs)["start"])); err == nil && start > 0 {
			index = start
		}
	}

	var lines, blocks []string
	for _, item := range listItems(inner) {
		own, nested := splitNestedLists(item)

		text := collapseWhitespace(stripTags(breakTagRe.ReplaceAllString(s.formatInline(own), " ")))
		text, itemBlocks := splitBlocks(text)
		text = strings.TrimSpace(text)
		blocks = append(blocks, itemBlocks...)

		if text != "" {
			marker := "-"
			if ordered {
				marker = strconv.Itoa(index) + "."
				index++
			}
			lines = append(lines, marker+" "+text)
		}

		for _, child := range nested {
			childLines, childBlocks := s.listLines(child.name, child.attrs, child.body)
			lines = append(lines, childLines...)
			blocks = append(blocks, childBlocks...)
		}
	}
	return lines, blocks
}

type nestedList struct {
	name  string
	attrs string
	body  string
}

// splitNestedLists removes top-level ul/ol elements from an item body.
func splitNestedLists(body string) (string, []nestedList) {
	found := childElements(body, listOpen)
	if len(found) == 0 {
		return body, nil
	}

	var sb strings.Builder
	nested := make([]nestedList, 0, len(found))
	last := 0
	for _, el := range found {
		sb.WriteString(body[last:el.start])
		sb.WriteString(" ")
		nested = append(nested, nestedList{name: el.name, attrs: el.attrs, body: el.inner(body)})
		last = el.end
	}
	sb.WriteString(body[last:])
	return sb.String(), nested
}
