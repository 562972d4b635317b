package converter

import (
	"regexp"
	"strings"
)

var (
	headingRe       = regexp.MustCompile(`(?is)<h([1-6])(?:\s[^>]*)?>(.*?)</h[1-6]\s*>`)
	headingAnchorRe = regexp.MustCompile(`(?is)<a\s[^>]*class\s*=\s*["'][^"']*(?:hash-link|anchor|headerlink)[^"']*["'][^>]*>.*?</a\s*>`)
	paragraphRe     = regexp.MustCompile(`(?is)<p(?:\s[^>]*)?>(.*?)</p\s*>`)
	paragraphTagRe  = regexp.MustCompile(`(?i)<(/?)p(?:\s[^>]*)?>`)
	ruleRe          = regexp.MustCompile(`(?i)<hr(?:\s[^>]*)?>`)
	blockCloseRe    = regexp.MustCompile(`(?i)</(?:p|div|section|article|main|header|figure|figcaption|aside|details|summary|dl|dt|dd|address)\s*>`)

	// paragraphBoundaryRe finds where a paragraph without </p> ends. Markdown
	// block lines count, since earlier stages have already emitted them.
	paragraphBoundaryRe = regexp.MustCompile(`(?i)<(?:p|div|section|article|main|header|footer|aside|figure|table|pre|blockquote|h[1-6]|ul|ol|dl|hr)[\s/>]|</(?:div|section|article|main|header|footer|aside|figure|blockquote|li|td|th|body)\s*>|\n[ \t]*\n|\n(?:[-*+]|\d+\.|#{1,6}) `)
	leadingRuleRe       = regexp.MustCompile(`^-{3,}[ \t]*(?:\n|$)`)
)

func (s *state) convertHeadings(doc string) (string, Stats) {
	out := headingRe.ReplaceAllStringFunc(doc, func(match string) string {
		groups := headingRe.FindStringSubmatch(match)
		text := collapseWhitespace(stripTags(headingAnchorRe.ReplaceAllString(groups[2], "")))
		text, blocks := splitBlocks(text)
		text = strings.TrimSpace(text)
		if text == "" {
			return isolateBlocks(strings.Join(blocks, ""))
		}
		level := int(groups[1][0] - '0')
		return "\n" + strings.Repeat("#", level) + " " + text + "\n\n" + isolateBlocks(strings.Join(blocks, ""))
	})
	return out, Stats{}
}

func (s *state) convertParagraphs(doc string) (string, Stats) {
	out := paragraphRe.ReplaceAllStringFunc(closeParagraphs(doc), func(match string) string {
		content := collapseWhitespace(paragraphRe.FindStringSubmatch(match)[1])
		content = breakTagRe.ReplaceAllString(content, "\n")
		content = isolateBlocks(content)
		content = strings.TrimSpace(trimLineEdges(content))
		if content == "" {
			return ""
		}
		return "\n" + content + "\n\n"
	})
	return out, Stats{}
}

// closeParagraphs adds the closing tag of every <p> that omits it. Such a
// paragraph ends at the next paragraph or block boundary.
func closeParagraphs(doc string) string {
	tokens := paragraphTagRe.FindAllStringSubmatchIndex(doc, -1)
	var sb strings.Builder
	last := 0
	for i, loc := range tokens {
		if loc[3] > loc[2] {
			continue
		}
		if i+1 < len(tokens) && tokens[i+1][3] > tokens[i+1][2] {
			continue
		}
		end := len(doc)
		if b := paragraphBoundaryRe.FindStringIndex(doc[loc[1]:]); b != nil {
			end = loc[1] + b[0]
		}
		sb.WriteString(doc[last:end])
		sb.WriteString("</p>")
		last = end
	}
	if last == 0 {
		return doc
	}
	sb.WriteString(doc[last:])
	return sb.String()
}

// escapeLeadingRule keeps a document that starts with a dash line from
// being read as a frontmatter fence.
func escapeLeadingRule(markdown string) string {
	if leadingRuleRe.MatchString(markdown) {
		return `\` + markdown
	}
	return markdown
}

// convertBreaks handles line breaks, rules and the ends of block containers
// that survived the earlier stages.
func (s *state) convertBreaks(doc string) (string, Stats) {
	out := breakTagRe.ReplaceAllString(doc, "\n")
	out = ruleRe.ReplaceAllString(out, "\n\n* * *\n\n")
	out = blockCloseRe.ReplaceAllString(out, "\n")
	return out, Stats{}
}

func trimLineEdges(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return strings.Join(lines, "\n")
}
