package converter

import (
	"regexp"
	"strings"
)

var (
	preOpen  = openTagPattern("pre")
	codeOpen = openTagPattern("code")

	languageClassRe = regexp.MustCompile(`(?i)(?:^|\s)(?:language|lang)-([A-Za-z0-9_+#.-]+)`)
	fenceRunRe      = regexp.MustCompile("`{3,}")
)

func (s *state) convertCodeBlocks(doc string) (string, Stats) {
	out := rewriteElements(doc, preOpen, func(el element) (string, bool) {
		return s.codeBlock(el, doc), true
	})
	return out, Stats{}
}

func (s *state) codeBlock(pre element, doc string) string {
	body := pre.inner(doc)
	language := ""
	if s.config.ConvertCodeBlocks {
		language = detectLanguage(parseAttrs(pre.attrs)["class"])
	}
	if code, ok := nextElement(body, 0, codeOpen); ok {
		if s.config.ConvertCodeBlocks {
			if fromCode := detectLanguage(parseAttrs(code.attrs)["class"]); fromCode != "" {
				language = fromCode
			}
		}
		body = code.inner(body)
	}
	language = s.mapLanguage(language)

	code := breakTagRe.ReplaceAllString(body, "\n")
	code = decodeEntities(stripTags(code))
	code = trimBlankLines(normalizeNewlines(code))

	fence := codeFence(code)
	if code == "" {
		return s.parkBlock(fence + language + "\n" + fence)
	}
	return s.parkBlock(fence + language + "\n" + code + "\n" + fence)
}

func detectLanguage(class string) string {
	m := languageClassRe.FindStringSubmatch(class)
	if m == nil {
		return ""
	}
	return strings.ToLower(m[1])
}

func (s *state) mapLanguage(language string) string {
	if language == "" {
		return ""
	}
	if mapped, ok := s.config.LanguageMap[language]; ok {
		return mapped
	}
	return language
}

// codeFence returns a backtick fence longer than any run inside code.
func codeFence(code string) string {
	longest := 2
	for _, run := range fenceRunRe.FindAllString(code, -1) {
		if len(run) > longest {
			longest = len(run)
		}
	}
	return strings.Repeat("`", longest+1)
}

// trimBlankLines drops leading and trailing blank lines and keeps the
// indentation of the first content line.
func trimBlankLines(code string) string {
	lines := strings.Split(code, "\n")
	start, end := 0, len(lines)
	for start < end && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	for i := start; i < end; i++ {
		lines[i] = strings.TrimRight(lines[i], " \t")
	}
	return strings.Join(lines[start:end], "\n")
}
