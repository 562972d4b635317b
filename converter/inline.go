package converter

import (
	"regexp"
	"strings"
)

var (
	inlineCodeRe = regexp.MustCompile(`(?is)<code(?:\s[^>]*)?>(.*?)</code\s*>`)
	imageRe      = regexp.MustCompile(`(?i)<img(\s[^>]*)?>`)
	anchorRe     = regexp.MustCompile(`(?is)<a(\s[^>]*)?>(.*?)</a\s*>`)
	strongRe     = regexp.MustCompile(`(?is)<(?:strong|b)(?:\s[^>]*)?>(.*?)</(?:strong|b)\s*>`)
	emRe         = regexp.MustCompile(`(?is)<(?:em|i)(?:\s[^>]*)?>(.*?)</(?:em|i)\s*>`)
	strikeRe     = regexp.MustCompile(`(?is)<(?:del|s|strike)(?:\s[^>]*)?>(.*?)</(?:del|s|strike)\s*>`)
	breakTagRe   = regexp.MustCompile(`(?i)<br\s*/?>`)
	schemeRe     = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.-]*:`)
	backtickRun  = regexp.MustCompile("`+")

	zeroWidth = strings.NewReplacer("\u200b", "", "\u200c", "", "\u200d", "", "\ufeff", "")
)

func (s *state) convertInlineStage(doc string) (string, Stats) {
	return s.formatInline(doc), Stats{}
}

func (s *state) convertInlineCode(doc string) (string, Stats) {
	return s.inlineCode(doc), Stats{}
}

// formatInline rewrites inline HTML (code, images, links, emphasis) into
// Markdown. Code, images and links are parked; emphasis markers stay inline.
func (s *state) formatInline(html string) string {
	out := s.inlineCode(html)
	out = s.images(out)
	out = s.links(out)
	return formatEmphasis(out)
}

func (s *state) inlineCode(html string) string {
	return inlineCodeRe.ReplaceAllStringFunc(html, func(match string) string {
		inner := inlineCodeRe.FindStringSubmatch(match)[1]
		code := decodeEntities(stripTags(breakTagRe.ReplaceAllString(inner, " ")))
		code = strings.Join(strings.Fields(code), " ")
		if code == "" {
			return ""
		}
		return s.park(codeSpan(code))
	})
}

func codeSpan(code string) string {
	longest := 0
	for _, run := range backtickRun.FindAllString(code, -1) {
		if len(run) > longest {
			longest = len(run)
		}
	}
	fence := strings.Repeat("`", longest+1)
	if strings.HasPrefix(code, "`") || strings.HasSuffix(code, "`") {
		return fence + " " + code + " " + fence
	}
	return fence + code + fence
}

func (s *state) images(html string) string {
	return imageRe.ReplaceAllStringFunc(html, func(match string) string {
		if s.err != nil {
			return match
		}
		attrs := parseAttrs(imageRe.FindStringSubmatch(match)[1])
		src := strings.TrimSpace(decodeEntities(attrs["src"]))
		if src == "" {
			return ""
		}
		alt := collapseWhitespace(decodeEntities(attrs["alt"]))
		title := collapseWhitespace(decodeEntities(attrs["title"]))

		hooked, handled, err := s.applyImageRenderHook(ImageRenderInput{Src: src, Alt: alt, Title: title, Attrs: attrs})
		if err != nil {
			s.fail(err)
			return match
		}
		if handled {
			return s.park(hooked.Markdown)
		}

		if s.config.ProcessImages && isRelativeURL(src) {
			src = s.config.AssetsPrefix + strings.TrimLeft(strings.TrimPrefix(src, "./"), "/")
		}
		return s.park("![" + escapeLinkText(alt) + "](" + formatDestination(src, title) + ")")
	})
}

func (s *state) links(html string) string {
	return anchorRe.ReplaceAllStringFunc(html, func(match string) string {
		if s.err != nil {
			return match
		}
		groups := anchorRe.FindStringSubmatch(match)
		attrs := parseAttrs(groups[1])
		text := formatEmphasis(groups[2])
		text = collapseWhitespace(zeroWidth.Replace(decodeText(stripTags(breakTagRe.ReplaceAllString(text, " ")))))

		href, hasHref := attrs["href"]
		href = strings.TrimSpace(decodeEntities(href))
		if !hasHref || href == "" {
			if text == "" {
				return ""
			}
			return s.park(text)
		}
		if text == "" {
			return ""
		}

		title := collapseWhitespace(decodeEntities(attrs["title"]))
		hooked, handled, err := s.applyLinkRenderHook(LinkRenderInput{Href: href, Title: title, Text: text, Attrs: attrs})
		if err != nil {
			s.fail(err)
			return match
		}
		if handled {
			if hooked.TextOnly {
				return s.park(text)
			}
			href, title = hooked.Href, hooked.Title
		}

		return s.park("[" + escapeLinkText(text) + "](" + formatDestination(href, title) + ")")
	})
}

func formatEmphasis(html string) string {
	out := html
	for _, pass := range []struct {
		re     *regexp.Regexp
		marker string
	}{
		{strongRe, "**"},
		{emRe, "*"},
		{strikeRe, "~~"},
	} {
		marker := pass.marker
		re := pass.re
		out = re.ReplaceAllStringFunc(out, func(match string) string {
			return wrapEmphasis(re.FindStringSubmatch(match)[1], marker)
		})
	}
	return out
}

// wrapEmphasis keeps surrounding whitespace outside the markers so the
// delimiters stay flanking.
func wrapEmphasis(inner, marker string) string {
	trimmed := strings.TrimSpace(inner)
	if stripTags(trimmed) == "" && !tokenRe.MatchString(trimmed) {
		return inner
	}
	lead := inner[:strings.Index(inner, trimmed)]
	trail := inner[len(lead)+len(trimmed):]
	return lead + marker + trimmed + marker + trail
}

func isRelativeURL(src string) bool {
	if strings.HasPrefix(src, "//") || strings.HasPrefix(src, "#") {
		return false
	}
	return !schemeRe.MatchString(src)
}

func escapeLinkText(text string) string {
	text = strings.ReplaceAll(text, "[", `\[`)
	return strings.ReplaceAll(text, "]", `\]`)
}

func formatDestination(dest, title string) string {
	dest = strings.ReplaceAll(dest, " ", "%20")
	dest = strings.ReplaceAll(dest, "(", "%28")
	dest = strings.ReplaceAll(dest, ")", "%29")
	if title == "" {
		return dest
	}
	return dest + ` "` + strings.ReplaceAll(title, `"`, `\"`) + `"`
}
