package converter

import (
	"regexp"
	"strings"
)

var (
	commentRe = regexp.MustCompile(`(?s)<!--.*?-->`)
	cdataRe   = regexp.MustCompile(`(?s)<!\[CDATA\[.*?\]\]>`)

	// Elements whose content is never document text.
	opaqueElementRes = []*regexp.Regexp{
		regexp.MustCompile(`(?is)<script(?:\s[^>]*)?>.*?</script\s*>`),
		regexp.MustCompile(`(?is)<style(?:\s[^>]*)?>.*?</style\s*>`),
		regexp.MustCompile(`(?is)<noscript(?:\s[^>]*)?>.*?</noscript\s*>`),
		regexp.MustCompile(`(?is)<template(?:\s[^>]*)?>.*?</template\s*>`),
		regexp.MustCompile(`(?is)<head(?:\s[^>]*)?>.*?</head\s*>`),
	}
	strayOpaqueTagRe = regexp.MustCompile(`(?i)</?(?:script|style|noscript|template)(?:\s[^>]*)?>`)

	chromeOpen      = openTagPattern("nav", "footer")
	chromeClassOpen = openTagPattern("div", "aside", "section", "ul", "ol")
	chromeClassRe   = regexp.MustCompile(`(?i)sidebar|navigation|menu|breadcrumb`)
)

// Sanitize removes non-content markup from html: comments, scripts, styles,
// the document head, navigation, footers and elements whose class marks them
// as sidebars, menus or breadcrumbs.
func Sanitize(html string) string {
	out := commentRe.ReplaceAllString(html, "")
	out = cdataRe.ReplaceAllString(out, "")
	for _, re := range opaqueElementRes {
		out = re.ReplaceAllString(out, "")
	}
	out = strayOpaqueTagRe.ReplaceAllString(out, "")

	out = rewriteElements(out, chromeOpen, func(element) (string, bool) {
		return "", true
	})
	out = rewriteElements(out, chromeClassOpen, func(el element) (string, bool) {
		class := parseAttrs(el.attrs)["class"]
		if class == "" || !chromeClassRe.MatchString(class) {
			return "", false
		}
		return "", true
	})

	return out
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
