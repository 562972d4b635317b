package converter

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// AdmonitionType is a Docusaurus admonition keyword.
type AdmonitionType string

const (
	AdmonitionNote    AdmonitionType = "note"
	AdmonitionTip     AdmonitionType = "tip"
	AdmonitionInfo    AdmonitionType = "info"
	AdmonitionWarning AdmonitionType = "warning"
	AdmonitionDanger  AdmonitionType = "danger"
)

var (
	calloutOpen    = openTagPattern("app-callout", "div")
	blockquoteOpen = openTagPattern("blockquote")

	classAttrRe       = regexp.MustCompile(`(?i)class\s*=\s*(?:"([^"]*)"|'([^']*)')`)
	emphasisTagRe     = regexp.MustCompile(`(?i)</?(?:strong|b|em|i)(?:\s[^>]*)?>`)
	calloutTypeTokens = []string{"success", "warning", "danger", "info", "note"}
)

// calloutRules map class tokens to admonition types. The first rule with a
// matching token wins.
var calloutRules = []struct {
	kind   AdmonitionType
	tokens []string
}{
	{AdmonitionTip, []string{"success", "fa-check-circle"}},
	{AdmonitionWarning, []string{"warning", "fa-exclamation-triangle"}},
	{AdmonitionDanger, []string{"danger", "fa-times-circle"}},
	{AdmonitionInfo, []string{"info", "fa-info-circle"}},
}

// quoteRules map keywords found in blockquote text to admonition types.
var quoteRules = []struct {
	kind     AdmonitionType
	keywords []string
}{
	{AdmonitionWarning, []string{"warning", "caution"}},
	{AdmonitionTip, []string{"tip", "pro tip"}},
	{AdmonitionDanger, []string{"danger", "error"}},
	{AdmonitionInfo, []string{"info", "information"}},
}

// ClassifyCallout picks an admonition type from the class tokens used
// anywhere inside a callout.
func ClassifyCallout(classTokens []string) AdmonitionType {
	present := make(map[string]struct{}, len(classTokens))
	for _, token := range classTokens {
		present[strings.ToLower(token)] = struct{}{}
	}
	for _, rule := range calloutRules {
		for _, token := range rule.tokens {
			if _, ok := present[token]; ok {
				return rule.kind
			}
		}
	}
	return AdmonitionNote
}

// ClassifyQuote picks an admonition type from blockquote text.
func ClassifyQuote(text string) AdmonitionType {
	lower := strings.ToLower(text)
	for _, rule := range quoteRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(lower, keyword) {
				return rule.kind
			}
		}
	}
	return AdmonitionNote
}

func (s *state) convertCallouts(doc string) (string, Stats) {
	var stats Stats
	out := rewriteElements(doc, calloutOpen, func(el element) (string, bool) {
		if el.name == "div" && !isCalloutDiv(parseAttrs(el.attrs)) {
			return "", false
		}
		md, delta := s.callout(el, doc)
		stats = stats.add(delta)
		return md, true
	})
	return out, stats
}

func isCalloutDiv(attrs map[string]string) bool {
	return hasClass(attrs, "callout") && hasClass(attrs, calloutTypeTokens...)
}

type calloutPayload struct {
	Title string `json:"title"`
	Data  struct {
		Title string `json:"title"`
	} `json:"data"`
}

func (s *state) callout(el element, doc string) (string, Stats) {
	outer := el.outer(doc)
	kind := ClassifyCallout(collectClassTokens(outer))

	title := ""
	if payload, ok := parseAttrs(el.attrs)["pluginobject"]; ok && strings.TrimSpace(payload) != "" {
		var decoded calloutPayload
		if err := json.Unmarshal([]byte(decodeEntities(payload)), &decoded); err != nil {
			s.addWarning(WarningPayloadParse, el.name, fmt.Sprintf("ignoring callout payload: %v", err))
		} else if decoded.Title != "" {
			title = decoded.Title
		} else {
			title = decoded.Data.Title
		}
	}

	body := el.inner(doc)
	if page, err := goquery.NewDocumentFromReader(strings.NewReader(body)); err == nil {
		if title == "" {
			title = page.Find(".callout-title").First().Text()
		}
		body = calloutBody(page, body)
	}
	title = collapseWhitespace(title)

	md, stats := s.convertFragment(body)
	return s.admonition(kind, title, md), stats
}

// calloutBody prefers the innermost .callout-text element and otherwise
// drops the title and icon from the callout content.
func calloutBody(page *goquery.Document, fallback string) string {
	texts := page.Find(".callout-text").FilterFunction(func(_ int, sel *goquery.Selection) bool {
		return sel.Find(".callout-text").Length() == 0
	})
	if texts.Length() > 0 {
		if inner, err := texts.First().Html(); err == nil {
			return inner
		}
	}

	page.Find(".callout-title, .callout-icon").Remove()
	page.Find("i").FilterFunction(func(_ int, sel *goquery.Selection) bool {
		class, _ := sel.Attr("class")
		return strings.Contains(class, "fa-")
	}).Remove()
	inner, err := page.Find("body").Html()
	if err != nil {
		return fallback
	}
	return inner
}

func collectClassTokens(html string) []string {
	var tokens []string
	for _, m := range classAttrRe.FindAllStringSubmatch(html, -1) {
		tokens = append(tokens, strings.Fields(strings.ToLower(m[1]+" "+m[2]))...)
	}
	return tokens
}

func (s *state) convertBlockquotes(doc string) (string, Stats) {
	var stats Stats
	out := rewriteElements(doc, blockquoteOpen, func(el element) (string, bool) {
		inner := el.inner(doc)
		kind := ClassifyQuote(collapseWhitespace(decodeText(stripTags(inner))))
		md, delta := s.convertFragment(emphasisTagRe.ReplaceAllString(inner, ""))
		stats = stats.add(delta)
		return s.admonition(kind, "", md), true
	})
	return out, stats
}

// admonition renders a Docusaurus admonition, or a plain quote when
// admonitions are disabled.
func (s *state) admonition(kind AdmonitionType, title, body string) string {
	if !s.config.ConvertAdmonitions {
		content := s.restore(body)
		if title != "" {
			content = strings.TrimSpace(title + "\n\n" + content)
		}
		if content == "" {
			return ""
		}
		return s.parkBlock(quoteLines(content))
	}

	header := ":::" + string(kind)
	if title != "" {
		header += " " + title
	}
	if body == "" {
		return s.parkBlock(header + "\n\n:::")
	}
	return s.parkBlock(header + "\n\n" + body + "\n\n:::")
}

func quoteLines(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			lines[i] = ">"
			continue
		}
		lines[i] = "> " + line
	}
	return strings.Join(lines, "\n")
}
