package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rgonek/html-docusaurus-converter/converter"
)

const untitled = "Untitled"

// contentSelectors are tried in order; the first non-empty match is the
// page's main content.
var contentSelectors = []string{
	"main",
	`[role="main"]`,
	".main-content",
	".content",
	".post-content",
	".entry-content",
	".article-content",
	".documentation",
	".docs",
	".markdown-body",
	"article",
	".container .row .col",
	"#content",
	"#main",
}

// boilerplateSelectors are removed from <body> when no content selector matches.
var boilerplateSelectors = []string{
	"nav", "header", "footer",
	".navigation", ".navbar", ".sidebar", ".menu", ".breadcrumb",
	".ad", ".advertisement", ".social", ".share", ".related", ".comments",
	"script", "style", "noscript",
}

var trackingTagRe = regexp.MustCompile(`(?i)<[^>]*(?:google-analytics|gtag|facebook|twitter|linkedin)[^>]*>`)

// Content isolates the main content of an HTML document and returns it with
// the document title ("Untitled" when absent).
func Content(document string) (string, string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(document))
	if err != nil {
		return "", "", fmt.Errorf("parsing HTML: %w", err)
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = untitled
	}

	mainHTML := ""
	for _, selector := range contentSelectors {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}
		inner, err := sel.Html()
		if err == nil && strings.TrimSpace(inner) != "" {
			mainHTML = inner
			break
		}
	}

	if mainHTML == "" {
		body := doc.Find("body").First()
		for _, selector := range boilerplateSelectors {
			body.Find(selector).Remove()
		}
		if inner, err := body.Html(); err == nil {
			mainHTML = inner
		}
	}

	mainHTML = strings.TrimSpace(trackingTagRe.ReplaceAllString(converter.Sanitize(mainHTML), ""))
	if mainHTML == "" {
		return "", title, ErrNoContent
	}
	return mainHTML, title, nil
}
