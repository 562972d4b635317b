package converter

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	tabHeaderSelector = `[role="tab"], .tab-header, .nav-tab`
	tabPaneSelector   = `.tab-pane, [role="tabpanel"]`
	tabContentClass   = `.tab-content`

	// TabImports is prepended to documents that use Tabs when AddTabImports is set.
	TabImports = "import Tabs from '@theme/Tabs';\nimport TabItem from '@theme/TabItem';"
)

var (
	tabContainerOpen = openTagPattern("div")

	tabHeaderMarkRe = regexp.MustCompile(`(?i)role\s*=\s*["']?tab(?:["'\s/>]|$)|tab-header|nav-tab`)
	tabPaneMarkRe   = regexp.MustCompile(`(?i)tab-pane|tabpanel|tab-content`)
)

// markOffsets lists match offsets in ascending order.
type markOffsets []int

func indexMarks(doc string, re *regexp.Regexp) markOffsets {
	locs := re.FindAllStringIndex(doc, -1)
	out := make(markOffsets, len(locs))
	for i, loc := range locs {
		out[i] = loc[0]
	}
	return out
}

// within reports whether a mark starts in [start, end).
func (m markOffsets) within(start, end int) bool {
	return m.count(start, end) > 0
}

func (m markOffsets) count(start, end int) int {
	return sort.SearchInts(m, end) - sort.SearchInts(m, start)
}

func (s *state) convertTabGroups(doc string) (string, Stats) {
	var stats Stats
	headerMarks := indexMarks(doc, tabHeaderMarkRe)
	paneMarks := indexMarks(doc, tabPaneMarkRe)
	sc := newScanner(doc)

	out := sc.rewrite(tabContainerOpen, func(el element) (string, bool) {
		if !strings.Contains(strings.ToLower(el.attrs), "tab") {
			return "", false
		}
		// A container needs a header and a pane inside it before it is worth parsing.
		if !headerMarks.within(el.start, el.end) || !paneMarks.within(el.start, el.end) {
			return "", false
		}
		if i := strings.IndexByte(doc[el.openEnd:el.closeStart], '<'); i >= 0 {
			if child, ok := sc.at(el.openEnd+i, tabContainerOpen); ok && wrapsTabs(el, child, headerMarks, paneMarks) {
				return "", false
			}
		}
		page, err := goquery.NewDocumentFromReader(strings.NewReader(el.outer(doc)))
		if err != nil {
			return "", false
		}
		root := page.Find("body").Children().First()
		if !isTabContainer(root) || delegatesTabs(root) {
			return "", false
		}

		md, delta, ok := s.tabGroup(root)
		if !ok {
			return "", false
		}
		stats = stats.add(delta)
		return md, true
	})
	return out, stats
}

// wrapsTabs reports whether child, the leading child div of el, holds a
// pane and every header mark of el. The child is then converted on its own.
func wrapsTabs(el, child element, headerMarks, paneMarks markOffsets) bool {
	if child.end > el.closeStart {
		return false
	}
	if !strings.Contains(strings.ToLower(parseAttrs(child.attrs)["class"]), "tab") {
		return false
	}
	return paneMarks.within(child.start, child.end) &&
		headerMarks.count(el.start, el.end) == headerMarks.count(child.start, child.end)
}

// isTabContainer reports whether sel is a tab container: a div whose class
// mentions tabs and which holds panes, or one exposing ARIA tab roles.
func isTabContainer(sel *goquery.Selection) bool {
	if sel.Length() == 0 || goquery.NodeName(sel) != "div" {
		return false
	}
	class, _ := sel.Attr("class")
	if strings.Contains(strings.ToLower(class), "tab") && sel.Find(tabContentClass+", "+tabPaneSelector).Length() > 0 {
		return true
	}
	return sel.Find(`[role="tab"]`).Length() > 0 && sel.Find(tabPaneSelector+", "+tabContentClass).Length() > 0
}

// delegatesTabs reports whether a single child container already holds every
// header of sel, in which case the child is converted instead.
func delegatesTabs(sel *goquery.Selection) bool {
	headers := sel.Find(tabHeaderSelector).Length()
	delegated := false
	sel.Children().EachWithBreak(func(_ int, child *goquery.Selection) bool {
		if isTabContainer(child) && child.Find(tabHeaderSelector).Length() == headers {
			delegated = true
			return false
		}
		return true
	})
	return delegated
}

func (s *state) tabGroup(root *goquery.Selection) (string, Stats, bool) {
	headers := ownedBy(root, root.Find(tabHeaderSelector))
	if headers.Length() == 0 {
		return "", Stats{}, false
	}
	panes := ownedBy(root, root.Find(tabPaneSelector))
	if panes.Length() == 0 {
		panes = ownedBy(root, root.Find(tabContentClass))
	}

	var stats Stats
	var sb strings.Builder
	sb.WriteString("<Tabs>\n")
	headers.Each(func(i int, header *goquery.Selection) {
		label := collapseWhitespace(header.Text())
		if label == "" {
			label = "Tab " + strconv.Itoa(i+1)
		}

		body := ""
		if i < panes.Length() {
			inner, err := panes.Eq(i).Html()
			if err == nil {
				var delta Stats
				body, delta = s.convertFragment(inner)
				stats = stats.add(delta)
			}
		} else {
			s.addWarning(WarningMissingTabPane, "tab", fmt.Sprintf("no content pane for tab %q", label))
		}

		fmt.Fprintf(&sb, "<TabItem value=\"tab%d\" label=\"%s\">\n\n", i, escapeLabel(label))
		if body != "" {
			sb.WriteString(body)
			sb.WriteString("\n\n")
		}
		sb.WriteString("</TabItem>\n")
	})
	sb.WriteString("</Tabs>")

	s.tabsUsed = true
	return s.parkBlock(sb.String()), stats, true
}

// ownedBy drops matches that sit inside a nested pane of root, so headers and
// panes of inner tab groups stay with their own group.
func ownedBy(root, matches *goquery.Selection) *goquery.Selection {
	return matches.FilterFunction(func(_ int, sel *goquery.Selection) bool {
		return sel.ParentsUntilSelection(root).Filter(tabPaneSelector).Length() == 0
	})
}

func escapeLabel(label string) string {
	return strings.ReplaceAll(label, `"`, "&quot;")
}
