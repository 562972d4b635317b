package converter

import (
	"regexp"
	"strings"
	"sync"
)

// element is a balanced HTML element located inside a working document.
type element struct {
	name       string
	attrs      string
	start      int // '<' of the opening tag
	openEnd    int // just past the opening tag
	closeStart int // '<' of the matching closing tag
	end        int // just past the closing tag
}

func (e element) inner(doc string) string {
	return doc[e.openEnd:e.closeStart]
}

func (e element) outer(doc string) string {
	return doc[e.start:e.end]
}

var (
	attrPattern = regexp.MustCompile(`([A-Za-z_:@][-A-Za-z0-9_:.@]*)(?:\s*=\s*(?:"([^"]*)"?|'([^']*)'?|([^\s"'=<>` + "`" + `]+)))?`)
	anyTagRe    = regexp.MustCompile(`<[A-Za-z/!][^>]*>`)

	tokenPatterns sync.Map
)

// openTagPattern compiles a matcher for opening tags of the given names.
// Group 1 captures the tag name and group 2 the raw attribute text.
func openTagPattern(names ...string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)<(` + strings.Join(names, "|") + `)(\s[^>]*)?>`)
}

// tagTokenPattern matches both opening and closing tags of a single element name.
func tagTokenPattern(name string) *regexp.Regexp {
	if cached, ok := tokenPatterns.Load(name); ok {
		return cached.(*regexp.Regexp)
	}
	re := regexp.MustCompile(`(?i)<(/?)` + regexp.QuoteMeta(name) + `(?:\s[^>]*)?>`)
	actual, _ := tokenPatterns.LoadOrStore(name, re)
	return actual.(*regexp.Regexp)
}

// scanner pairs opening and closing tags in one document. Pairs for an
// element name are computed once, on first use, in a single stack pass.
type scanner struct {
	doc   string
	pairs map[string]map[int]tagPair
}

// tagPair locates the closing tag matched to an opening tag.
type tagPair struct {
	closeStart int
	end        int
}

func newScanner(doc string) *scanner {
	return &scanner{doc: doc, pairs: map[string]map[int]tagPair{}}
}

// pairsFor maps the offset of every paired opening tag of name to its
// closing tag. Self-closing tags are ignored and stray closing tags with
// nothing open are dropped.
func (sc *scanner) pairsFor(name string) map[int]tagPair {
	if pairs, ok := sc.pairs[name]; ok {
		return pairs
	}
	pairs := map[int]tagPair{}
	var open []int
	for _, loc := range tagTokenPattern(name).FindAllStringSubmatchIndex(sc.doc, -1) {
		if loc[3] > loc[2] {
			if n := len(open); n > 0 {
				pairs[open[n-1]] = tagPair{closeStart: loc[0], end: loc[1]}
				open = open[:n-1]
			}
			continue
		}
		if !strings.HasSuffix(sc.doc[loc[0]:loc[1]], "/>") {
			open = append(open, loc[0])
		}
	}
	sc.pairs[name] = pairs
	return pairs
}

// next returns the first element at or after from whose opening tag
// matches open and which has a closing partner. Opening tags without a
// partner are skipped.
func (sc *scanner) next(from int, open *regexp.Regexp) (element, bool) {
	for from < len(sc.doc) {
		loc := open.FindStringSubmatchIndex(sc.doc[from:])
		if loc == nil {
			return element{}, false
		}
		el, ok := sc.pair(from, loc)
		if ok {
			return el, true
		}
		from = el.openEnd
	}
	return element{}, false
}

// at returns the element whose opening tag matches open and starts exactly at pos.
func (sc *scanner) at(pos int, open *regexp.Regexp) (element, bool) {
	end := strings.IndexByte(sc.doc[pos:], '>')
	if end < 0 {
		return element{}, false
	}
	loc := open.FindStringSubmatchIndex(sc.doc[pos : pos+end+1])
	if loc == nil || loc[0] != 0 || loc[1] != end+1 {
		return element{}, false
	}
	return sc.pair(pos, loc)
}

// pair builds the element for an opening tag matched at base and looks up
// its closing tag. openEnd is always set so callers can resume after it.
func (sc *scanner) pair(base int, loc []int) (element, bool) {
	doc := sc.doc
	el := element{
		name:    strings.ToLower(doc[base+loc[2] : base+loc[3]]),
		start:   base + loc[0],
		openEnd: base + loc[1],
	}
	if loc[4] >= 0 {
		el.attrs = doc[base+loc[4] : base+loc[5]]
	}
	if strings.HasSuffix(strings.TrimSpace(el.attrs), "/") {
		return el, false
	}

	pair, ok := sc.pairsFor(el.name)[el.start]
	if !ok {
		return el, false
	}
	el.closeStart = pair.closeStart
	el.end = pair.end
	return el, true
}

// nextElement returns the first element at or after from whose opening tag
// matches open and whose closing tag can be paired by depth counting.
// Opening tags without a partner are skipped.
func nextElement(doc string, from int, open *regexp.Regexp) (element, bool) {
	return newScanner(doc).next(from, open)
}

// rewriteElements replaces matched elements outermost first. When replace
// reports false the element is kept and scanning continues inside it.
func rewriteElements(doc string, open *regexp.Regexp, replace func(el element) (string, bool)) string {
	return newScanner(doc).rewrite(open, replace)
}

func (sc *scanner) rewrite(open *regexp.Regexp, replace func(el element) (string, bool)) string {
	var sb strings.Builder
	doc := sc.doc
	last, from := 0, 0
	changed := false

	for {
		el, ok := sc.next(from, open)
		if !ok {
			break
		}
		out, replaced := replace(el)
		if !replaced {
			from = el.openEnd
			continue
		}
		sb.WriteString(doc[last:el.start])
		sb.WriteString(out)
		last, from = el.end, el.end
		changed = true
	}

	if !changed {
		return doc
	}
	sb.WriteString(doc[last:])
	return sb.String()
}

// childElements lists the top-level elements inside fragment matching open.
func childElements(fragment string, open *regexp.Regexp) []element {
	var out []element
	sc := newScanner(fragment)
	from := 0
	for {
		el, ok := sc.next(from, open)
		if !ok {
			return out
		}
		out = append(out, el)
		from = el.end
	}
}

var listTokenRe = regexp.MustCompile(`(?i)<(/?)(li|ul|ol)(?:\s[^>]*)?>`)

// listItems splits a list body into item bodies. An <li> may omit its
// closing tag: the next sibling <li> or the end of the list ends it. Text
// sitting outside any item becomes an item of its own.
func listItems(inner string) []string {
	var items []string
	depth := 0
	itemStart := -1
	last := 0

	flushStray := func(upto int) {
		if stray := inner[last:upto]; strings.TrimSpace(stripTags(stray)) != "" {
			items = append(items, stray)
		}
	}

	for _, loc := range listTokenRe.FindAllStringSubmatchIndex(inner, -1) {
		closing := loc[3] > loc[2]
		name := strings.ToLower(inner[loc[4]:loc[5]])

		if name != "li" {
			if closing {
				if depth > 0 {
					depth--
				}
			} else if !strings.HasSuffix(inner[loc[0]:loc[1]], "/>") {
				depth++
			}
			continue
		}
		if depth > 0 {
			continue
		}

		if closing {
			if itemStart >= 0 {
				items = append(items, inner[itemStart:loc[0]])
				itemStart = -1
			} else {
				flushStray(loc[0])
			}
			last = loc[1]
			continue
		}
		if itemStart >= 0 {
			items = append(items, inner[itemStart:loc[0]])
		} else {
			flushStray(loc[0])
		}
		itemStart = loc[1]
	}

	if itemStart >= 0 {
		items = append(items, inner[itemStart:])
	} else {
		flushStray(len(inner))
	}
	return items
}

// parseAttrs reads attribute text tolerantly. Names are lower-cased and the
// first occurrence of a name wins. Values are returned undecoded.
func parseAttrs(raw string) map[string]string {
	attrs := map[string]string{}
	for _, m := range attrPattern.FindAllStringSubmatch(raw, -1) {
		name := strings.ToLower(m[1])
		if _, seen := attrs[name]; seen {
			continue
		}
		switch {
		case m[2] != "":
			attrs[name] = m[2]
		case m[3] != "":
			attrs[name] = m[3]
		default:
			attrs[name] = m[4]
		}
	}
	return attrs
}

func classTokens(attrs map[string]string) []string {
	return strings.Fields(strings.ToLower(attrs["class"]))
}

func hasClass(attrs map[string]string, names ...string) bool {
	for _, token := range classTokens(attrs) {
		for _, name := range names {
			if token == name {
				return true
			}
		}
	}
	return false
}

func stripTags(s string) string {
	return anyTagRe.ReplaceAllString(s, "")
}

func countTags(s string) int {
	return len(anyTagRe.FindAllStringIndex(s, -1))
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
