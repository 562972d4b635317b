package converter

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	xhtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// cellBreak marks an explicit line break inside a table cell until the cell
// text is final.
const cellBreak = "\x1c"

var (
	appTableOpen = openTagPattern("app-table")
	tableOpen    = openTagPattern("table")

	headerCellRe   = regexp.MustCompile(`(?i)<th(?:\s[^>]*)?>`)
	dataCellRe     = regexp.MustCompile(`(?i)<td(?:\s[^>]*)?>`)
	cellParagraphs = regexp.MustCompile(`(?is)<p(?:\s[^>]*)?>(.*?)</p\s*>`)
	payloadListRe  = regexp.MustCompile(`(?m)^\s*(?:[-*+]|(\d+)[.)])\s+(.*)$`)
)

func (s *state) convertAppTables(doc string) (string, Stats) {
	var stats Stats
	out := rewriteElements(doc, appTableOpen, func(el element) (string, bool) {
		stats.TablesFound++
		return s.convertAppTable(el, doc), true
	})
	return out, stats
}

func (s *state) convertTables(doc string) (string, Stats) {
	var stats Stats
	out := rewriteElements(doc, tableOpen, func(el element) (string, bool) {
		stats.TablesFound++
		return s.convertTableHTML(el.outer(doc)), true
	})
	return out, stats
}

// convertAppTable prefers the structured payload, then an embedded table,
// then bare header and data cells.
func (s *state) convertAppTable(el element, doc string) string {
	if payload, ok := parseAttrs(el.attrs)["pluginobject"]; ok && strings.TrimSpace(payload) != "" {
		rows, err := parseTablePayload(decodeEntities(payload))
		if err != nil {
			s.addWarning(WarningPayloadParse, "app-table", fmt.Sprintf("ignoring table payload: %v", err))
		} else if len(rows) > 0 {
			cells := make([][]string, 0, len(rows))
			for _, row := range rows {
				rendered := make([]string, 0, len(row))
				for _, value := range row {
					rendered = append(rendered, s.cellText(payloadCellHTML(value)))
				}
				cells = append(cells, rendered)
			}
			if md := renderTable(cells); md != "" {
				return s.parkBlock(md)
			}
			return ""
		}
	}

	inner := el.inner(doc)
	if table, ok := nextElement(inner, 0, tableOpen); ok {
		return s.convertTableHTML(table.outer(inner))
	}
	if headerCellRe.MatchString(inner) && dataCellRe.MatchString(inner) {
		return s.convertTableHTML("<table>" + inner + "</table>")
	}
	return ""
}

type tablePayload struct {
	Data struct {
		Contents [][]any `json:"contents"`
	} `json:"data"`
}

// parseTablePayload accepts {"data":{"contents":[[...]]}} or a bare array of rows.
func parseTablePayload(raw string) ([][]string, error) {
	raw = strings.TrimSpace(raw)
	var grid [][]any
	if strings.HasPrefix(raw, "[") {
		if err := json.Unmarshal([]byte(raw), &grid); err != nil {
			return nil, fmt.Errorf("decode rows: %w", err)
		}
	} else {
		var payload tablePayload
		if err := json.Unmarshal([]byte(raw), &payload); err != nil {
			return nil, fmt.Errorf("decode payload: %w", err)
		}
		if payload.Data.Contents == nil {
			return nil, errors.New("payload has no data.contents")
		}
		grid = payload.Data.Contents
	}

	rows := make([][]string, 0, len(grid))
	for _, row := range grid {
		if len(row) == 0 {
			continue
		}
		cells := make([]string, 0, len(row))
		for _, value := range row {
			cells = append(cells, payloadScalar(value))
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

func payloadScalar(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

// payloadCellHTML turns Markdown-style list lines inside a payload string
// into list markup so every source shape flattens the same way.
func payloadCellHTML(value string) string {
	value = normalizeNewlines(value)
	if !payloadListRe.MatchString(value) {
		return strings.ReplaceAll(value, "\n", "<br>")
	}

	var sb strings.Builder
	openList := ""
	closeList := func() {
		if openList != "" {
			sb.WriteString("</" + openList + ">")
			openList = ""
		}
	}
	for _, line := range strings.Split(value, "\n") {
		m := payloadListRe.FindStringSubmatch(line)
		if m == nil {
			closeList()
			if strings.TrimSpace(line) != "" {
				sb.WriteString(line + "<br>")
			}
			continue
		}
		kind := "ul"
		if m[1] != "" {
			kind = "ol"
		}
		if openList != kind {
			closeList()
			sb.WriteString("<" + kind + ">")
			openList = kind
		}
		sb.WriteString("<li>" + m[2] + "</li>")
	}
	closeList()
	return sb.String()
}

// convertTableHTML parses a single table into a grid and renders it as a
// pipe table. Rows of nested tables are not part of the outer grid.
func (s *state) convertTableHTML(tableHTML string) string {
	body := &xhtml.Node{Type: xhtml.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := xhtml.ParseFragment(strings.NewReader(tableHTML), body)
	if err != nil {
		s.addWarning(WarningPayloadParse, "table", fmt.Sprintf("failed to parse table: %v", err))
		return ""
	}

	var table *xhtml.Node
	for _, n := range nodes {
		if table = findElement(n, atom.Table); table != nil {
			break
		}
	}
	if table == nil {
		return ""
	}

	var grid [][]string
	for _, tr := range collectRows(table) {
		var cells []string
		for c := tr.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != xhtml.ElementNode || (c.DataAtom != atom.Th && c.DataAtom != atom.Td) {
				continue
			}
			cells = append(cells, s.cellText(renderChildren(c)))
		}
		if len(cells) > 0 {
			grid = append(grid, cells)
		}
	}

	md := renderTable(grid)
	if md == "" {
		return ""
	}
	return s.parkBlock(md)
}

func findElement(n *xhtml.Node, a atom.Atom) *xhtml.Node {
	if n.Type == xhtml.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}

func collectRows(table *xhtml.Node) []*xhtml.Node {
	var rows []*xhtml.Node
	var walk func(*xhtml.Node)
	walk = func(n *xhtml.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != xhtml.ElementNode {
				continue
			}
			switch c.DataAtom {
			case atom.Tr:
				rows = append(rows, c)
			case atom.Thead, atom.Tbody, atom.Tfoot:
				walk(c)
			}
		}
	}
	walk(table)
	return rows
}

func renderChildren(n *xhtml.Node) string {
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		_ = xhtml.Render(&buf, c)
	}
	return buf.String()
}

// cellText flattens cell HTML to a single line. Lists become "<br>• item"
// or "<br>N. item" runs, explicit breaks stay as "<br>" and pipes are escaped.
func (s *state) cellText(cellHTML string) string {
	html := rewriteElements(cellHTML, listOpen, func(el element) (string, bool) {
		return s.cellList(el.name, el.inner(cellHTML)), true
	})
	html = cellParagraphs.ReplaceAllString(html, "$1 ")
	html = s.formatInline(html)
	html = breakTagRe.ReplaceAllString(html, cellBreak)
	html = stripTags(html)

	text := s.restore(decodeText(html))
	text = collapseWhitespace(text)
	text = strings.ReplaceAll(text, " "+cellBreak, cellBreak)
	text = strings.ReplaceAll(text, cellBreak+" ", cellBreak)
	text = strings.ReplaceAll(text, "|", `\|`)
	return strings.ReplaceAll(text, cellBreak, "<br>")
}

func (s *state) cellList(name, inner string) string {
	var sb strings.Builder
	n := 1
	for _, item := range listItems(inner) {
		own, nested := splitNestedLists(item)
		text := collapseWhitespace(stripTags(s.formatInline(own)))
		if text != "" {
			if name == "ol" {
				sb.WriteString(cellBreak + strconv.Itoa(n) + ". " + text)
				n++
			} else {
				sb.WriteString(cellBreak + "• " + text)
			}
		}
		for _, child := range nested {
			sb.WriteString(s.cellList(child.name, child.body))
		}
	}
	return sb.String()
}

func renderTable(grid [][]string) string {
	if len(grid) == 0 {
		return ""
	}
	columns := 0
	for _, row := range grid {
		if len(row) > columns {
			columns = len(row)
		}
	}
	if columns == 0 {
		return ""
	}

	lines := make([]string, 0, len(grid)+1)
	lines = append(lines, tableRow(grid[0], columns))
	separator := make([]string, columns)
	for i := range separator {
		separator[i] = "---"
	}
	lines = append(lines, tableRow(separator, columns))
	for _, row := range grid[1:] {
		lines = append(lines, tableRow(row, columns))
	}
	return strings.Join(lines, "\n")
}

func tableRow(cells []string, columns int) string {
	padded := make([]string, columns)
	copy(padded, cells)
	return "| " + strings.Join(padded, " | ") + " |"
}
