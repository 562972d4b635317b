package mdcheck

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/yuin/goldmark/ast"
	extast "github.com/yuin/goldmark/extension/ast"
)

var (
	admonitionOpenRe = regexp.MustCompile(`^:::([A-Za-z]+)(?:\s.*)?$`)
	fenceOpenRe      = regexp.MustCompile("^(`{3,}|~{3,})")

	knownAdmonitions = map[string]bool{
		"note":    true,
		"tip":     true,
		"info":    true,
		"warning": true,
		"danger":  true,
		"caution": true,
	}
)

// walk collects headings, tables and fenced code from the parsed body.
func (r *reporter) walk(root ast.Node, src []byte, offset int) {
	lastLevel := 0
	_ = ast.Walk(root, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch typed := node.(type) {
		case *ast.Heading:
			line := 0
			if typed.Lines().Len() > 0 {
				line = offset + lineAt(src, typed.Lines().At(0).Start)
			}
			if lastLevel > 0 && typed.Level > lastLevel+1 {
				r.addIssue(IssueHeadingLevelSkipped, line, fmt.Sprintf("heading level jumps from %d to %d", lastLevel, typed.Level))
			}
			lastLevel = typed.Level
			r.report.Headings = append(r.report.Headings, Heading{
				Level: typed.Level,
				Text:  strings.TrimSpace(string(typed.Text(src))),
				Line:  line,
			})
			return ast.WalkSkipChildren, nil
		case *ast.FencedCodeBlock:
			block := CodeBlock{Lines: typed.Lines().Len()}
			if typed.Info != nil {
				block.Language = string(typed.Language(src))
			}
			if block.Lines > 0 {
				block.Line = offset + lineAt(src, typed.Lines().At(0).Start) - 1
			}
			r.report.CodeBlocks = append(r.report.CodeBlocks, block)
			return ast.WalkSkipChildren, nil
		case *extast.Table:
			var table Table
			for row := typed.FirstChild(); row != nil; row = row.NextSibling() {
				switch row.(type) {
				case *extast.TableHeader:
					table.Columns = row.ChildCount()
				case *extast.TableRow:
					table.Rows++
				}
			}
			r.report.Tables = append(r.report.Tables, table)
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
}

type tabFrame struct {
	line     int
	itemLine int
}

// scanDirectives checks admonition fences and Tabs/TabItem nesting line by
// line. Lines inside fenced code are ignored.
func (r *reporter) scanDirectives(body string, offset int) {
	var admonitions []int
	var tabs []tabFrame
	fence, fenceLine := "", 0

	for i, raw := range strings.Split(body, "\n") {
		line := offset + i + 1
		trimmed := strings.TrimSpace(raw)

		if fence != "" {
			if strings.HasPrefix(trimmed, fence) && strings.Trim(trimmed, fence[:1]) == "" {
				fence = ""
			}
			continue
		}
		if m := fenceOpenRe.FindString(trimmed); m != "" {
			fence, fenceLine = m, line
			continue
		}

		switch {
		case trimmed == ":::":
			if len(admonitions) == 0 {
				r.addIssue(IssueUnexpectedClose, line, `":::" without an open admonition`)
				continue
			}
			admonitions = admonitions[:len(admonitions)-1]
		case admonitionOpenRe.MatchString(trimmed):
			kind := strings.ToLower(admonitionOpenRe.FindStringSubmatch(trimmed)[1])
			if !knownAdmonitions[kind] {
				r.addIssue(IssueUnknownAdmonition, line, fmt.Sprintf("unknown admonition type %q", kind))
			}
			admonitions = append(admonitions, line)
			r.report.Admonitions = append(r.report.Admonitions, kind)
		case trimmed == "<Tabs>":
			tabs = append(tabs, tabFrame{line: line})
			r.report.TabGroups++
		case trimmed == "</Tabs>":
			if len(tabs) == 0 {
				r.addIssue(IssueUnbalancedTabs, line, "</Tabs> without an open <Tabs>")
				continue
			}
			if top := tabs[len(tabs)-1]; top.itemLine != 0 {
				r.addIssue(IssueUnbalancedTabs, top.itemLine, "<TabItem> is not closed before </Tabs>")
			}
			tabs = tabs[:len(tabs)-1]
		case strings.HasPrefix(trimmed, "<TabItem"):
			if len(tabs) == 0 {
				r.addIssue(IssueUnbalancedTabs, line, "<TabItem> outside <Tabs>")
				continue
			}
			top := &tabs[len(tabs)-1]
			if top.itemLine != 0 {
				r.addIssue(IssueUnbalancedTabs, top.itemLine, "<TabItem> is not closed before the next one")
			}
			top.itemLine = line
		case trimmed == "</TabItem>":
			if len(tabs) == 0 || tabs[len(tabs)-1].itemLine == 0 {
				r.addIssue(IssueUnbalancedTabs, line, "</TabItem> without an open <TabItem>")
				continue
			}
			tabs[len(tabs)-1].itemLine = 0
		}
	}

	if fence != "" {
		r.addIssue(IssueUnclosedFence, fenceLine, "code fence is never closed")
	}
	for _, open := range admonitions {
		r.addIssue(IssueUnclosedAdmonition, open, "admonition is never closed")
	}
	for _, frame := range tabs {
		r.addIssue(IssueUnbalancedTabs, frame.line, "<Tabs> is never closed")
	}
}
