// Package mdcheck inspects Docusaurus Markdown and reports its structure:
// frontmatter keys, headings, tables, code blocks, admonitions and tab
// groups, plus structural issues such as unbalanced admonition fences.
package mdcheck

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// Checker parses Markdown with GitHub Flavored Markdown extensions.
// A Checker is safe for concurrent use.
type Checker struct {
	parser goldmark.Markdown
}

// Report summarizes one Markdown document.
type Report struct {
	Frontmatter []Field     `json:"frontmatter,omitempty"`
	Headings    []Heading   `json:"headings,omitempty"`
	Tables      []Table     `json:"tables,omitempty"`
	CodeBlocks  []CodeBlock `json:"codeBlocks,omitempty"`
	Admonitions []string    `json:"admonitions,omitempty"`
	TabGroups   int         `json:"tabGroups"`
	Issues      []Issue     `json:"issues,omitempty"`
}

// Field is one top-level frontmatter entry. Value holds scalars as written;
// List holds sequence items.
type Field struct {
	Key   string   `json:"key"`
	Value string   `json:"value,omitempty"`
	List  []string `json:"list,omitempty"`
}

type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
	Line  int    `json:"line"`
}

type Table struct {
	Columns int `json:"columns"`
	Rows    int `json:"rows"`
	Line    int `json:"line"`
}

type CodeBlock struct {
	Language string `json:"language,omitempty"`
	Lines    int    `json:"lines"`
	Line     int    `json:"line"`
}

// IssueType categorizes structural problems.
type IssueType string

const (
	IssueFrontmatterSyntax   IssueType = "frontmatter_syntax"
	IssueFrontmatterUnclosed IssueType = "frontmatter_unclosed"
	IssueDuplicateKey        IssueType = "duplicate_key"
	IssueUnknownAdmonition   IssueType = "unknown_admonition"
	IssueUnclosedAdmonition  IssueType = "unclosed_admonition"
	IssueUnexpectedClose     IssueType = "unexpected_close"
	IssueUnbalancedTabs      IssueType = "unbalanced_tabs"
	IssueUnclosedFence       IssueType = "unclosed_fence"
	IssueHeadingLevelSkipped IssueType = "heading_level_skipped"
)

// Issue is a structural problem found at a 1-based line.
type Issue struct {
	Type    IssueType `json:"type"`
	Line    int       `json:"line"`
	Message string    `json:"message"`
}

// OK reports whether the document has no issues.
func (r Report) OK() bool {
	return len(r.Issues) == 0
}

// New creates a Checker.
func New() *Checker {
	return &Checker{
		parser: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
		),
	}
}

// Check builds the report for markdown.
func (c *Checker) Check(markdown string) Report {
	source := strings.ReplaceAll(markdown, "\r\n", "\n")

	r := &reporter{}
	body, offset := r.frontmatter(source)

	src := []byte(body)
	root := c.parser.Parser().Parse(text.NewReader(src))
	r.walk(root, src, offset)
	r.scanDirectives(body, offset)

	return r.report
}

type reporter struct {
	report Report
}

func (r *reporter) addIssue(issueType IssueType, line int, message string) {
	r.report.Issues = append(r.report.Issues, Issue{
		Type:    issueType,
		Line:    line,
		Message: message,
	})
}

// lineAt converts a byte offset in src to a 1-based line number.
func lineAt(src []byte, offset int) int {
	if offset > len(src) {
		offset = len(src)
	}
	return bytes.Count(src[:offset], []byte("\n")) + 1
}
