package converter

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// maxFragmentDepth bounds recursive conversion of callout, quote and tab bodies.
const maxFragmentDepth = 24

var (
	whitespaceRunRe  = regexp.MustCompile(`[ \t]+`)
	leadingSpaceRe   = regexp.MustCompile(`\n[ \t]+`)
	trailingSpaceRe  = regexp.MustCompile(`[ \t]+\n`)
	excessNewlinesRe = regexp.MustCompile(`\n{3,}`)
	linkReferenceRe  = regexp.MustCompile(`(?i)<a\s+[^>]*href`)
	imageReferenceRe = regexp.MustCompile(`(?i)<img\s+[^>]*src`)

	reservedRunes = strings.NewReplacer(inlineMark, "", blockMark, "", cellBreak, "")
)

// Converter converts HTML documentation pages to Docusaurus Markdown.
// A Converter is safe for concurrent use.
type Converter struct {
	config Config
}

type state struct {
	ctx       context.Context
	options   ConvertOptions
	config    Config
	fragments []string
	warnings  []Warning
	tabsUsed  bool
	depth     int
	err       error
}

// New creates a new Converter with the given config.
func New(config Config) (*Converter, error) {
	cfg := config.applyDefaults().clone()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Converter{config: cfg}, nil
}

// Convert is a convenience wrapper that builds a Converter for cfg and runs it once.
func Convert(html string, cfg Config) (Result, error) {
	conv, err := New(cfg)
	if err != nil {
		return Result{}, err
	}
	return conv.Convert(html)
}

// Config returns a copy of the converter configuration.
func (c *Converter) Config() Config {
	return c.config.clone()
}

// Convert takes an HTML document or fragment and returns Markdown.
func (c *Converter) Convert(html string) (Result, error) {
	return c.ConvertWithContext(context.Background(), html, ConvertOptions{})
}

// ConvertWithContext converts html with context cancellation and per-call options.
// Hooks receive ctx. Conversion never fails on malformed markup; errors come
// from cancellation or from hooks under ResolutionStrict.
func (c *Converter) ConvertWithContext(ctx context.Context, html string, opts ConvertOptions) (result Result, err error) {
	if ctx == nil {
		ctx = context.Background()
	}

	defer func() {
		if r := recover(); r != nil {
			result = Result{}
			err = fmt.Errorf("conversion failed: %v", r)
		}
	}()

	stats := Stats{HTMLLines: len(strings.Split(html, "\n"))}
	if strings.TrimSpace(html) == "" {
		return Result{Stats: stats}, nil
	}

	s := &state{
		ctx:     ctx,
		options: opts,
		config:  c.config,
	}
	if err := s.checkContext(); err != nil {
		return Result{}, err
	}

	cleaned := Sanitize(normalizeNewlines(reservedRunes.Replace(html)))
	stats.LinksFound = len(linkReferenceRe.FindAllStringIndex(cleaned, -1))
	stats.ImagesFound = len(imageReferenceRe.FindAllStringIndex(cleaned, -1))
	stats.ElementsConverted = countTags(cleaned)

	body, delta := s.convertDocument(cleaned)
	if s.err != nil {
		return Result{}, s.err
	}
	stats.TablesFound = delta.TablesFound

	body = escapeLeadingRule(PostProcess(s.restore(body)))
	if s.tabsUsed && c.config.AddTabImports && body != "" {
		body = TabImports + "\n\n" + body
	}

	markdown := body
	if c.config.AddFrontmatter {
		fm, warnings := GenerateFrontmatter(c.config)
		s.warnings = append(s.warnings, warnings...)
		switch {
		case fm == "":
		case body == "":
			markdown = strings.TrimSuffix(fm, "\n")
		default:
			markdown = fm + "\n" + body
		}
	}

	if markdown != "" {
		stats.MarkdownLines = strings.Count(markdown, "\n") + 1
	}

	return Result{
		Markdown: markdown,
		Stats:    stats,
		Warnings: s.warnings,
	}, nil
}

// convertDocument runs the block pipeline over the whole sanitized input.
func (s *state) convertDocument(html string) (string, Stats) {
	return s.convertBlocks(html)
}

// convertFragment converts a nested body (callout, quote, tab pane). The
// result may still contain tokens; they are restored with the document.
func (s *state) convertFragment(html string) (string, Stats) {
	if s.depth >= maxFragmentDepth {
		s.addWarning(WarningDepthLimit, "", "nesting too deep; flattening remaining content to text")
		return cleanWhitespace(decodeText(stripTags(html))), Stats{}
	}
	s.depth++
	defer func() { s.depth-- }()
	return s.convertBlocks(html)
}

func (s *state) convertBlocks(html string) (string, Stats) {
	var total Stats
	doc := html
	for _, st := range pipeline() {
		if st.enabled != nil && !st.enabled(s.config) {
			continue
		}
		var delta Stats
		doc, delta = st.apply(s, doc)
		total = total.add(delta)
		if s.err != nil {
			return "", total
		}
		if err := s.checkContext(); err != nil {
			s.fail(err)
			return "", total
		}
	}

	doc = stripTags(doc)
	doc = decodeText(doc)
	return cleanWhitespace(doc), total
}

func cleanWhitespace(doc string) string {
	doc = whitespaceRunRe.ReplaceAllString(doc, " ")
	doc = leadingSpaceRe.ReplaceAllString(doc, "\n")
	doc = trailingSpaceRe.ReplaceAllString(doc, "\n")
	doc = excessNewlinesRe.ReplaceAllString(doc, "\n\n")
	return strings.TrimSpace(doc)
}

func (s *state) addWarning(warnType WarningType, element, message string) {
	s.warnings = append(s.warnings, Warning{
		Type:    warnType,
		Element: element,
		Message: message,
	})
}

func (s *state) fail(err error) {
	if s.err == nil {
		s.err = err
	}
}

func (s *state) checkContext() error {
	if s.ctx == nil {
		return nil
	}
	if err := s.ctx.Err(); err != nil {
		return fmt.Errorf("conversion canceled: %w", err)
	}
	return nil
}
