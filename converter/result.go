package converter

// Result holds the output of a conversion.
type Result struct {
	Markdown string    `json:"markdown"`
	Stats    Stats     `json:"stats"`
	Warnings []Warning `json:"warnings,omitempty"`
}

// Stats summarizes a single conversion.
//
// LinksFound, ImagesFound and ElementsConverted come from a scan of the
// sanitized input before any stage runs, so they count markup seen rather
// than markup emitted. ElementsConverted is the raw number of tags in that
// input, an approximation of the work done and not a count of elements.
type Stats struct {
	HTMLLines         int `json:"htmlLines"`
	MarkdownLines     int `json:"markdownLines"`
	ElementsConverted int `json:"elementsConverted"`
	LinksFound        int `json:"linksFound"`
	ImagesFound       int `json:"imagesFound"`
	TablesFound       int `json:"tablesFound"`
}

func (s Stats) add(delta Stats) Stats {
	s.HTMLLines += delta.HTMLLines
	s.MarkdownLines += delta.MarkdownLines
	s.ElementsConverted += delta.ElementsConverted
	s.LinksFound += delta.LinksFound
	s.ImagesFound += delta.ImagesFound
	s.TablesFound += delta.TablesFound
	return s
}

// WarningType categorizes conversion warnings.
type WarningType string

const (
	WarningPayloadParse        WarningType = "payload_parse"
	WarningFrontmatterLine     WarningType = "frontmatter_line"
	WarningMissingTabPane      WarningType = "missing_tab_pane"
	WarningDepthLimit          WarningType = "depth_limit"
	WarningUnresolvedReference WarningType = "unresolved_reference"
)

// Warning represents a non-fatal issue encountered during conversion.
type Warning struct {
	Type    WarningType `json:"type"`
	Element string      `json:"element,omitempty"`
	Message string      `json:"message"`
}
