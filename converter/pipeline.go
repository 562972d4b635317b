package converter

// stage is one step of the block pipeline. Stages rewrite the working
// document and report counter deltas that the caller folds.
type stage struct {
	name    string
	enabled func(Config) bool
	apply   func(*state, string) (string, Stats)
}

// pipeline lists the stages in execution order. Container stages come first
// so their bodies are converted as isolated fragments; inline formatting
// runs after every block stage that inspects raw markup.
func pipeline() []stage {
	return []stage{
		{name: "tabs", enabled: func(c Config) bool { return c.ConvertTabs }, apply: (*state).convertTabGroups},
		{name: "app-tables", apply: (*state).convertAppTables},
		{name: "tables", apply: (*state).convertTables},
		{name: "code-blocks", apply: (*state).convertCodeBlocks},
		{name: "inline-code", apply: (*state).convertInlineCode},
		{name: "callouts", apply: (*state).convertCallouts},
		{name: "blockquotes", apply: (*state).convertBlockquotes},
		{name: "headings", apply: (*state).convertHeadings},
		{name: "lists", apply: (*state).convertLists},
		{name: "inline", apply: (*state).convertInlineStage},
		{name: "paragraphs", apply: (*state).convertParagraphs},
		{name: "breaks", apply: (*state).convertBreaks},
	}
}

// StageNames returns the pipeline stage names in execution order.
func StageNames() []string {
	stages := pipeline()
	names := make([]string, 0, len(stages))
	for _, st := range stages {
		names = append(names, st.name)
	}
	return names
}
