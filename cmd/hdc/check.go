package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/rgonek/html-docusaurus-converter/mdcheck"
	"github.com/spf13/cobra"
)

func newCheckCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "check [file]",
		Short: "Report the structure of a Markdown file and flag Docusaurus syntax problems",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := "-"
			if len(args) == 1 {
				input = args[0]
			}
			markdown, err := readInput(cmd.InOrStdin(), input)
			if err != nil {
				return err
			}

			report := mdcheck.New().Check(markdown)
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(report); err != nil {
					return fmt.Errorf("failed to encode report: %w", err)
				}
			} else {
				printReport(cmd.OutOrStdout(), report)
			}

			if !report.OK() {
				return fmt.Errorf("%w: %d issue(s) in %s", errCheckFailed, len(report.Issues), input)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")
	return cmd
}

func printReport(w io.Writer, report mdcheck.Report) {
	if len(report.Frontmatter) > 0 {
		keys := make([]string, 0, len(report.Frontmatter))
		for _, f := range report.Frontmatter {
			keys = append(keys, f.Key)
		}
		fmt.Fprintf(w, "frontmatter: %s\n", strings.Join(keys, ", "))
	}
	for _, h := range report.Headings {
		fmt.Fprintf(w, "heading %d: %s %s\n", h.Line, strings.Repeat("#", h.Level), h.Text)
	}
	for _, t := range report.Tables {
		fmt.Fprintf(w, "table %d: %d columns, %d rows\n", t.Line, t.Columns, t.Rows)
	}
	for _, c := range report.CodeBlocks {
		lang := c.Language
		if lang == "" {
			lang = "plain"
		}
		fmt.Fprintf(w, "code %d: %s, %d lines\n", c.Line, lang, c.Lines)
	}
	if len(report.Admonitions) > 0 {
		fmt.Fprintf(w, "admonitions: %s\n", strings.Join(report.Admonitions, ", "))
	}
	fmt.Fprintf(w, "tab groups: %d\n", report.TabGroups)
	for _, issue := range report.Issues {
		fmt.Fprintf(w, "issue %d [%s]: %s\n", issue.Line, issue.Type, issue.Message)
	}
}
