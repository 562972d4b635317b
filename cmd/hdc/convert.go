package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/rgonek/html-docusaurus-converter/converter"
	"github.com/spf13/cobra"
)

func newConvertCmd(opts *rootOptions) *cobra.Command {
	var flags convertFlags
	var outputPath string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "convert [file]",
		Short: "Convert an HTML file (or stdin) to Markdown",
		Example: `  hdc convert page.html -o docs/page.md --title "Getting Started"
  curl -s https://example.com | hdc convert --preset plain`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := "-"
			if len(args) == 1 {
				input = args[0]
			}
			html, err := readInput(cmd.InOrStdin(), input)
			if err != nil {
				return err
			}

			cfg, err := resolveConfig(opts.app.Preset, opts.app.File, flags, cmd.Flags().Changed)
			if err != nil {
				return err
			}
			conv, err := newConverter(cfg)
			if err != nil {
				return err
			}

			result, err := conv.ConvertWithContext(cmd.Context(), html, converter.ConvertOptions{})
			if err != nil {
				return fmt.Errorf("conversion failed: %w", err)
			}
			logWarnings(opts.logger, result.Warnings)
			opts.logger.Debug("converted",
				slog.String("input", input),
				slog.Int("htmlLines", result.Stats.HTMLLines),
				slog.Int("markdownLines", result.Stats.MarkdownLines),
				slog.Int("elementsConverted", result.Stats.ElementsConverted),
			)

			if asJSON {
				data, err := json.MarshalIndent(result, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to encode result: %w", err)
				}
				return writeOutput(cmd.OutOrStdout(), outputPath, string(data)+"\n")
			}
			return writeOutput(cmd.OutOrStdout(), outputPath, result.Markdown+"\n")
		},
	}

	registerConvertFlags(cmd, &flags)
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write to file instead of stdout")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full result (markdown, stats, warnings) as JSON")

	return cmd
}

func readInput(stdin io.Reader, path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read %s: %v", errInvalidInput, path, err)
	}
	return string(data), nil
}

func writeOutput(stdout io.Writer, path, content string) error {
	if path == "" {
		_, err := io.WriteString(stdout, content)
		return err
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func logWarnings(logger *slog.Logger, warnings []converter.Warning) {
	for _, w := range warnings {
		logger.Warn(w.Message, slog.String("type", string(w.Type)), slog.String("element", w.Element))
	}
}
