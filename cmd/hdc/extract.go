package main

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/rgonek/html-docusaurus-converter/converter"
	"github.com/rgonek/html-docusaurus-converter/extract"
	"github.com/spf13/cobra"
)

func newExtractCmd(opts *rootOptions) *cobra.Command {
	var flags convertFlags
	var outputPath string
	var toMarkdown bool
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "extract <url>",
		Short: "Fetch a page and print its main content",
		Long: `Extract downloads a web page, isolates its main content and prints the
cleaned HTML. With --markdown the content is converted as well, using the page
title as the frontmatter title unless --title is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ex := extract.New(extract.Options{
				Timeout:   opts.app.FetchTimeout,
				UserAgent: opts.app.UserAgent,
			})
			page, err := ex.Extract(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			opts.logger.Debug("extracted", slog.String("url", page.URL), slog.String("title", page.Title), slog.Int("contentLength", page.ContentLength))

			if !toMarkdown {
				if asJSON {
					data, err := json.MarshalIndent(page, "", "  ")
					if err != nil {
						return fmt.Errorf("failed to encode page: %w", err)
					}
					return writeOutput(cmd.OutOrStdout(), outputPath, string(data)+"\n")
				}
				return writeOutput(cmd.OutOrStdout(), outputPath, page.HTML+"\n")
			}

			changed := cmd.Flags().Changed
			cfg, err := resolveConfig(opts.app.Preset, opts.app.File, flags, changed)
			if err != nil {
				return err
			}
			if !changed("title") && opts.app.File.Frontmatter.Title == nil {
				cfg.Title = page.Title
			}
			conv, err := newConverter(cfg)
			if err != nil {
				return err
			}
			result, err := conv.ConvertWithContext(cmd.Context(), page.HTML, converter.ConvertOptions{SourceURL: page.URL})
			if err != nil {
				return fmt.Errorf("conversion failed: %w", err)
			}
			logWarnings(opts.logger, result.Warnings)
			return writeOutput(cmd.OutOrStdout(), outputPath, result.Markdown+"\n")
		},
	}

	registerConvertFlags(cmd, &flags)
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write to file instead of stdout")
	cmd.Flags().BoolVar(&toMarkdown, "markdown", false, "Convert the extracted content to Markdown")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the extracted page as JSON")

	return cmd
}
