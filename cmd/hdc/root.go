package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

// rootOptions carries the persistent flags and the state loaded before any
// subcommand runs.
type rootOptions struct {
	configPath string
	preset     string
	verbose    bool

	app    appConfig
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "hdc",
		Short:         "Convert HTML documentation pages to Docusaurus Markdown",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelInfo
			if opts.verbose {
				level = slog.LevelDebug
			}
			opts.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

			if !requiresConfig(cmd) {
				return nil
			}
			app, err := loadAppConfig(opts.configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("preset") {
				app.Preset = opts.preset
			}
			opts.app = app
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to a TOML config file")
	cmd.PersistentFlags().StringVar(&opts.preset, "preset", presetDocusaurus, "Preset: docusaurus|plain|minimal")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", errInvalidInput, err)
	})

	cmd.AddCommand(newConvertCmd(opts))
	cmd.AddCommand(newExtractCmd(opts))
	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newCheckCmd(opts))

	return cmd
}

func requiresConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		name := c.Name()
		if name == "help" || name == "completion" {
			return false
		}
	}
	return true
}

// registerConvertFlags adds the converter override flags to cmd.
func registerConvertFlags(cmd *cobra.Command, f *convertFlags) {
	flags := cmd.Flags()
	flags.StringVar(&f.title, "title", "", "Frontmatter title")
	flags.StringVar(&f.description, "description", "", "Frontmatter description")
	flags.IntVar(&f.sidebarPosition, "sidebar-position", 1, "Frontmatter sidebar_position (0 omits it)")
	flags.StringVar(&f.sidebarLabel, "sidebar-label", "", "Frontmatter sidebar_label")
	flags.StringVar(&f.slug, "slug", "", "Frontmatter slug")
	flags.StringSliceVar(&f.tags, "tags", nil, "Frontmatter tags (comma separated)")
	flags.StringSliceVar(&f.keywords, "keywords", nil, "Frontmatter keywords (comma separated)")
	flags.StringVar(&f.customFrontmatter, "custom-frontmatter", "", `Extra "key: value" frontmatter lines`)
	flags.StringVar(&f.assetsPrefix, "assets-prefix", "", "Prefix for relative image sources")
	flags.StringToStringVar(&f.languageMap, "lang", nil, "Code language aliases, e.g. sh=bash")
	flags.BoolVar(&f.frontmatter, "frontmatter", true, "Emit a frontmatter block")
	flags.BoolVar(&f.tabs, "tabs", true, "Convert tab groups to <Tabs>")
	flags.BoolVar(&f.admonitions, "admonitions", true, "Convert callouts to admonitions")
	flags.BoolVar(&f.codeBlocks, "code-blocks", true, "Convert code blocks to fenced blocks")
	flags.BoolVar(&f.images, "images", true, "Rewrite relative image sources")
	flags.BoolVar(&f.tabImports, "tab-imports", true, "Prepend Tabs imports when tab groups are emitted")
}
