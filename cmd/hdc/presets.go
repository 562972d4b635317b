package main

import (
	"fmt"
	"strings"

	"github.com/rgonek/html-docusaurus-converter/converter"
)

const (
	presetDocusaurus = "docusaurus"
	presetPlain      = "plain"
	presetMinimal    = "minimal"
)

func presetConfig(preset string) (converter.Config, error) {
	switch strings.ToLower(strings.TrimSpace(preset)) {
	case "", presetDocusaurus:
		cfg := converter.DefaultConfig()
		cfg.AddTabImports = true
		return cfg, nil
	case presetPlain:
		return converter.Config{
			ConvertCodeBlocks: true,
			ProcessImages:     true,
		}, nil
	case presetMinimal:
		return converter.Config{}, nil
	default:
		return converter.Config{}, fmt.Errorf("%w: unknown preset %q (allowed: docusaurus, plain, minimal)", errInvalidInput, preset)
	}
}

// convertFlags are the per-command overrides applied on top of the preset
// and the config file.
type convertFlags struct {
	title             string
	description       string
	sidebarPosition   int
	sidebarLabel      string
	slug              string
	tags              []string
	keywords          []string
	customFrontmatter string
	assetsPrefix      string
	languageMap       map[string]string

	frontmatter bool
	tabs        bool
	admonitions bool
	codeBlocks  bool
	images      bool
	tabImports  bool
}

func resolveConfig(preset string, file fileConfig, flags convertFlags, changed func(string) bool) (converter.Config, error) {
	cfg, err := presetConfig(preset)
	if err != nil {
		return converter.Config{}, err
	}

	file.applyTo(&cfg)

	if changed("title") {
		cfg.Title = flags.title
	}
	if changed("description") {
		cfg.Description = flags.description
	}
	if changed("sidebar-position") {
		cfg.SidebarPosition = flags.sidebarPosition
	}
	if changed("sidebar-label") {
		cfg.SidebarLabel = flags.sidebarLabel
	}
	if changed("slug") {
		cfg.Slug = flags.slug
	}
	if changed("tags") {
		cfg.Tags = flags.tags
	}
	if changed("keywords") {
		cfg.Keywords = flags.keywords
	}
	if changed("custom-frontmatter") {
		cfg.CustomFrontmatter = flags.customFrontmatter
	}
	if changed("assets-prefix") {
		cfg.AssetsPrefix = flags.assetsPrefix
	}
	if changed("frontmatter") {
		cfg.AddFrontmatter = flags.frontmatter
	}
	if changed("tabs") {
		cfg.ConvertTabs = flags.tabs
	}
	if changed("admonitions") {
		cfg.ConvertAdmonitions = flags.admonitions
	}
	if changed("code-blocks") {
		cfg.ConvertCodeBlocks = flags.codeBlocks
	}
	if changed("images") {
		cfg.ProcessImages = flags.images
	}
	if changed("tab-imports") {
		cfg.AddTabImports = flags.tabImports
	}
	if changed("lang") && len(flags.languageMap) > 0 {
		merged := make(map[string]string, len(cfg.LanguageMap)+len(flags.languageMap))
		for k, v := range cfg.LanguageMap {
			merged[k] = v
		}
		for k, v := range flags.languageMap {
			merged[k] = v
		}
		cfg.LanguageMap = merged
	}

	return cfg, nil
}

// newConverter builds a converter, reporting config errors as invalid input.
func newConverter(cfg converter.Config) (*converter.Converter, error) {
	conv, err := converter.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidInput, err)
	}
	return conv, nil
}
