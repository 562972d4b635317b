package converter

import (
	"fmt"
	"strings"
)

// DefaultAssetsPrefix is prepended to relative image sources when ProcessImages is set.
const DefaultAssetsPrefix = "./assets/"

// Config holds all converter configuration options.
//
// The zero value disables every optional feature. Use DefaultConfig for the
// Docusaurus-oriented defaults.
type Config struct {
	Title           string   `json:"title,omitempty"`
	Description     string   `json:"description,omitempty"`
	SidebarPosition int      `json:"sidebarPosition,omitempty"`
	SidebarLabel    string   `json:"sidebarLabel,omitempty"`
	Slug            string   `json:"slug,omitempty"`
	Tags            []string `json:"tags,omitempty"`
	Keywords        []string `json:"keywords,omitempty"`

	// CustomFrontmatter holds extra "key: value" lines merged into the frontmatter block.
	CustomFrontmatter string `json:"customFrontmatter,omitempty"`

	AddFrontmatter     bool `json:"addFrontmatter"`
	ConvertTabs        bool `json:"convertTabs"`
	ConvertAdmonitions bool `json:"convertAdmonitions"`
	ConvertCodeBlocks  bool `json:"convertCodeBlocks"`
	ProcessImages      bool `json:"processImages"`

	// AddTabImports prepends the Docusaurus Tabs/TabItem imports when tabs were emitted.
	AddTabImports bool `json:"addTabImports,omitempty"`

	AssetsPrefix   string            `json:"assetsPrefix,omitempty"`
	LanguageMap    map[string]string `json:"languageMap,omitempty"`
	ResolutionMode ResolutionMode    `json:"resolutionMode,omitempty"`
	LinkHook       LinkRenderHook    `json:"-"`
	ImageHook      ImageRenderHook   `json:"-"`
}

// DefaultConfig returns the configuration used by the HTTP API and the CLI
// when a caller leaves every option unset.
func DefaultConfig() Config {
	return Config{
		SidebarPosition:    1,
		AddFrontmatter:     true,
		ConvertTabs:        true,
		ConvertAdmonitions: true,
		ConvertCodeBlocks:  true,
		ProcessImages:      true,
	}
}

func (c Config) applyDefaults() Config {
	if c.AssetsPrefix == "" {
		c.AssetsPrefix = DefaultAssetsPrefix
	}
	if c.ResolutionMode == "" {
		c.ResolutionMode = ResolutionBestEffort
	}

	return c
}

// clone returns a deep copy of Config for slice and map backed fields.
func (c Config) clone() Config {
	cloned := c
	cloned.Tags = cloneStrings(c.Tags)
	cloned.Keywords = cloneStrings(c.Keywords)
	cloned.LanguageMap = cloneLanguageMap(c.LanguageMap)
	cloned.LinkHook = c.LinkHook
	cloned.ImageHook = c.ImageHook
	return cloned
}

// Validate checks that config values are valid.
func (c Config) Validate() error {
	if c.SidebarPosition < 0 {
		return fmt.Errorf("sidebarPosition must not be negative, got %d", c.SidebarPosition)
	}
	for _, field := range []struct {
		name  string
		value string
	}{
		{"title", c.Title},
		{"sidebarLabel", c.SidebarLabel},
		{"slug", c.Slug},
	} {
		if strings.ContainsAny(field.value, "\r\n") {
			return fmt.Errorf("%s must be a single line", field.name)
		}
	}
	for _, tag := range c.Tags {
		if strings.ContainsAny(tag, "\r\n") {
			return fmt.Errorf("tags must be single-line values, got %q", tag)
		}
	}
	for _, keyword := range c.Keywords {
		if strings.ContainsAny(keyword, "\r\n") {
			return fmt.Errorf("keywords must be single-line values, got %q", keyword)
		}
	}
	for from, to := range c.LanguageMap {
		if strings.TrimSpace(from) == "" || strings.TrimSpace(to) == "" {
			return fmt.Errorf("languageMap keys and values must be non-empty")
		}
		if strings.ContainsAny(to, " \t\r\n`") {
			return fmt.Errorf("languageMap value %q for %q is not a valid fence language", to, from)
		}
	}
	if c.ResolutionMode != ResolutionBestEffort && c.ResolutionMode != ResolutionStrict {
		return fmt.Errorf("invalid resolutionMode %q", c.ResolutionMode)
	}

	return nil
}

func cloneStrings(values []string) []string {
	if values == nil {
		return nil
	}
	cloned := make([]string, len(values))
	copy(cloned, values)
	return cloned
}

func cloneLanguageMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	cloned := make(map[string]string, len(m))
	for k, v := range m {
		cloned[strings.ToLower(strings.TrimSpace(k))] = v
	}
	return cloned
}
