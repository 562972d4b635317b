package main

import (
	"testing"

	"github.com/rgonek/html-docusaurus-converter/converter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noneChanged(string) bool { return false }

func changedSet(names ...string) func(string) bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return func(name string) bool { return set[name] }
}

func TestPresetConfig(t *testing.T) {
	t.Run("docusaurus", func(t *testing.T) {
		cfg, err := presetConfig(presetDocusaurus)
		require.NoError(t, err)
		want := converter.DefaultConfig()
		want.AddTabImports = true
		assert.Equal(t, want, cfg)
	})

	t.Run("empty defaults to docusaurus", func(t *testing.T) {
		cfg, err := presetConfig("")
		require.NoError(t, err)
		assert.True(t, cfg.AddFrontmatter)
		assert.True(t, cfg.ConvertTabs)
		assert.Equal(t, 1, cfg.SidebarPosition)
	})

	t.Run("case and whitespace are ignored", func(t *testing.T) {
		cfg, err := presetConfig("  Plain ")
		require.NoError(t, err)
		assert.False(t, cfg.AddFrontmatter)
	})

	t.Run("plain", func(t *testing.T) {
		cfg, err := presetConfig(presetPlain)
		require.NoError(t, err)
		assert.False(t, cfg.AddFrontmatter)
		assert.False(t, cfg.ConvertTabs)
		assert.False(t, cfg.ConvertAdmonitions)
		assert.True(t, cfg.ConvertCodeBlocks)
		assert.True(t, cfg.ProcessImages)
	})

	t.Run("minimal", func(t *testing.T) {
		cfg, err := presetConfig(presetMinimal)
		require.NoError(t, err)
		assert.Equal(t, converter.Config{}, cfg)
	})
}

func TestPresetConfigInvalid(t *testing.T) {
	_, err := presetConfig("unknown")
	require.Error(t, err)
	assert.ErrorIs(t, err, errInvalidInput)
	assert.Contains(t, err.Error(), `unknown preset "unknown" (allowed: docusaurus, plain, minimal)`)
}

func TestResolveConfigPrecedence(t *testing.T) {
	title := "From file"
	tabs := false
	position := 4
	file := fileConfig{
		Frontmatter: fileFrontmatter{Title: &title, SidebarPosition: &position, Tags: []string{"file"}},
		Convert:     fileConvert{Tabs: &tabs},
		LanguageMap: map[string]string{"sh": "bash"},
	}
	flags := convertFlags{
		title:       "From flag",
		admonitions: false,
		languageMap: map[string]string{"py": "python"},
	}

	cfg, err := resolveConfig(presetDocusaurus, file, flags, changedSet("title", "admonitions", "lang"))
	require.NoError(t, err)

	assert.Equal(t, "From flag", cfg.Title)
	assert.Equal(t, 4, cfg.SidebarPosition)
	assert.Equal(t, []string{"file"}, cfg.Tags)
	assert.False(t, cfg.ConvertTabs)
	assert.False(t, cfg.ConvertAdmonitions)
	assert.True(t, cfg.ConvertCodeBlocks)
	assert.Equal(t, map[string]string{"sh": "bash", "py": "python"}, cfg.LanguageMap)
}

func TestResolveConfigUnchangedFlagsKeepPreset(t *testing.T) {
	flags := convertFlags{frontmatter: false, sidebarPosition: 9}

	cfg, err := resolveConfig(presetDocusaurus, fileConfig{}, flags, noneChanged)
	require.NoError(t, err)

	assert.True(t, cfg.AddFrontmatter)
	assert.Equal(t, 1, cfg.SidebarPosition)
}

func TestResolveConfigInvalidPreset(t *testing.T) {
	_, err := resolveConfig("fancy", fileConfig{}, convertFlags{}, noneChanged)
	assert.ErrorIs(t, err, errInvalidInput)
}

func TestNewConverterInvalidConfig(t *testing.T) {
	_, err := newConverter(converter.Config{SidebarPosition: -1})
	require.Error(t, err)
	assert.ErrorIs(t, err, errInvalidInput)
	assert.Contains(t, err.Error(), "sidebarPosition must not be negative")
}
