package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/rgonek/html-docusaurus-converter/converter"
	"github.com/rgonek/html-docusaurus-converter/extract"
)

const (
	defaultAddr       = ":3000"
	configFolderName  = "hdc"
	configFileName    = "config.toml"
	configPathEnvName = "XDG_CONFIG_HOME"
)

// appConfig holds process-level settings resolved from defaults, the config
// file and the environment.
type appConfig struct {
	Addr         string
	FetchTimeout time.Duration
	UserAgent    string
	Preset       string
	File         fileConfig
}

type fileConfig struct {
	Preset              *string           `toml:"preset"`
	Addr                *string           `toml:"addr"`
	FetchTimeoutSeconds *int              `toml:"fetch_timeout_seconds"`
	UserAgent           *string           `toml:"user_agent"`
	Frontmatter         fileFrontmatter   `toml:"frontmatter"`
	Convert             fileConvert       `toml:"convert"`
	LanguageMap         map[string]string `toml:"language_map"`
}

type fileFrontmatter struct {
	Enabled         *bool    `toml:"enabled"`
	Title           *string  `toml:"title"`
	Description     *string  `toml:"description"`
	SidebarPosition *int     `toml:"sidebar_position"`
	SidebarLabel    *string  `toml:"sidebar_label"`
	Slug            *string  `toml:"slug"`
	Tags            []string `toml:"tags"`
	Keywords        []string `toml:"keywords"`
	Custom          *string  `toml:"custom"`
}

type fileConvert struct {
	Tabs          *bool   `toml:"tabs"`
	Admonitions   *bool   `toml:"admonitions"`
	CodeBlocks    *bool   `toml:"code_blocks"`
	ProcessImages *bool   `toml:"process_images"`
	TabImports    *bool   `toml:"tab_imports"`
	AssetsPrefix  *string `toml:"assets_prefix"`
}

// loadAppConfig reads the config file at path, or the first one found in the
// XDG locations when path is empty, and applies environment overrides.
func loadAppConfig(path string) (appConfig, error) {
	cfg := appConfig{
		Addr:         defaultAddr,
		FetchTimeout: extract.DefaultTimeout,
		UserAgent:    extract.DefaultUserAgent,
		Preset:       presetDocusaurus,
	}

	if path == "" {
		found, ok, err := findConfigPath()
		if err != nil {
			return appConfig{}, err
		}
		if ok {
			path = found
		}
	}
	if path != "" {
		fileCfg, err := loadFileConfig(path)
		if err != nil {
			return appConfig{}, err
		}
		cfg.File = fileCfg
		if fileCfg.Preset != nil {
			cfg.Preset = *fileCfg.Preset
		}
		if fileCfg.Addr != nil {
			cfg.Addr = *fileCfg.Addr
		}
		if fileCfg.FetchTimeoutSeconds != nil {
			cfg.FetchTimeout = time.Duration(*fileCfg.FetchTimeoutSeconds) * time.Second
		}
		if fileCfg.UserAgent != nil {
			cfg.UserAgent = *fileCfg.UserAgent
		}
	}

	applyEnvOverrides(&cfg)
	return cfg, nil
}

func findConfigPath() (string, bool, error) {
	candidates := make([]string, 0, 2)
	if xdgConfigHome := strings.TrimSpace(os.Getenv(configPathEnvName)); xdgConfigHome != "" {
		candidates = append(candidates, filepath.Join(xdgConfigHome, configFolderName, configFileName))
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", configFolderName, configFileName))
	}

	for _, candidate := range candidates {
		info, err := os.Stat(candidate)
		if err == nil {
			if info.IsDir() {
				return "", false, fmt.Errorf("config path %q is a directory; expected a file", candidate)
			}
			return candidate, true, nil
		}
		if os.IsNotExist(err) {
			continue
		}
		return "", false, fmt.Errorf("failed to read config path %q: %w", candidate, err)
	}
	return "", false, nil
}

func loadFileConfig(path string) (fileConfig, error) {
	var cfg fileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return fileConfig{}, fmt.Errorf("%w: invalid config file %q: %v", errInvalidInput, path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		unknown := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			unknown = append(unknown, key.String())
		}
		sort.Strings(unknown)
		return fileConfig{}, fmt.Errorf("%w: invalid config file %q: unknown key(s): %s", errInvalidInput, path, strings.Join(unknown, ", "))
	}
	if err := validateFileConfig(path, cfg); err != nil {
		return fileConfig{}, err
	}
	return cfg, nil
}

func validateFileConfig(path string, cfg fileConfig) error {
	if cfg.Addr != nil && strings.TrimSpace(*cfg.Addr) == "" {
		return fmt.Errorf("%w: invalid config file %q: addr must be non-empty when provided", errInvalidInput, path)
	}
	if cfg.FetchTimeoutSeconds != nil && *cfg.FetchTimeoutSeconds <= 0 {
		return fmt.Errorf("%w: invalid config file %q: fetch_timeout_seconds must be > 0", errInvalidInput, path)
	}
	if cfg.Frontmatter.SidebarPosition != nil && *cfg.Frontmatter.SidebarPosition < 0 {
		return fmt.Errorf("%w: invalid config file %q: frontmatter.sidebar_position must be >= 0", errInvalidInput, path)
	}
	return nil
}

// applyTo layers the file's converter settings over cfg.
func (f fileConfig) applyTo(cfg *converter.Config) {
	fm := f.Frontmatter
	if fm.Enabled != nil {
		cfg.AddFrontmatter = *fm.Enabled
	}
	if fm.Title != nil {
		cfg.Title = *fm.Title
	}
	if fm.Description != nil {
		cfg.Description = *fm.Description
	}
	if fm.SidebarPosition != nil {
		cfg.SidebarPosition = *fm.SidebarPosition
	}
	if fm.SidebarLabel != nil {
		cfg.SidebarLabel = *fm.SidebarLabel
	}
	if fm.Slug != nil {
		cfg.Slug = *fm.Slug
	}
	if fm.Tags != nil {
		cfg.Tags = fm.Tags
	}
	if fm.Keywords != nil {
		cfg.Keywords = fm.Keywords
	}
	if fm.Custom != nil {
		cfg.CustomFrontmatter = *fm.Custom
	}

	cv := f.Convert
	if cv.Tabs != nil {
		cfg.ConvertTabs = *cv.Tabs
	}
	if cv.Admonitions != nil {
		cfg.ConvertAdmonitions = *cv.Admonitions
	}
	if cv.CodeBlocks != nil {
		cfg.ConvertCodeBlocks = *cv.CodeBlocks
	}
	if cv.ProcessImages != nil {
		cfg.ProcessImages = *cv.ProcessImages
	}
	if cv.TabImports != nil {
		cfg.AddTabImports = *cv.TabImports
	}
	if cv.AssetsPrefix != nil {
		cfg.AssetsPrefix = *cv.AssetsPrefix
	}
	if f.LanguageMap != nil {
		cfg.LanguageMap = f.LanguageMap
	}
}

func applyEnvOverrides(cfg *appConfig) {
	if v, ok := os.LookupEnv("HDC_ADDR"); ok && v != "" {
		cfg.Addr = v
	}
	if v, ok := os.LookupEnv("HDC_FETCH_TIMEOUT_SECONDS"); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.FetchTimeout = time.Duration(n) * time.Second
		}
	}
}
