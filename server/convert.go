package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/rgonek/html-docusaurus-converter/converter"
)

type convertRequest struct {
	HTML   *string        `json:"html"`
	Config *requestConfig `json:"config"`
}

// requestConfig mirrors converter.Config with optional toggles: an omitted
// toggle is on, and an omitted or zero sidebarPosition becomes 1.
type requestConfig struct {
	Title              string            `json:"title"`
	Description        string            `json:"description"`
	SidebarPosition    *int              `json:"sidebarPosition"`
	SidebarLabel       string            `json:"sidebarLabel"`
	Slug               string            `json:"slug"`
	Tags               []string          `json:"tags"`
	Keywords           []string          `json:"keywords"`
	CustomFrontmatter  string            `json:"customFrontmatter"`
	AddFrontmatter     *bool             `json:"addFrontmatter"`
	ConvertTabs        *bool             `json:"convertTabs"`
	ConvertAdmonitions *bool             `json:"convertAdmonitions"`
	ConvertCodeBlocks  *bool             `json:"convertCodeBlocks"`
	ProcessImages      *bool             `json:"processImages"`
	AddTabImports      bool              `json:"addTabImports"`
	LanguageMap        map[string]string `json:"languageMap"`
}

func (c *requestConfig) toConfig() converter.Config {
	cfg := converter.DefaultConfig()
	if c == nil {
		return cfg
	}

	cfg.Title = c.Title
	cfg.Description = c.Description
	if c.SidebarPosition != nil && *c.SidebarPosition != 0 {
		cfg.SidebarPosition = *c.SidebarPosition
	}
	cfg.SidebarLabel = c.SidebarLabel
	cfg.Slug = c.Slug
	cfg.Tags = c.Tags
	cfg.Keywords = c.Keywords
	cfg.CustomFrontmatter = c.CustomFrontmatter
	cfg.AddFrontmatter = enabled(c.AddFrontmatter)
	cfg.ConvertTabs = enabled(c.ConvertTabs)
	cfg.ConvertAdmonitions = enabled(c.ConvertAdmonitions)
	cfg.ConvertCodeBlocks = enabled(c.ConvertCodeBlocks)
	cfg.ProcessImages = enabled(c.ProcessImages)
	cfg.AddTabImports = c.AddTabImports
	cfg.LanguageMap = c.LanguageMap
	return cfg
}

func enabled(flag *bool) bool {
	return flag == nil || *flag
}

type convertResponse struct {
	Markdown    string              `json:"markdown"`
	Stats       converter.Stats     `json:"stats"`
	Config      converter.Config    `json:"config"`
	ConvertedAt time.Time           `json:"convertedAt"`
	Warnings    []converter.Warning `json:"warnings,omitempty"`
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	var req convertRequest
	if status, err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, status, err.Error())
		return
	}
	if req.HTML == nil {
		s.writeError(w, http.StatusBadRequest, "HTML content is required")
		return
	}
	if strings.TrimSpace(*req.HTML) == "" {
		s.writeError(w, http.StatusBadRequest, "HTML content cannot be empty")
		return
	}

	conv, err := converter.New(req.Config.toConfig())
	if err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid config: %v", err))
		return
	}

	result, err := conv.ConvertWithContext(r.Context(), *req.HTML, converter.ConvertOptions{})
	if err != nil {
		s.logger.Error("conversion failed", slog.Int("htmlLength", len(*req.HTML)), slog.String("error", err.Error()))
		s.writeError(w, http.StatusInternalServerError, "Conversion failed: "+err.Error())
		return
	}
	if result.Markdown == "" {
		s.logger.Warn("conversion produced no output", slog.Int("htmlLength", len(*req.HTML)))
		s.writeError(w, http.StatusInternalServerError, "Conversion failed - no markdown output generated")
		return
	}

	s.logger.Info("converted",
		slog.Int("htmlLength", len(*req.HTML)),
		slog.Int("markdownLength", len(result.Markdown)),
		slog.Int("elementsConverted", result.Stats.ElementsConverted),
		slog.Int("tables", result.Stats.TablesFound),
		slog.Int("warnings", len(result.Warnings)),
	)
	for _, warning := range result.Warnings {
		s.logger.Debug("conversion warning", slog.String("type", string(warning.Type)), slog.String("message", warning.Message))
	}

	writeJSON(w, http.StatusOK, convertResponse{
		Markdown:    result.Markdown,
		Stats:       result.Stats,
		Config:      conv.Config(),
		ConvertedAt: s.now().UTC(),
		Warnings:    result.Warnings,
	})
}
