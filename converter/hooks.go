package converter

import (
	"context"
	"errors"
)

// ErrUnresolved indicates that a link or image reference could not be resolved by a hook.
var ErrUnresolved = errors.New("unresolved link or image reference")

// ResolutionMode controls how unresolved hook results are handled.
type ResolutionMode string

const (
	// ResolutionBestEffort continues conversion and falls back to built-in behavior.
	ResolutionBestEffort ResolutionMode = "best_effort"
	// ResolutionStrict fails conversion when a hook returns ErrUnresolved.
	ResolutionStrict ResolutionMode = "strict"
)

// ConvertOptions carries optional per-conversion context.
type ConvertOptions struct {
	// SourceURL is the page the HTML came from, when known.
	SourceURL string
}

// LinkRenderHook can rewrite anchors during HTML -> Markdown conversion.
type LinkRenderHook func(ctx context.Context, in LinkRenderInput) (LinkRenderOutput, error)

// ImageRenderHook can override image output during HTML -> Markdown conversion.
type ImageRenderHook func(ctx context.Context, in ImageRenderInput) (ImageRenderOutput, error)

// LinkRenderInput describes an anchor being rendered.
type LinkRenderInput struct {
	SourceURL string
	Href      string
	Title     string
	Text      string
	Attrs     map[string]string
}

// LinkRenderOutput contains hook-provided link rendering data.
type LinkRenderOutput struct {
	Href     string
	Title    string
	TextOnly bool
	Handled  bool
}

// ImageRenderInput describes an image being rendered.
type ImageRenderInput struct {
	SourceURL string
	Src       string
	Alt       string
	Title     string
	Attrs     map[string]string
}

// ImageRenderOutput contains hook-provided markdown for image rendering.
type ImageRenderOutput struct {
	Markdown string
	Handled  bool
}
