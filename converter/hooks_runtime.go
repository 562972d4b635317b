package converter

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// hookCall describes one invocation of a render hook: the element it is
// rendering for, the reference shown in errors, and the validation applied
// to handled output.
type hookCall[In, Out any] struct {
	kind      string
	element   string
	reference string
	run       func(context.Context, In) (Out, error)
	handled   func(Out) bool
	validate  func(Out) error
}

// callHook runs a hook under the converter's ResolutionMode. It returns
// false when the built-in rendering should be used instead.
func callHook[In, Out any](s *state, call hookCall[In, Out], input In) (Out, bool, error) {
	var zero Out
	if err := s.checkContext(); err != nil {
		return zero, false, err
	}

	output, err := call.run(s.ctx, input)
	switch {
	case errors.Is(err, ErrUnresolved):
		if s.config.ResolutionMode == ResolutionStrict {
			return zero, false, fmt.Errorf("unresolved %s reference %q: %w", call.kind, call.reference, err)
		}
		s.addWarning(WarningUnresolvedReference, call.element,
			fmt.Sprintf("unresolved %s reference %q; using fallback rendering", call.kind, call.reference))
		return zero, false, nil
	case err != nil:
		return zero, false, fmt.Errorf("%s hook failed: %w", call.kind, err)
	case !call.handled(output):
		return zero, false, nil
	}

	if err := call.validate(output); err != nil {
		return zero, false, fmt.Errorf("invalid %s hook output: %w", call.kind, err)
	}
	return output, true, nil
}

func (s *state) applyLinkRenderHook(input LinkRenderInput) (LinkRenderOutput, bool, error) {
	if s.config.LinkHook == nil {
		return LinkRenderOutput{}, false, nil
	}
	input.SourceURL = s.options.SourceURL

	output, ok, err := callHook(s, hookCall[LinkRenderInput, LinkRenderOutput]{
		kind:      "link",
		element:   "a",
		reference: input.Href,
		run:       s.config.LinkHook,
		handled:   func(out LinkRenderOutput) bool { return out.Handled },
		validate: func(out LinkRenderOutput) error {
			if !out.TextOnly && strings.TrimSpace(out.Href) == "" {
				return errors.New("handled link output needs an href unless TextOnly is set")
			}
			return nil
		},
	}, input)
	if !ok {
		return LinkRenderOutput{}, false, err
	}

	output.Href = strings.TrimSpace(output.Href)
	output.Title = strings.TrimSpace(output.Title)
	return output, true, nil
}

func (s *state) applyImageRenderHook(input ImageRenderInput) (ImageRenderOutput, bool, error) {
	if s.config.ImageHook == nil {
		return ImageRenderOutput{}, false, nil
	}
	input.SourceURL = s.options.SourceURL

	return callHook(s, hookCall[ImageRenderInput, ImageRenderOutput]{
		kind:      "image",
		element:   "img",
		reference: input.Src,
		run:       s.config.ImageHook,
		handled:   func(out ImageRenderOutput) bool { return out.Handled },
		validate: func(out ImageRenderOutput) error {
			if strings.TrimSpace(out.Markdown) == "" {
				return errors.New("handled image output needs markdown")
			}
			return nil
		},
	}, input)
}
