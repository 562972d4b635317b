package converter

import (
	"regexp"
	"strings"
)

var (
	headingLineRe  = regexp.MustCompile(`^#{1,6} `)
	listItemLineRe = regexp.MustCompile(`^(?:[-*+]|\d+\.) `)
	fenceOpenRe    = regexp.MustCompile("^(`{3,}|~{3,})")
)

// PostProcess normalizes blank lines in Markdown: runs of blank lines
// collapse to one, headings and code fences get one blank line on each
// side, and a list gets a blank line before it but none between its items.
// Lines inside fenced code are left untouched. PostProcess is idempotent.
func PostProcess(markdown string) string {
	lines := strings.Split(normalizeNewlines(markdown), "\n")
	out := make([]string, 0, len(lines))

	lastBlank := func() bool {
		return len(out) == 0 || out[len(out)-1] == ""
	}
	blankBefore := func() {
		if !lastBlank() {
			out = append(out, "")
		}
	}

	fence := ""
	blankAfter := false
	for _, line := range lines {
		if fence != "" {
			out = append(out, line)
			if closesFence(line, fence) {
				fence = ""
				blankAfter = true
			}
			continue
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			if !lastBlank() {
				out = append(out, "")
			}
			continue
		}
		if blankAfter {
			blankBefore()
			blankAfter = false
		}

		if m := fenceOpenRe.FindString(trimmed); m != "" {
			blankBefore()
			out = append(out, line)
			fence = m
			continue
		}

		switch {
		case headingLineRe.MatchString(line):
			blankBefore()
			blankAfter = true
		case listItemLineRe.MatchString(line):
			if !lastBlank() && !listItemLineRe.MatchString(out[len(out)-1]) {
				out = append(out, "")
			}
		}
		out = append(out, line)
	}

	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return strings.Join(out, "\n")
}

func closesFence(line, fence string) bool {
	trimmed := strings.TrimSpace(line)
	if len(trimmed) < len(fence) || trimmed[0] != fence[0] {
		return false
	}
	return strings.Trim(trimmed, fence[:1]) == ""
}
