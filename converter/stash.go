package converter

import (
	stdhtml "html"
	"regexp"
	"strconv"
	"strings"
)

// Finished Markdown fragments are parked behind opaque tokens so later
// stages (tag stripping, entity decoding, whitespace cleanup) cannot touch
// them. Inline tokens use \x1a delimiters, block tokens use \x1b.
const (
	inlineMark = "\x1a"
	blockMark  = "\x1b"

	maxRestorePasses = 32
)

var (
	tokenRe      = regexp.MustCompile("[\x1a\x1b]([0-9]+)[\x1a\x1b]")
	blockTokenRe = regexp.MustCompile("\x1b[0-9]+\x1b")
	markRunes    = strings.NewReplacer(inlineMark, "", blockMark, "")
)

func (s *state) park(markdown string) string {
	s.fragments = append(s.fragments, markdown)
	return inlineMark + strconv.Itoa(len(s.fragments)-1) + inlineMark
}

// parkBlock parks markdown that must stand on its own lines.
func (s *state) parkBlock(markdown string) string {
	s.fragments = append(s.fragments, markdown)
	return "\n\n" + blockMark + strconv.Itoa(len(s.fragments)-1) + blockMark + "\n\n"
}

// restore replaces tokens with their fragments until none remain.
func (s *state) restore(text string) string {
	for i := 0; i < maxRestorePasses && tokenRe.MatchString(text); i++ {
		text = tokenRe.ReplaceAllStringFunc(text, func(token string) string {
			idx, err := strconv.Atoi(token[1 : len(token)-1])
			if err != nil || idx < 0 || idx >= len(s.fragments) {
				return ""
			}
			return s.fragments[idx]
		})
	}
	return text
}

// isolateBlocks puts every block token on its own paragraph.
func isolateBlocks(text string) string {
	return blockTokenRe.ReplaceAllStringFunc(text, func(token string) string {
		return "\n\n" + token + "\n\n"
	})
}

// splitBlocks separates block tokens from the surrounding inline text.
func splitBlocks(text string) (string, []string) {
	blocks := blockTokenRe.FindAllString(text, -1)
	if len(blocks) == 0 {
		return text, nil
	}
	return blockTokenRe.ReplaceAllString(text, " "), blocks
}

// decodeText decodes character entities outside tokens. Decoded text never
// yields token delimiters.
func decodeText(text string) string {
	locs := tokenRe.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return decodeEntities(text)
	}

	var sb strings.Builder
	last := 0
	for _, loc := range locs {
		sb.WriteString(decodeEntities(text[last:loc[0]]))
		sb.WriteString(text[loc[0]:loc[1]])
		last = loc[1]
	}
	sb.WriteString(decodeEntities(text[last:]))
	return sb.String()
}

func decodeEntities(text string) string {
	if text == "" {
		return text
	}
	decoded := stdhtml.UnescapeString(text)
	decoded = strings.ReplaceAll(decoded, "\u00a0", " ")
	return markRunes.Replace(decoded)
}
