package chunker

import (
	"strings"
)

// SplitUnits splits markdown into an ordered sequence of atomic units,
// preserving structural boundaries:
//   - a fenced code block is one unit regardless of internal line breaks
//   - a heading line is always its own unit
//   - a list item (bullet or numbered) is always its own unit
//   - blank lines terminate the accumulating prose unit
//   - ordinary prose is split greedily on sentence-ending punctuation
//
// Units are trimmed and empty units discarded. The output order is used
// positionally by the chunker, so splitting is deterministic and
// order-preserving.
func SplitUnits(text string) []string {
	var units []string
	var prose strings.Builder
	var fence strings.Builder
	inFence := false

	flushProse := func() {
		if prose.Len() == 0 {
			return
		}
		units = append(units, splitSentences(prose.String())...)
		prose.Reset()
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "```") {
			if inFence {
				fence.WriteString("\n")
				fence.WriteString(trimmed)
				units = append(units, fence.String())
				fence.Reset()
				inFence = false
			} else {
				flushProse()
				inFence = true
				fence.WriteString(trimmed)
			}
			continue
		}

		if inFence {
			fence.WriteString("\n")
			fence.WriteString(line)
			continue
		}

		switch {
		case trimmed == "":
			flushProse()
		case strings.HasPrefix(trimmed, "#"):
			flushProse()
			units = append(units, trimmed)
		case isListItem(trimmed):
			flushProse()
			units = append(units, trimmed)
		default:
			if prose.Len() > 0 {
				prose.WriteString(" ")
			}
			prose.WriteString(trimmed)
		}
	}

	// Unterminated fence: emit what accumulated
	if inFence && fence.Len() > 0 {
		units = append(units, fence.String())
	}
	flushProse()

	return units
}

// splitSentences splits prose greedily on sentence-ending punctuation
func splitSentences(prose string) []string {
	var sentences []string
	var current strings.Builder

	for _, r := range prose {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			if s := strings.TrimSpace(current.String()); s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}

	return sentences
}

// isListItem reports whether a trimmed line starts a bullet or numbered item
func isListItem(line string) bool {
	if strings.HasPrefix(line, "- ") || strings.HasPrefix(line, "* ") || strings.HasPrefix(line, "+ ") {
		return true
	}

	// Numbered items: digits followed by "." or ")" and a space
	i := 0
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		i++
	}
	if i == 0 || i+1 >= len(line) {
		return false
	}
	return (line[i] == '.' || line[i] == ')') && line[i+1] == ' '
}
