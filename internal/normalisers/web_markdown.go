package normalisers

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/civica-labs/lexrag-core/internal/core/domain"
	"github.com/civica-labs/lexrag-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.Normaliser = (*WebMarkdownNormaliser)(nil)

var (
	scriptBlockRe = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script>`)
	styleBlockRe  = regexp.MustCompile(`(?is)<style\b[^>]*>.*?</style>`)
	iframeRe      = regexp.MustCompile(`(?is)<iframe\b[^>]*>.*?</iframe>|<iframe\b[^>]*/>`)
	emptyParaRe   = regexp.MustCompile(`(?i)<p\b[^>]*>(\s|&nbsp;)*</p>`)

	// Dead links: no text, or no destination worth keeping
	emptyLinkRe       = regexp.MustCompile(`\[\s*\]\([^)]*\)`)
	placeholderLinkRe = regexp.MustCompile(`\[([^\]]+)\]\(\s*(#?|javascript:[^)]*)\)`)

	blankRunRe = regexp.MustCompile(`\n{3,}`)
)

// WebMarkdownNormaliser turns crawled web markup into clean markdown:
// scripts/styles/frames stripped, empty paragraphs and dead links removed,
// table cells padded, blank-line runs collapsed to two, trailing whitespace
// trimmed per line, single trailing newline.
type WebMarkdownNormaliser struct{}

// Normalise cleans raw markup
func (n *WebMarkdownNormaliser) Normalise(content string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("%w: content must be a non-empty string", domain.ErrInvalidInput)
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	content = scriptBlockRe.ReplaceAllString(content, "")
	content = styleBlockRe.ReplaceAllString(content, "")
	content = iframeRe.ReplaceAllString(content, "")
	content = emptyParaRe.ReplaceAllString(content, "")

	content = emptyLinkRe.ReplaceAllString(content, "")
	content = placeholderLinkRe.ReplaceAllString(content, "$1")

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		line = strings.TrimRight(line, " \t")
		if isTableRow(line) {
			line = padTableCells(line)
		}
		lines[i] = line
	}
	content = strings.Join(lines, "\n")

	content = blankRunRe.ReplaceAllString(content, "\n\n")

	return strings.Trim(content, "\n") + "\n", nil
}

// SupportedTypes covers crawled web pages and already-converted markdown
func (n *WebMarkdownNormaliser) SupportedTypes() []string {
	return []string{"text/html", "application/xhtml+xml", "text/markdown", "text/*"}
}

// Priority places this ahead of any generic fallback
func (n *WebMarkdownNormaliser) Priority() int {
	return 50
}

// isTableRow reports whether a line is a markdown table row
func isTableRow(line string) bool {
	trimmed := strings.TrimSpace(line)
	return strings.HasPrefix(trimmed, "|") && strings.HasSuffix(trimmed, "|") && strings.Count(trimmed, "|") >= 2
}

// padTableCells keeps cell alignment readable with single-space padding
func padTableCells(line string) string {
	trimmed := strings.TrimSpace(line)
	inner := strings.TrimSuffix(strings.TrimPrefix(trimmed, "|"), "|")

	cells := strings.Split(inner, "|")
	for i, cell := range cells {
		cells[i] = " " + strings.TrimSpace(cell) + " "
	}
	return "|" + strings.Join(cells, "|") + "|"
}
