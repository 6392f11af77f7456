package normalisers

import (
	"errors"
	"strings"
	"testing"

	"github.com/civica-labs/lexrag-core/internal/core/domain"
)

func TestWebMarkdownNormaliser_EmptyInput(t *testing.T) {
	n := &WebMarkdownNormaliser{}

	for _, content := range []string{"", "   ", "\n\t\n"} {
		_, err := n.Normalise(content)
		if !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("content %q: expected ErrInvalidInput, got %v", content, err)
		}
	}
}

func TestWebMarkdownNormaliser_StripsScriptsStylesFrames(t *testing.T) {
	n := &WebMarkdownNormaliser{}

	input := "Keep this.\n<script type=\"text/javascript\">alert(1)</script>\n" +
		"<style>.x { color: red }</style>\n<iframe src=\"https://ads.example\"></iframe>\nAnd this."
	out, err := n.Normalise(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, forbidden := range []string{"<script", "alert", "<style", "color: red", "<iframe"} {
		if strings.Contains(out, forbidden) {
			t.Errorf("output still contains %q:\n%s", forbidden, out)
		}
	}
	if !strings.Contains(out, "Keep this.") || !strings.Contains(out, "And this.") {
		t.Errorf("content lost:\n%s", out)
	}
}

func TestWebMarkdownNormaliser_RemovesDeadLinks(t *testing.T) {
	n := &WebMarkdownNormaliser{}

	out, err := n.Normalise("See [](https://example.com) and [click here](#) and [real](https://example.gov/law).")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(out, "[](") {
		t.Errorf("empty link survived:\n%s", out)
	}
	if strings.Contains(out, "[click here]") {
		t.Errorf("placeholder link not reduced to text:\n%s", out)
	}
	if !strings.Contains(out, "click here") {
		t.Errorf("link text lost:\n%s", out)
	}
	if !strings.Contains(out, "[real](https://example.gov/law)") {
		t.Errorf("real link mangled:\n%s", out)
	}
}

func TestWebMarkdownNormaliser_CollapsesBlankRuns(t *testing.T) {
	n := &WebMarkdownNormaliser{}

	out, err := n.Normalise("First.\n\n\n\n\nSecond.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "First.\n\nSecond.\n" {
		t.Errorf("unexpected output %q", out)
	}
}

func TestWebMarkdownNormaliser_TrimsTrailingWhitespaceAndNewline(t *testing.T) {
	n := &WebMarkdownNormaliser{}

	out, err := n.Normalise("Line with trailing spaces   \nAnother\t\n\n\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "Line with trailing spaces\nAnother\n" {
		t.Errorf("unexpected output %q", out)
	}
}

func TestWebMarkdownNormaliser_PadsTableCells(t *testing.T) {
	n := &WebMarkdownNormaliser{}

	out, err := n.Normalise("|Fee|Amount|\n|---|---|\n|Filing|  $25|")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "| Fee | Amount |") {
		t.Errorf("header cells not padded:\n%s", out)
	}
	if !strings.Contains(out, "| Filing | $25 |") {
		t.Errorf("data cells not padded:\n%s", out)
	}
}

func TestRegistry_GetByMIMEType(t *testing.T) {
	r := DefaultRegistry()

	if n := r.Get("text/html; charset=utf-8"); n == nil {
		t.Error("expected a normaliser for text/html")
	}
	if n := r.Get("text/markdown"); n == nil {
		t.Error("expected a normaliser for text/markdown")
	}
	if n := r.Get("application/pdf"); n != nil {
		t.Error("expected no normaliser for application/pdf")
	}
}
