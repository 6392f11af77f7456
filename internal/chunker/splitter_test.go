package chunker

import (
	"reflect"
	"testing"
)

func TestSplitUnits_Prose(t *testing.T) {
	units := SplitUnits("Sentence one. Sentence two! Sentence three?")

	want := []string{"Sentence one.", "Sentence two!", "Sentence three?"}
	if !reflect.DeepEqual(units, want) {
		t.Errorf("got %v, want %v", units, want)
	}
}

func TestSplitUnits_HeadingIsOwnUnit(t *testing.T) {
	units := SplitUnits("# Title\nSome prose here.")

	want := []string{"# Title", "Some prose here."}
	if !reflect.DeepEqual(units, want) {
		t.Errorf("got %v, want %v", units, want)
	}
}

func TestSplitUnits_ListItems(t *testing.T) {
	units := SplitUnits("- first item\n* second item\n1. third item\n2) fourth item")

	want := []string{"- first item", "* second item", "1. third item", "2) fourth item"}
	if !reflect.DeepEqual(units, want) {
		t.Errorf("got %v, want %v", units, want)
	}
}

func TestSplitUnits_FencedCodeBlockIsOneUnit(t *testing.T) {
	text := "Before code.\n```\nline1\nline2\n```\nAfter code."
	units := SplitUnits(text)

	if len(units) != 3 {
		t.Fatalf("expected 3 units, got %d: %v", len(units), units)
	}
	if units[1] != "```\nline1\nline2\n```" {
		t.Errorf("fence not preserved as one unit: %q", units[1])
	}
}

func TestSplitUnits_BlankLineTerminatesUnit(t *testing.T) {
	units := SplitUnits("First fragment\n\nSecond fragment")

	want := []string{"First fragment", "Second fragment"}
	if !reflect.DeepEqual(units, want) {
		t.Errorf("got %v, want %v", units, want)
	}
}

func TestSplitUnits_ProseJoinsAcrossLines(t *testing.T) {
	units := SplitUnits("A sentence split\nacross two lines.")

	want := []string{"A sentence split across two lines."}
	if !reflect.DeepEqual(units, want) {
		t.Errorf("got %v, want %v", units, want)
	}
}

func TestSplitUnits_EmptyInput(t *testing.T) {
	if units := SplitUnits(""); len(units) != 0 {
		t.Errorf("expected no units, got %v", units)
	}
	if units := SplitUnits("\n\n  \n"); len(units) != 0 {
		t.Errorf("expected no units, got %v", units)
	}
}

func TestSplitUnits_UnterminatedFence(t *testing.T) {
	units := SplitUnits("```\ndangling code")

	if len(units) != 1 {
		t.Fatalf("expected 1 unit, got %d: %v", len(units), units)
	}
}

func TestSplitUnits_Deterministic(t *testing.T) {
	text := "# Heading\nProse one. Prose two.\n- item\n\nMore prose."

	first := SplitUnits(text)
	for i := 0; i < 5; i++ {
		if got := SplitUnits(text); !reflect.DeepEqual(got, first) {
			t.Fatalf("non-deterministic split: %v vs %v", got, first)
		}
	}
}
