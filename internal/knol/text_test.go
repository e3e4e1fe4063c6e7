package knol

import (
	"testing"
)

func TestNormalize(t *testing.T) {
	input := "  What is HTMX? \r\nA library.\r\n\t"
	expected := "What is HTMX? \r\nA library."
	if got := Normalize(input); got != expected {
		t.Errorf("Expected normalized string to be '%s', but got '%s'", expected, got)
	}
}

func TestEqual(t *testing.T) {
	t.Run("whitespace differences are ignored", func(t *testing.T) {
		if !Equal("  Paris\n", "Paris") {
			t.Error("Expected texts differing only in surrounding whitespace to be equal")
		}
	})

	t.Run("comparison is case-sensitive", func(t *testing.T) {
		if Equal("paris", "Paris") {
			t.Error("Expected texts differing in case to be different")
		}
	})

	t.Run("line endings matter", func(t *testing.T) {
		if Equal("x\ny", "x\r\ny") {
			t.Error("Expected texts differing in line endings to be different")
		}
	})

	t.Run("inner whitespace matters", func(t *testing.T) {
		if Equal("New York", "New  York") {
			t.Error("Expected inner whitespace to be significant")
		}
	})
}

func TestIsBlank(t *testing.T) {
	for _, s := range []string{"", " ", "\t\r\n"} {
		if !IsBlank(s) {
			t.Errorf("Expected %q to be blank", s)
		}
	}
	if IsBlank(" x ") {
		t.Error("Expected ' x ' not to be blank")
	}
}

func TestResolve(t *testing.T) {
	replacement := "  new  "
	if got := Resolve(" old ", &replacement); got != "new" {
		t.Errorf("Expected replacement to win, got '%s'", got)
	}
	if got := Resolve(" old ", nil); got != "old" {
		t.Errorf("Expected current value to be kept, got '%s'", got)
	}
}
