package mathtex

import (
	"strings"
	"testing"
)

func TestRenderer_Render(t *testing.T) {
	r := NewRenderer()

	out := r.Render("x^2 + y^2", Options{})
	if !out.Valid {
		t.Fatal("valid markup reported invalid")
	}
	if !strings.Contains(out.HTML, "x^2 + y^2") {
		t.Errorf("HTML missing markup: %q", out.HTML)
	}
	if !strings.Contains(out.HTML, "mathtex-inline") {
		t.Errorf("HTML missing inline class: %q", out.HTML)
	}
	if out.Source != "x^2 + y^2" {
		t.Errorf("source = %q", out.Source)
	}
}

func TestRenderer_DisplayMode(t *testing.T) {
	r := NewRenderer()
	out := r.Render(`\frac{a}{b}`, Options{Display: true})
	if !strings.Contains(out.HTML, "mathtex-display") {
		t.Errorf("HTML missing display class: %q", out.HTML)
	}
	if !strings.HasPrefix(out.HTML, "<div") {
		t.Errorf("display mode should use a block tag: %q", out.HTML)
	}
}

func TestRenderer_CacheIdempotence(t *testing.T) {
	r := NewRenderer()

	first := r.Render(`\frac{a}{b}`, Options{})
	if r.Cache().Len() != 1 {
		t.Fatalf("cache len = %d after first render, want 1", r.Cache().Len())
	}

	second := r.Render(`\frac{a}{b}`, Options{})
	if r.Cache().Len() != 1 {
		t.Errorf("cache len = %d after second render, want 1", r.Cache().Len())
	}
	if first != second {
		t.Error("identical render did not return the cached value")
	}

	// Different options are a different key.
	third := r.Render(`\frac{a}{b}`, Options{Display: true})
	if third == first {
		t.Error("display and inline renders share a cache entry")
	}
	if r.Cache().Len() != 2 {
		t.Errorf("cache len = %d, want 2", r.Cache().Len())
	}
}

func TestRenderer_WhitespaceNormalization(t *testing.T) {
	r := NewRenderer()
	a := r.Render("x  +  y", Options{})
	b := r.Render("x + y", Options{})
	if a != b {
		t.Error("markup differing only in whitespace should share a cache entry")
	}
}

func TestRenderer_InvalidMarkup(t *testing.T) {
	r := NewRenderer()
	out := r.Render(`\frac{a}{b`, Options{})
	if out.Valid {
		t.Fatal("invalid markup reported valid")
	}
	if !strings.Contains(out.HTML, "mathtex-error") {
		t.Errorf("placeholder missing error class: %q", out.HTML)
	}
	// The student-facing surface never silently drops content: the source
	// must survive inside the placeholder.
	if !strings.Contains(out.HTML, `\frac{a}{b`) {
		t.Errorf("placeholder missing source text: %q", out.HTML)
	}
}

func TestRenderer_Plain(t *testing.T) {
	r := NewRenderer()
	tests := []struct {
		markup string
		want   string
	}{
		{`\frac{a}{b}`, "(a)/(b)"},
		{`\sqrt{x}`, "sqrt(x)"},
		{`\pi r^2`, "π r^2"},
		{`a \times b`, "a × b"},
	}
	for _, tt := range tests {
		out := r.Render(tt.markup, Options{})
		if out.Plain != tt.want {
			t.Errorf("Plain(%q) = %q, want %q", tt.markup, out.Plain, tt.want)
		}
	}
}

func TestCache_Inspection(t *testing.T) {
	r := NewRenderer()
	r.Render("a", Options{})
	r.Render("b", Options{})

	keys := r.Cache().Keys()
	if len(keys) != 2 {
		t.Fatalf("keys = %v, want 2 entries", keys)
	}
	if keys[0] >= keys[1] {
		t.Errorf("keys not sorted: %v", keys)
	}

	r.Cache().Clear()
	if r.Cache().Len() != 0 {
		t.Errorf("cache len = %d after clear, want 0", r.Cache().Len())
	}
}
