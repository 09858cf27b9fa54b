package mathtex

import (
	"testing"
)

func TestDetectSpans_Inline(t *testing.T) {
	spans := DetectSpans("the formula $x^2 + 1$ appears here")
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	s := spans[0]
	if s.Kind != SpanInline {
		t.Errorf("kind = %v, want inline", s.Kind)
	}
	if s.Body != "x^2 + 1" {
		t.Errorf("body = %q", s.Body)
	}
}

func TestDetectSpans_BlockWinsOverInline(t *testing.T) {
	// The inner "$x$" of "$$x$$" also matches the inline pattern; the
	// higher-confidence block match must win and no overlap may remain.
	spans := DetectSpans("$$x$$")
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if spans[0].Kind != SpanBlock {
		t.Errorf("kind = %v, want block", spans[0].Kind)
	}
	if spans[0].Body != "x" {
		t.Errorf("body = %q", spans[0].Body)
	}
}

func TestDetectSpans_Layers(t *testing.T) {
	tests := []struct {
		name string
		text string
		kind SpanKind
	}{
		{"bracket block", `before \[a + b\] after`, SpanBlock},
		{"paren inline", `before \(a\) after`, SpanInline},
		{"environment", `\begin{matrix} a & b \end{matrix}`, SpanEnvironment},
		{"bare command", `use \frac{a}{b} here`, SpanBare},
		{"bare function", "compute sin(x) please", SpanBare},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spans := DetectSpans(tt.text)
			if len(spans) == 0 {
				t.Fatal("no spans detected")
			}
			if spans[0].Kind != tt.kind {
				t.Errorf("kind = %v, want %v", spans[0].Kind, tt.kind)
			}
		})
	}
}

func TestDetectSpans_NoOverlap(t *testing.T) {
	texts := []string{
		"$a$ and $$b$$ and \\frac{c}{d} and sin(x)",
		"$$x$$$y$",
		"\\begin{align} $nested$ \\end{align}",
		"no math at all",
		"",
	}
	for _, text := range texts {
		spans := DetectSpans(text)
		for i := 1; i < len(spans); i++ {
			if spans[i].Start < spans[i-1].End {
				t.Errorf("text %q: spans %d and %d overlap: %+v %+v",
					text, i-1, i, spans[i-1], spans[i])
			}
		}
	}
}

func TestDetectSpans_AscendingOrder(t *testing.T) {
	spans := DetectSpans("first $a$ then sin(x) then $$b$$")
	for i := 1; i < len(spans); i++ {
		if spans[i].Start <= spans[i-1].Start {
			t.Errorf("spans not in ascending start order: %+v", spans)
		}
	}
}

func TestAnalyzeContext(t *testing.T) {
	ctx := AnalyzeContext("solve for x in {a{b", 19)
	if ctx.Depth != 2 {
		t.Errorf("depth = %d, want 2", ctx.Depth)
	}
	if len(ctx.Before) != 3 {
		t.Errorf("before = %v, want 3 words", ctx.Before)
	}

	ctx = AnalyzeContext("$x plus y", 5)
	if ctx.Depth != 1 {
		t.Errorf("open dollar depth = %d, want 1", ctx.Depth)
	}

	// Out-of-range positions are clamped, not panics.
	_ = AnalyzeContext("abc", -1)
	_ = AnalyzeContext("abc", 100)
}
