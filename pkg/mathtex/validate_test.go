package mathtex

import (
	"testing"
)

func TestValidate_Valid(t *testing.T) {
	valid := []string{
		`x^2 + y^2`,
		`\frac{a}{b}`,
		`\sqrt{x + 1}`,
		`\begin{matrix} a & b \end{matrix}`,
		`\left( \frac{a}{b} \right)`,
		``,
	}
	for _, markup := range valid {
		res := Validate(markup)
		if !res.Valid {
			t.Errorf("Validate(%q) invalid: %v", markup, res.Errors)
		}
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		markup string
	}{
		{"unclosed brace", `\frac{a}{b`},
		{"unmatched closer", `a + b}`},
		{"mismatched pair", `(a + b]`},
		{"unclosed environment", `\begin{matrix} a`},
		{"end without begin", `a \end{matrix}`},
		{"left without right", `\left( a`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Validate(tt.markup)
			if res.Valid {
				t.Fatalf("Validate(%q) reported valid", tt.markup)
			}
			if len(res.Errors) == 0 {
				t.Error("no errors reported")
			}
			if len(res.Suggestions) == 0 {
				t.Error("no suggestions reported")
			}
		})
	}
}

func TestValidate_EscapedBraces(t *testing.T) {
	res := Validate(`\{ a \}`)
	if !res.Valid {
		t.Errorf("escaped braces reported invalid: %v", res.Errors)
	}
}

func TestAutoCorrect(t *testing.T) {
	tests := []struct {
		name   string
		markup string
		want   string
	}{
		{"missing brace", `\frac{a}{b`, `\frac{a}{b}`},
		{"missing paren", `\sin(x`, `\sin(x)`},
		{"missing end", `\begin{matrix} a`, `\begin{matrix} a\end{matrix}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := AutoCorrect(tt.markup)
			if !ok {
				t.Fatalf("AutoCorrect(%q) made no correction", tt.markup)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
			// Round trip: the corrected markup must validate clean.
			if res := Validate(got); !res.Valid {
				t.Errorf("corrected markup still invalid: %v", res.Errors)
			}
		})
	}
}

func TestAutoCorrect_NoChange(t *testing.T) {
	// Valid markup and multi-error markup are returned unchanged.
	for _, markup := range []string{`x^2`, `\frac{a}{b} + {c + (d`} {
		got, ok := AutoCorrect(markup)
		if ok {
			t.Errorf("AutoCorrect(%q) unexpectedly corrected to %q", markup, got)
		}
		if got != markup {
			t.Errorf("AutoCorrect(%q) changed markup without reporting", markup)
		}
	}
}
