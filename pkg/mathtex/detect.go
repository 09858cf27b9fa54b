// Package mathtex processes mathematical content in tutoring transcripts.
//
// The package is a pipeline of four independent stages:
//
//   - DetectSpans finds embedded math notation in a text fragment
//   - Converter turns spoken phrasing ("x squared") into LaTeX markup
//   - Validate checks markup syntax and suggests corrections
//   - Renderer produces cached display output for validated markup
//
// Every stage is pure per call: no stage panics or returns an error across
// the package boundary. Detection and conversion return empty results in the
// worst case; rendering of invalid markup degrades to an error placeholder
// that preserves the source text.
package mathtex

import (
	"regexp"
	"sort"
	"strings"
)

// SpanKind classifies how a detected math span is delimited.
type SpanKind int

const (
	SpanInline SpanKind = iota
	SpanBlock
	SpanEnvironment
	SpanBare
)

// String returns the string representation of the kind.
func (k SpanKind) String() string {
	switch k {
	case SpanInline:
		return "inline"
	case SpanBlock:
		return "block"
	case SpanEnvironment:
		return "environment"
	case SpanBare:
		return "bare"
	default:
		return "unknown"
	}
}

// Span is a region of text identified as mathematical notation.
// Start and End are byte offsets into the scanned text; Body is the markup
// with delimiters stripped.
type Span struct {
	Start      int
	End        int
	Body       string
	Kind       SpanKind
	Confidence float64
}

// spanPattern is one layer of the detection strategy. Layers are tried in
// order of descending confidence; bodyGroup selects the capture group that
// holds the markup body (0 means the whole match).
type spanPattern struct {
	re         *regexp.Regexp
	kind       SpanKind
	confidence float64
	bodyGroup  int
}

var spanPatterns = []spanPattern{
	{regexp.MustCompile(`\$\$([^$]+)\$\$`), SpanBlock, 0.98, 1},
	{regexp.MustCompile(`\\\[((?s).+?)\\\]`), SpanBlock, 0.97, 1},
	{regexp.MustCompile(`\\begin\{([a-zA-Z*]+)\}(?s).*?\\end\{[a-zA-Z*]+\}`), SpanEnvironment, 0.95, 0},
	{regexp.MustCompile(`\$([^$\n]+)\$`), SpanInline, 0.90, 1},
	{regexp.MustCompile(`\\\(((?s).+?)\\\)`), SpanInline, 0.90, 1},
	{regexp.MustCompile(`\\[a-zA-Z]+(?:\{[^{}]*\})+`), SpanBare, 0.70, 0},
	{regexp.MustCompile(`\b(?:sin|cos|tan|cot|sec|csc|log|ln|sqrt|exp)\s*\([^()]*\)`), SpanBare, 0.60, 0},
}

// DetectSpans scans text for mathematical notation and returns the detected
// spans in ascending start order. No two returned spans overlap: when
// candidate matches overlap, the higher-confidence match wins, with the
// earlier-starting match breaking ties.
func DetectSpans(text string) []Span {
	if text == "" {
		return nil
	}

	var candidates []Span
	for _, p := range spanPatterns {
		for _, m := range p.re.FindAllStringSubmatchIndex(text, -1) {
			body := text[m[0]:m[1]]
			if p.bodyGroup > 0 && m[2*p.bodyGroup] >= 0 {
				body = text[m[2*p.bodyGroup]:m[2*p.bodyGroup+1]]
			}
			candidates = append(candidates, Span{
				Start:      m[0],
				End:        m[1],
				Body:       strings.TrimSpace(body),
				Kind:       p.kind,
				Confidence: p.confidence,
			})
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	// Higher confidence first; earlier start breaks ties.
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Confidence != candidates[j].Confidence {
			return candidates[i].Confidence > candidates[j].Confidence
		}
		return candidates[i].Start < candidates[j].Start
	})

	var accepted []Span
	for _, c := range candidates {
		if !overlapsAny(c, accepted) {
			accepted = append(accepted, c)
		}
	}

	sort.Slice(accepted, func(i, j int) bool {
		return accepted[i].Start < accepted[j].Start
	})
	return accepted
}

func overlapsAny(s Span, spans []Span) bool {
	for _, o := range spans {
		if s.Start < o.End && o.Start < s.End {
			return true
		}
	}
	return false
}

// Context describes the surroundings of a position in a text fragment. It is
// used to disambiguate tokens that are only mathematical in some contexts
// (e.g. a bare "e" or "pi" inside an expression).
type Context struct {
	// Before holds up to three words preceding the position.
	Before []string

	// After holds up to three words following the position.
	After []string

	// Depth is the grouping depth at the position: unclosed '{' and '('
	// minus their closers, plus an open inline '$' region counting as one.
	Depth int
}

// AnalyzeContext returns the detection context at byte offset pos in text.
// An out-of-range pos is clamped.
func AnalyzeContext(text string, pos int) Context {
	if pos < 0 {
		pos = 0
	}
	if pos > len(text) {
		pos = len(text)
	}

	var ctx Context
	before := strings.Fields(text[:pos])
	if n := len(before); n > 3 {
		before = before[n-3:]
	}
	after := strings.Fields(text[pos:])
	if len(after) > 3 {
		after = after[:3]
	}
	ctx.Before = before
	ctx.After = after

	dollars := 0
	for _, r := range text[:pos] {
		switch r {
		case '{', '(':
			ctx.Depth++
		case '}', ')':
			if ctx.Depth > 0 {
				ctx.Depth--
			}
		case '$':
			dollars++
		}
	}
	if dollars%2 == 1 {
		ctx.Depth++
	}
	return ctx
}
