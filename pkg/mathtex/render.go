package mathtex

import (
	"html"
	"regexp"
	"strings"
)

// Options controls rendering output.
type Options struct {
	// Display renders in block (display) mode rather than inline.
	Display bool
}

func (o Options) serialize() string {
	if o.Display {
		return "display=1"
	}
	return "display=0"
}

// Rendered is the display form of a markup string. Values are immutable once
// returned and may be shared between callers via the cache.
type Rendered struct {
	// Source is the original markup, preserved so consumers can always fall
	// back to showing it.
	Source string

	// HTML is the display markup. For invalid source it is an error
	// placeholder that still contains the source text.
	HTML string

	// Plain is a best-effort plain-text reading of the markup.
	Plain string

	// Display reports whether the output is block (display) mode.
	Display bool

	// Valid reports whether the source passed validation.
	Valid bool
}

// Renderer produces cached display output for markup.
// A Renderer is safe for concurrent use.
type Renderer struct {
	cache *Cache
}

// NewRenderer creates a Renderer with a fresh cache.
func NewRenderer() *Renderer {
	return &Renderer{cache: NewCache()}
}

// Cache returns the renderer's cache for inspection and clearing.
func (r *Renderer) Cache() *Cache {
	return r.cache
}

// Render produces the display form of markup. Identical markup and options
// return the identical cached *Rendered. Invalid markup never fails: it
// renders as a clearly marked error placeholder embedding the source.
func (r *Renderer) Render(markup string, opts Options) *Rendered {
	key := cacheKey(markup, opts)
	if cached, ok := r.cache.get(key); ok {
		return cached
	}

	normalized := normalizeMarkup(markup)
	res := Validate(normalized)

	out := &Rendered{
		Source:  markup,
		Display: opts.Display,
		Valid:   res.Valid,
	}
	if res.Valid {
		out.HTML = renderHTML(normalized, opts.Display)
		out.Plain = renderPlain(normalized)
	} else {
		out.HTML = `<span class="mathtex-error" title="invalid math markup">` + html.EscapeString(markup) + `</span>`
		out.Plain = markup
	}

	r.cache.put(key, out)
	return out
}

func renderHTML(markup string, display bool) string {
	class := "mathtex mathtex-inline"
	tag := "span"
	if display {
		class = "mathtex mathtex-display"
		tag = "div"
	}
	escaped := html.EscapeString(markup)
	return "<" + tag + ` class="` + class + `" data-tex="` + escaped + `">` + escaped + "</" + tag + ">"
}

var (
	fracRe  = regexp.MustCompile(`\\frac\{([^{}]*)\}\{([^{}]*)\}`)
	sqrtRe  = regexp.MustCompile(`\\sqrt\{([^{}]*)\}`)
	braceRe = regexp.MustCompile(`[{}]`)
)

// symbolTable maps LaTeX commands to readable unicode for the plain-text
// fallback.
var symbolTable = map[string]string{
	`\pi`:     "π",
	`\theta`:  "θ",
	`\alpha`:  "α",
	`\beta`:   "β",
	`\gamma`:  "γ",
	`\delta`:  "δ",
	`\lambda`: "λ",
	`\sigma`:  "σ",
	`\omega`:  "ω",
	`\infty`:  "∞",
	`\times`:  "×",
	`\cdot`:   "·",
	`\pm`:     "±",
	`\le`:     "≤",
	`\ge`:     "≥",
	`\ne`:     "≠",
	`\left`:   "",
	`\right`:  "",
	`\,`:      " ",
}

// renderPlain produces a readable plain-text approximation of the markup.
func renderPlain(markup string) string {
	s := markup
	s = fracRe.ReplaceAllString(s, "($1)/($2)")
	s = sqrtRe.ReplaceAllString(s, "sqrt($1)")
	for cmd, sym := range symbolTable {
		s = strings.ReplaceAll(s, cmd, sym)
	}
	s = braceRe.ReplaceAllString(s, "")
	return strings.Join(strings.Fields(s), " ")
}
