package mathtex

import (
	"strings"
)

// Profile selects how aggressively spoken phrasing is converted to notation.
// Lower profiles leave advanced constructs (calculus operators) as plain
// words so younger students are not shown notation they have not met.
type Profile int

const (
	Elementary Profile = iota
	MiddleSchool
	HighSchool
	College
)

// String returns the string representation of the profile.
func (p Profile) String() string {
	switch p {
	case Elementary:
		return "elementary"
	case MiddleSchool:
		return "middle_school"
	case HighSchool:
		return "high_school"
	case College:
		return "college"
	default:
		return "unknown"
	}
}

// ParseProfile parses a profile name. Unknown names map to MiddleSchool.
func ParseProfile(s string) Profile {
	switch strings.ToLower(s) {
	case "elementary":
		return Elementary
	case "middle_school", "middleschool":
		return MiddleSchool
	case "high_school", "highschool":
		return HighSchool
	case "college":
		return College
	default:
		return MiddleSchool
	}
}

// spokenOp identifies a multi-word spoken operator.
type spokenOp int

const (
	opPow spokenOp = iota
	opSqrt
	opFrac
	opDeriv
	opIntegral
	opSin
	opCos
	opTan
	opLog
	opAbs
)

// minProfile is the lowest profile at which the operator is substituted.
func (op spokenOp) minProfile() Profile {
	switch op {
	case opDeriv, opIntegral:
		return HighSchool
	case opLog:
		return HighSchool
	default:
		return Elementary
	}
}

// idiom is a whole-phrase substitution: the entire phrase maps to a canned
// formula rather than being converted word by word.
type idiom struct {
	latex string
	min   Profile
}

// Converter maps spoken-language mathematical phrasing to LaTeX markup.
// A Converter is safe for concurrent use after construction.
type Converter struct {
	profile Profile
	idioms  *wordTrie[idiom]
	ops     *wordTrie[spokenOp]
	words   map[string]string
}

// NewConverter creates a Converter for the given education profile.
func NewConverter(profile Profile) *Converter {
	c := &Converter{
		profile: profile,
		idioms:  newWordTrie[idiom](),
		ops:     newWordTrie[spokenOp](),
		words:   defaultWordMap(),
	}

	for phrase, id := range defaultIdioms {
		c.idioms.put(strings.Fields(phrase), id)
	}
	for phrase, op := range defaultOps {
		c.ops.put(strings.Fields(phrase), op)
	}
	return c
}

// Profile returns the converter's education profile.
func (c *Converter) Profile() Profile {
	return c.profile
}

var defaultIdioms = map[string]idiom{
	"area of a circle":          {`A = \pi r^2`, Elementary},
	"circumference of a circle": {`C = 2\pi r`, Elementary},
	"area of a triangle":        {`A = \frac{1}{2} b h`, Elementary},
	"pythagorean theorem":       {`a^2 + b^2 = c^2`, MiddleSchool},
	"the pythagorean theorem":   {`a^2 + b^2 = c^2`, MiddleSchool},
	"quadratic formula":         {`x = \frac{-b \pm \sqrt{b^2 - 4ac}}{2a}`, HighSchool},
	"the quadratic formula":     {`x = \frac{-b \pm \sqrt{b^2 - 4ac}}{2a}`, HighSchool},
	"slope intercept form":      {`y = mx + b`, MiddleSchool},
}

var defaultOps = map[string]spokenOp{
	"to the power of":        opPow,
	"raised to the power of": opPow,
	"square root of":         opSqrt,
	"the square root of":     opSqrt,
	"divided by":             opFrac,
	"over":                   opFrac,
	"derivative of":          opDeriv,
	"the derivative of":      opDeriv,
	"integral of":            opIntegral,
	"the integral of":        opIntegral,
	"sine of":                opSin,
	"cosine of":              opCos,
	"tangent of":             opTan,
	"log of":                 opLog,
	"absolute value of":      opAbs,
	"the absolute value of":  opAbs,
}

func defaultWordMap() map[string]string {
	m := map[string]string{
		"plus":     "+",
		"minus":    "-",
		"times":    `\times`,
		"equals":   "=",
		"pi":       `\pi`,
		"theta":    `\theta`,
		"alpha":    `\alpha`,
		"beta":     `\beta`,
		"gamma":    `\gamma`,
		"delta":    `\delta`,
		"lambda":   `\lambda`,
		"sigma":    `\sigma`,
		"omega":    `\omega`,
		"infinity": `\infty`,
	}
	return m
}

// Convert turns spoken mathematical phrasing in text into LaTeX markup.
// It returns the converted text and whether any substitution was made; text
// with no recognized phrasing is returned unchanged with changed == false.
// Convert never fails: unrecognized words pass through verbatim.
func (c *Converter) Convert(text string) (latex string, changed bool) {
	words := strings.Fields(strings.ToLower(text))
	if len(words) == 0 {
		return text, false
	}

	var out []string
	lastIsTerm := false

	emit := func(tok string, term bool) {
		out = append(out, tok)
		lastIsTerm = term
	}

	for i := 0; i < len(words); {
		if id, n, ok := c.idioms.longestMatch(words[i:]); ok && c.profile >= id.min {
			emit(id.latex, true)
			changed = true
			i += n
			continue
		}

		if op, n, ok := c.ops.longestMatch(words[i:]); ok {
			if c.profile < op.minProfile() {
				// Too advanced for the profile: keep the words as spoken.
				out = append(out, words[i:i+n]...)
				lastIsTerm = false
				i += n
				continue
			}
			arg := ""
			argN := 0
			if i+n < len(words) {
				arg = c.atom(words[i+n])
				argN = 1
			}
			switch op {
			case opPow:
				if lastIsTerm && argN == 1 && len(out) > 0 {
					out[len(out)-1] += "^{" + arg + "}"
					changed = true
					i += n + argN
					continue
				}
			case opSqrt:
				if argN == 1 {
					emit(`\sqrt{`+arg+`}`, true)
					changed = true
					i += n + argN
					continue
				}
			case opFrac:
				if lastIsTerm && argN == 1 && len(out) > 0 {
					num := out[len(out)-1]
					out[len(out)-1] = `\frac{` + num + `}{` + arg + `}`
					changed = true
					i += n + argN
					continue
				}
			case opDeriv:
				if argN == 1 {
					emit(`\frac{d}{dx} `+arg, true)
					changed = true
					i += n + argN
					continue
				}
			case opIntegral:
				if argN == 1 {
					emit(`\int `+arg+` \, dx`, true)
					changed = true
					i += n + argN
					continue
				}
			case opSin, opCos, opTan, opLog, opAbs:
				if argN == 1 {
					emit(c.wrapFunc(op, arg), true)
					changed = true
					i += n + argN
					continue
				}
			}
			// Operator with no usable operand: keep the words as spoken.
			out = append(out, words[i:i+n]...)
			lastIsTerm = false
			i += n
			continue
		}

		w := words[i]
		switch w {
		case "squared":
			if lastIsTerm && len(out) > 0 {
				out[len(out)-1] += "^2"
				changed = true
				i++
				continue
			}
		case "cubed":
			if lastIsTerm && len(out) > 0 {
				out[len(out)-1] += "^3"
				changed = true
				i++
				continue
			}
		}

		if sub, ok := c.words[w]; ok {
			// Operator symbols are not terms; everything else is.
			term := sub != "+" && sub != "-" && sub != `\times` && sub != "="
			emit(sub, term)
			changed = true
			i++
			continue
		}

		emit(w, isTermWord(w))
		i++
	}

	return strings.Join(out, " "), changed
}

// atom converts a single operand word (used inside \sqrt{}, exponents and
// fractions) without structural handling.
func (c *Converter) atom(w string) string {
	if sub, ok := c.words[w]; ok {
		return sub
	}
	return w
}

func (c *Converter) wrapFunc(op spokenOp, arg string) string {
	switch op {
	case opSin:
		return `\sin(` + arg + `)`
	case opCos:
		return `\cos(` + arg + `)`
	case opTan:
		return `\tan(` + arg + `)`
	case opLog:
		return `\log(` + arg + `)`
	case opAbs:
		return `\left|` + arg + `\right|`
	default:
		return arg
	}
}

// isTermWord reports whether a passthrough word can take a postfix exponent.
// Single letters and numbers are terms; longer words are prose.
func isTermWord(w string) bool {
	if len(w) == 1 {
		r := w[0]
		return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
	}
	for _, r := range w {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
