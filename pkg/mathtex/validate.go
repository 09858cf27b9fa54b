package mathtex

import (
	"fmt"
	"regexp"
	"strings"
)

// ValidationError describes one syntax problem at a byte position.
type ValidationError struct {
	Pos int
	Msg string
}

// String returns the error formatted as "pos: msg".
func (e ValidationError) String() string {
	return fmt.Sprintf("%d: %s", e.Pos, e.Msg)
}

// Result is the outcome of validating a markup string.
type Result struct {
	Valid       bool
	Errors      []ValidationError
	Suggestions []string
}

var (
	beginRe = regexp.MustCompile(`\\begin\{([a-zA-Z*]+)\}`)
	endRe   = regexp.MustCompile(`\\end\{([a-zA-Z*]+)\}`)
)

// Validate checks markup for balanced grouping delimiters and well-formed
// environment blocks. It reports problems rather than failing: the returned
// Result always describes the markup, never an internal error.
func Validate(markup string) Result {
	var res Result

	type open struct {
		ch  byte
		pos int
	}
	var stack []open

	for i := 0; i < len(markup); i++ {
		switch markup[i] {
		case '\\':
			i++ // skip escaped character, including \{ and \}
		case '{', '[', '(':
			stack = append(stack, open{markup[i], i})
		case '}', ']', ')':
			want := matchingOpener(markup[i])
			if len(stack) == 0 {
				res.Errors = append(res.Errors, ValidationError{i, fmt.Sprintf("unmatched %q", string(markup[i]))})
				res.Suggestions = append(res.Suggestions, fmt.Sprintf("remove the %q at position %d or add a matching %q before it", string(markup[i]), i, string(want)))
				continue
			}
			top := stack[len(stack)-1]
			if top.ch != want {
				res.Errors = append(res.Errors, ValidationError{i, fmt.Sprintf("mismatched %q closes %q", string(markup[i]), string(top.ch))})
				res.Suggestions = append(res.Suggestions, fmt.Sprintf("close the %q opened at position %d first", string(top.ch), top.pos))
			}
			stack = stack[:len(stack)-1]
		}
	}
	for _, o := range stack {
		res.Errors = append(res.Errors, ValidationError{o.pos, fmt.Sprintf("unclosed %q", string(o.ch))})
		res.Suggestions = append(res.Suggestions, fmt.Sprintf("add a closing %q", string(matchingCloser(o.ch))))
	}

	// \left ... \right pairing.
	lefts := strings.Count(markup, `\left`)
	rights := strings.Count(markup, `\right`)
	if lefts != rights {
		res.Errors = append(res.Errors, ValidationError{0, fmt.Sprintf(`\left/\right mismatch: %d vs %d`, lefts, rights)})
		res.Suggestions = append(res.Suggestions, `pair every \left with a \right`)
	}

	// Environment blocks must nest properly.
	type env struct {
		name string
		pos  int
	}
	var envStack []env
	begins := beginRe.FindAllStringSubmatchIndex(markup, -1)
	ends := endRe.FindAllStringSubmatchIndex(markup, -1)
	events := make([]struct {
		pos   int
		name  string
		begin bool
	}, 0, len(begins)+len(ends))
	for _, m := range begins {
		events = append(events, struct {
			pos   int
			name  string
			begin bool
		}{m[0], markup[m[2]:m[3]], true})
	}
	for _, m := range ends {
		events = append(events, struct {
			pos   int
			name  string
			begin bool
		}{m[0], markup[m[2]:m[3]], false})
	}
	// Events occur in document order; merge by position.
	for i := 0; i < len(events); i++ {
		for j := i + 1; j < len(events); j++ {
			if events[j].pos < events[i].pos {
				events[i], events[j] = events[j], events[i]
			}
		}
	}
	for _, ev := range events {
		if ev.begin {
			envStack = append(envStack, env{ev.name, ev.pos})
			continue
		}
		if len(envStack) == 0 {
			res.Errors = append(res.Errors, ValidationError{ev.pos, fmt.Sprintf(`\end{%s} without \begin`, ev.name)})
			res.Suggestions = append(res.Suggestions, fmt.Sprintf(`add \begin{%s} before it`, ev.name))
			continue
		}
		top := envStack[len(envStack)-1]
		if top.name != ev.name {
			res.Errors = append(res.Errors, ValidationError{ev.pos, fmt.Sprintf(`\end{%s} closes \begin{%s}`, ev.name, top.name)})
			res.Suggestions = append(res.Suggestions, fmt.Sprintf(`close environment %q opened at position %d first`, top.name, top.pos))
		}
		envStack = envStack[:len(envStack)-1]
	}
	for _, e := range envStack {
		res.Errors = append(res.Errors, ValidationError{e.pos, fmt.Sprintf(`unclosed environment %q`, e.name)})
		res.Suggestions = append(res.Suggestions, fmt.Sprintf(`add \end{%s}`, e.name))
	}

	res.Valid = len(res.Errors) == 0
	return res
}

func matchingOpener(closer byte) byte {
	switch closer {
	case '}':
		return '{'
	case ']':
		return '['
	default:
		return '('
	}
}

func matchingCloser(opener byte) byte {
	switch opener {
	case '{':
		return '}'
	case '[':
		return ']'
	default:
		return ')'
	}
}

// AutoCorrect attempts a best-effort fix for markup with a single common
// error: an unclosed grouping delimiter or an unclosed environment. It
// returns the corrected markup and whether a correction was applied; markup
// that is already valid, or that has errors AutoCorrect does not handle, is
// returned unchanged.
func AutoCorrect(markup string) (string, bool) {
	res := Validate(markup)
	if res.Valid || len(res.Errors) != 1 {
		return markup, false
	}

	err := res.Errors[0]
	switch {
	case strings.HasPrefix(err.Msg, "unclosed \""):
		opener := markup[err.Pos]
		fixed := markup + string(matchingCloser(opener))
		if Validate(fixed).Valid {
			return fixed, true
		}
	case strings.HasPrefix(err.Msg, "unclosed environment"):
		m := beginRe.FindStringSubmatch(markup[err.Pos:])
		if m != nil {
			fixed := markup + `\end{` + m[1] + `}`
			if Validate(fixed).Valid {
				return fixed, true
			}
		}
	}
	return markup, false
}
