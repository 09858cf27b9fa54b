package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tutorstack/tutorcore/pkg/cli"
	"github.com/tutorstack/tutorcore/pkg/mathtex"
)

var mathFlags struct {
	profile string
	display bool
	output  string
}

var mathCmd = &cobra.Command{
	Use:   "math <phrase>",
	Short: "Convert and render a spoken math phrase",
	Long: `Math runs one phrase through the conversion pipeline and prints the
result: detected or converted markup, validation findings, and the
rendered output.

Examples:
  tutorcore math "x squared plus y squared"
  tutorcore math --profile high_school "the quadratic formula"
  tutorcore math '\frac{a}{b'`,
	Args: cobra.MinimumNArgs(1),
	RunE: runMath,
}

func init() {
	mathCmd.Flags().StringVar(&mathFlags.profile, "profile", "", "education profile (overrides config)")
	mathCmd.Flags().BoolVar(&mathFlags.display, "display", false, "render in block (display) mode")
	mathCmd.Flags().StringVarP(&mathFlags.output, "output", "o", "yaml", "output format (yaml, json)")
	rootCmd.AddCommand(mathCmd)
}

// mathResult is the printable outcome of one pipeline pass.
type mathResult struct {
	Input       string   `json:"input" yaml:"input"`
	Markup      string   `json:"markup" yaml:"markup"`
	Detected    bool     `json:"detected" yaml:"detected"`
	Converted   bool     `json:"converted" yaml:"converted"`
	Corrected   bool     `json:"corrected,omitempty" yaml:"corrected,omitempty"`
	Valid       bool     `json:"valid" yaml:"valid"`
	Errors      []string `json:"errors,omitempty" yaml:"errors,omitempty"`
	Suggestions []string `json:"suggestions,omitempty" yaml:"suggestions,omitempty"`
	HTML        string   `json:"html" yaml:"html"`
	Plain       string   `json:"plain" yaml:"plain"`
}

func runMath(cmd *cobra.Command, args []string) error {
	input := strings.Join(args, " ")

	profile := mathFlags.profile
	if profile == "" {
		if cfg, err := GetConfig(); err == nil {
			profile = cfg.Profile
		}
	}
	conv := mathtex.NewConverter(mathtex.ParseProfile(profile))

	res := mathResult{Input: input, Markup: input}
	if spans := mathtex.DetectSpans(input); len(spans) > 0 {
		res.Detected = true
		res.Markup = spans[0].Body
	} else if converted, changed := conv.Convert(input); changed {
		res.Converted = true
		res.Markup = converted
	}

	if corrected, ok := mathtex.AutoCorrect(res.Markup); ok {
		res.Corrected = true
		res.Markup = corrected
	}

	val := mathtex.Validate(res.Markup)
	res.Valid = val.Valid
	for _, e := range val.Errors {
		res.Errors = append(res.Errors, fmt.Sprintf("pos %d: %s", e.Pos, e.Msg))
	}
	res.Suggestions = val.Suggestions

	rendered := mathtex.NewRenderer().Render(res.Markup, mathtex.Options{Display: mathFlags.display})
	res.HTML = rendered.HTML
	res.Plain = rendered.Plain

	return cli.Output(res, cli.OutputOptions{Format: cli.OutputFormat(mathFlags.output)})
}
