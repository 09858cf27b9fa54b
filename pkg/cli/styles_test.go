package cli

import (
	"strings"
	"testing"

	"github.com/tutorstack/tutorcore/pkg/mathtex"
	"github.com/tutorstack/tutorcore/pkg/transcript"
)

func TestFormatItem(t *testing.T) {
	styles := NewStyles(DefaultTheme)

	t.Run("text", func(t *testing.T) {
		got := styles.FormatItem(transcript.Item{
			Kind:    transcript.KindText,
			Speaker: transcript.SpeakerStudent,
			Content: "hello",
		})
		if !strings.Contains(got, "student:") || !strings.Contains(got, "hello") {
			t.Errorf("got %q", got)
		}
	})

	t.Run("math shows markup", func(t *testing.T) {
		got := styles.FormatItem(transcript.Item{
			Kind:     transcript.KindMath,
			Speaker:  transcript.SpeakerTutor,
			Content:  "x squared",
			Rendered: &mathtex.Rendered{Source: "x^2"},
		})
		if !strings.Contains(got, "x squared") || !strings.Contains(got, "x^2") {
			t.Errorf("got %q", got)
		}
	})

	t.Run("system is dimmed marker", func(t *testing.T) {
		got := styles.FormatItem(transcript.Item{
			Kind:    transcript.KindSystem,
			Speaker: transcript.SpeakerSystem,
			Content: "Session ended",
		})
		if !strings.Contains(got, "Session ended") {
			t.Errorf("got %q", got)
		}
		if strings.Contains(got, "system:") {
			t.Errorf("system items should not show a speaker prefix: %q", got)
		}
	})
}
