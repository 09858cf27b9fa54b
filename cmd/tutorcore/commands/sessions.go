package commands

import (
	"github.com/spf13/cobra"

	"github.com/tutorstack/tutorcore/cmd/tutorcore/internal/config"
	"github.com/tutorstack/tutorcore/pkg/archive"
	"github.com/tutorstack/tutorcore/pkg/cli"
)

var sessionsFlags struct {
	student string
	output  string
}

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Inspect archived tutoring sessions",
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List a student's archived sessions",
	RunE:  runSessionsList,
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Show one archived session with its transcript",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsShow,
}

func init() {
	sessionsCmd.PersistentFlags().StringVarP(&sessionsFlags.student, "student", "s", "", "student id (required)")
	sessionsCmd.PersistentFlags().StringVarP(&sessionsFlags.output, "output", "o", "json", "output format (json, yaml)")
	sessionsCmd.MarkPersistentFlagRequired("student")
	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsShowCmd)
	rootCmd.AddCommand(sessionsCmd)
}

// archiveLocation returns the configured archive directory, defaulting to
// ~/.tutorcore/archive (created on demand).
func archiveLocation(cfg *config.Config) (string, error) {
	if cfg.ArchiveDir != "" {
		return cfg.ArchiveDir, nil
	}
	paths, err := cli.NewPaths()
	if err != nil {
		return "", err
	}
	if err := paths.EnsureArchiveDir(); err != nil {
		return "", err
	}
	return paths.ArchiveDir(), nil
}

// openArchive opens the on-disk archive.
func openArchive() (archive.Store, error) {
	cfg, err := GetConfig()
	if err != nil {
		return nil, err
	}
	dir, err := archiveLocation(cfg)
	if err != nil {
		return nil, err
	}
	return archive.NewBadger(archive.BadgerOptions{Dir: dir})
}

// sessionSummary is the list row shape.
type sessionSummary struct {
	SessionID string `json:"session_id" yaml:"session_id"`
	Topic     string `json:"topic,omitempty" yaml:"topic,omitempty"`
	Messages  int64  `json:"messages" yaml:"messages"`
	MathItems int64  `json:"math_items" yaml:"math_items"`
	Duration  string `json:"duration" yaml:"duration"`
}

func runSessionsList(cmd *cobra.Command, args []string) error {
	store, err := openArchive()
	if err != nil {
		return err
	}
	defer store.Close()

	recs, err := store.ListSessions(cmd.Context(), sessionsFlags.student)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		cli.PrintInfo("no sessions for student %q", sessionsFlags.student)
		return nil
	}

	summaries := make([]sessionSummary, 0, len(recs))
	for _, rec := range recs {
		summaries = append(summaries, sessionSummary{
			SessionID: rec.SessionID,
			Topic:     rec.Topic,
			Messages:  rec.Messages,
			MathItems: rec.MathItems,
			Duration:  cli.FormatDuration(rec.EndedAt.Sub(rec.StartedAt)),
		})
	}
	return cli.Output(summaries, cli.OutputOptions{Format: cli.OutputFormat(sessionsFlags.output)})
}

func runSessionsShow(cmd *cobra.Command, args []string) error {
	store, err := openArchive()
	if err != nil {
		return err
	}
	defer store.Close()

	rec, err := store.LoadSession(cmd.Context(), sessionsFlags.student, args[0])
	if err != nil {
		return err
	}
	return cli.Output(rec, cli.OutputOptions{Format: cli.OutputFormat(sessionsFlags.output)})
}
