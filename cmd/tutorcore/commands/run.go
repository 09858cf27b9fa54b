package commands

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tutorstack/tutorcore/cmd/tutorcore/internal/config"
	"github.com/tutorstack/tutorcore/pkg/archive"
	"github.com/tutorstack/tutorcore/pkg/cli"
	"github.com/tutorstack/tutorcore/pkg/mathtex"
	"github.com/tutorstack/tutorcore/pkg/realtime"
	"github.com/tutorstack/tutorcore/pkg/session"
	"github.com/tutorstack/tutorcore/pkg/transcript"
)

var runFlags struct {
	student   string
	topic     string
	noVoice   bool
	noArchive bool
	capacity  int
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run an interactive tutoring session in the terminal",
	Long: `Run starts a tutoring session and reads student input from stdin.
Each line goes through the math pipeline and onto the transcript board;
math phrasing is shown with its converted markup.

Session commands:
  /pause    stop accepting input
  /resume   resume after pause
  /health   show subsystem health
  /metrics  show session counters
  /end      end the session and exit`,
	RunE: runSession,
}

func init() {
	runCmd.Flags().StringVarP(&runFlags.student, "student", "s", "", "student id (required)")
	runCmd.Flags().StringVarP(&runFlags.topic, "topic", "t", "", "tutoring topic")
	runCmd.Flags().BoolVar(&runFlags.noVoice, "no-voice", false, "skip the voice channel even if configured")
	runCmd.Flags().BoolVar(&runFlags.noArchive, "no-archive", false, "do not archive the session")
	runCmd.Flags().IntVar(&runFlags.capacity, "capacity", 0, "transcript board capacity (0 = config or default)")
	runCmd.MarkFlagRequired("student")
	rootCmd.AddCommand(runCmd)
}

func runSession(cmd *cobra.Command, args []string) error {
	cfg, err := GetConfig()
	if err != nil {
		return err
	}
	logger := slog.Default()
	styles := cli.NewStyles(cli.DefaultTheme)

	board := transcript.New(boardCapacity(runFlags.capacity, cfg), logger)

	flags := session.FlagMap{
		session.FlagVoice:  cfg.FlagEnabled(session.FlagVoice) && !runFlags.noVoice,
		session.FlagIngest: cfg.FlagEnabled(session.FlagIngest),
	}

	var conn *realtime.Manager
	if cfg.Endpoint != "" && flags[session.FlagVoice] {
		conn = realtime.New(cfg.Endpoint,
			realtime.Credentials{Token: cfg.Token},
			realtime.WithLogger(logger))
	}

	var store archive.Store
	if !runFlags.noArchive {
		dir, err := archiveLocation(cfg)
		if err != nil {
			return err
		}
		store, err = archive.NewBadger(archive.BadgerOptions{Dir: dir})
		if err != nil {
			return fmt.Errorf("open archive: %w", err)
		}
		defer store.Close()
	}

	orch := session.New(session.Deps{
		Conn:      conn,
		Board:     board,
		Converter: mathtex.NewConverter(mathtex.ParseProfile(cfg.Profile)),
		Renderer:  mathtex.NewRenderer(),
		Flags:     flags,
		Archive:   store,
		Logger:    logger,
	})

	sub := board.Subscribe(func(it transcript.Item) {
		fmt.Println(styles.FormatItem(it))
	})
	defer sub.Cancel()

	id, err := orch.Start(cmd.Context(), session.Config{
		StudentID: runFlags.student,
		Topic:     runFlags.topic,
	})
	if err != nil {
		return err
	}
	fmt.Println(styles.Title.Render("session " + id))
	fmt.Println(styles.Help.Render("type to talk, /pause /resume /health /metrics /end"))

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "/") {
			done, err := runCommand(orch, id, line, styles)
			if err != nil {
				cli.PrintError("%v", err)
			}
			if done {
				return nil
			}
			continue
		}
		if _, err := orch.AddItem(line, transcript.SpeakerStudent); err != nil {
			cli.PrintError("%v", err)
		}
	}

	// Stdin closed: end the session cleanly.
	if err := orch.End(id); err != nil {
		return err
	}
	return scanner.Err()
}

// boardCapacity resolves the transcript board capacity: the --capacity flag
// wins, then the config file, then the board's built-in default.
func boardCapacity(flagVal int, cfg *config.Config) int {
	if flagVal > 0 {
		return flagVal
	}
	return cfg.Capacity
}

// runCommand handles one slash command. It reports whether the session is
// over and the loop should exit.
func runCommand(orch *session.Orchestrator, id, line string, styles cli.Styles) (bool, error) {
	switch line {
	case "/pause":
		return false, orch.Pause()
	case "/resume":
		return false, orch.Resume()
	case "/health":
		return false, cli.Output(orch.Health(), cli.OutputOptions{Format: cli.FormatJSON})
	case "/metrics":
		return false, cli.Output(orch.Metrics(), cli.OutputOptions{Format: cli.FormatJSON})
	case "/end", "/quit":
		if err := orch.End(id); err != nil {
			return true, err
		}
		snap := orch.Metrics()
		fmt.Println(styles.Help.Render(fmt.Sprintf(
			"%d messages, %d math items, %s",
			snap.Messages, snap.MathItems, cli.FormatDuration(snap.Duration.Duration()))))
		return true, nil
	default:
		return false, fmt.Errorf("unknown command %q", line)
	}
}
