package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/pbaille/fretnote/internal/api"
	"github.com/pbaille/fretnote/internal/config"
	"github.com/pbaille/fretnote/internal/domain"
	"github.com/pbaille/fretnote/internal/fretboard"
	"github.com/pbaille/fretnote/internal/pitch"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	configPath string
	debug      bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "fretnote",
		Short:        "Guitar fretboard note trainer",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(generateCmd())
	rootCmd.AddCommand(labelCmd())
	rootCmd.AddCommand(resolveCmd())
	rootCmd.AddCommand(quizCmd())
	rootCmd.AddCommand(tableCmd())
	rootCmd.AddCommand(serveCmd())

	return rootCmd
}

func loadEngine() (*fretboard.Engine, config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, cfg, err
	}
	engine, err := fretboard.New(cfg.Engine)
	if err != nil {
		return nil, cfg, err
	}
	return engine, cfg, nil
}

func newLogger(level string) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	return zc.Build()
}

func parseInt(name, s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, s)
	}
	return n, nil
}

func printPosition(w io.Writer, engine *fretboard.Engine, pos domain.FretPosition) error {
	label, err := engine.OpenNoteLabel(pos.String)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "String: %d | %s\n", pos.String, label)
	fmt.Fprintf(w, "Fret: %d\n", pos.Fret)
	return nil
}

func generateCmd() *cobra.Command {
	var maxFret, maxString int

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Pick a random string and fret",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, _, err := loadEngine()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("max-fret") {
				maxFret = engine.Config().MaxFretGenerate
			}

			pos := engine.GeneratePosition(maxFret, maxString)
			return printPosition(cmd.OutOrStdout(), engine, pos)
		},
	}

	cmd.Flags().IntVarP(&maxFret, "max-fret", "f", 0, "highest fret to pick (default max_fret_generate)")
	cmd.Flags().IntVarP(&maxString, "max-string", "s", 0, "highest string to pick (default all strings)")
	return cmd
}

func labelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "label [string]",
		Short: "Show the open note of a string",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			str, err := parseInt("string", args[0])
			if err != nil {
				return err
			}

			engine, _, err := loadEngine()
			if err != nil {
				return err
			}

			label, err := engine.OpenNoteLabel(str)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), label)
			return nil
		},
	}
}

func resolveCmd() *cobra.Command {
	var showMIDI bool

	cmd := &cobra.Command{
		Use:   "resolve [string] [fret]",
		Short: "Show the note at a string and fret",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			str, err := parseInt("string", args[0])
			if err != nil {
				return err
			}
			fret, err := parseInt("fret", args[1])
			if err != nil {
				return err
			}

			engine, _, err := loadEngine()
			if err != nil {
				return err
			}

			pos := domain.FretPosition{String: str, Fret: fret}
			note, err := engine.ResolveNote(pos)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Note: %s\n", note.Label())

			if showMIDI {
				msg, err := pitch.NoteOn(pos, 0, 100)
				if err != nil {
					return err
				}
				key, _, ok := pitch.Key(msg)
				if !ok {
					return fmt.Errorf("not a note message: % X", []byte(msg))
				}
				fmt.Fprintf(out, "MIDI: %d (%s)\n", key, pitch.Name(key))
				fmt.Fprintf(out, "NoteOn: % X\n", []byte(msg))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showMIDI, "midi", false, "also print the MIDI note and NoteOn bytes")
	return cmd
}

func quizCmd() *cobra.Command {
	var maxFret, rounds int

	cmd := &cobra.Command{
		Use:   "quiz",
		Short: "Guess notes at random positions",
		Long:  "Shows a random position, waits for Enter, then reveals the note. Type q to stop.",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, cfg, err := loadEngine()
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg.LogLevel)
			if err != nil {
				return err
			}
			defer logger.Sync()

			if !cmd.Flags().Changed("max-fret") {
				maxFret = engine.Config().MaxFretGenerate
			}

			played := runQuiz(cmd.InOrStdin(), cmd.OutOrStdout(), engine, maxFret, rounds)
			logger.Debug("quiz finished", zap.Int("rounds", played), zap.Int("max_fret", maxFret))
			return nil
		},
	}

	cmd.Flags().IntVarP(&maxFret, "max-fret", "f", 0, "highest fret to pick (default max_fret_generate)")
	cmd.Flags().IntVarP(&rounds, "rounds", "n", 0, "number of rounds (0 = until EOF)")
	return cmd
}

// runQuiz plays rounds until the limit, EOF or "q". The current position
// lives only in this loop.
func runQuiz(in io.Reader, out io.Writer, engine *fretboard.Engine, maxFret, rounds int) int {
	scanner := bufio.NewScanner(in)
	played := 0

	for rounds <= 0 || played < rounds {
		pos := engine.GeneratePosition(maxFret, 0)
		if err := printPosition(out, engine, pos); err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			return played
		}

		fmt.Fprint(out, "Press Enter to show the note (q to quit): ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return played
		}
		if strings.EqualFold(strings.TrimSpace(scanner.Text()), "q") {
			return played
		}

		note, err := engine.ResolveNote(pos)
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			return played
		}
		fmt.Fprintf(out, "Note: %s\n\n", note.Label())
		played++
	}

	return played
}

func tableCmd() *cobra.Command {
	var frets int

	cmd := &cobra.Command{
		Use:   "table",
		Short: "Print the note at every string and fret",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, _, err := loadEngine()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("frets") {
				frets = engine.Config().Frets
			}
			if frets < 0 {
				return fmt.Errorf("frets must be non-negative, got %d", frets)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 1, ' ', 0)
			fmt.Fprint(tw, "String")
			for f := 0; f <= frets; f++ {
				fmt.Fprintf(tw, "\t%d", f)
			}
			fmt.Fprintln(tw)

			for s := 1; s <= fretboard.NumStrings; s++ {
				fmt.Fprintf(tw, "%d", s)
				for f := 0; f <= frets; f++ {
					note, err := engine.ResolveNote(domain.FretPosition{String: s, Fret: f})
					if err != nil {
						return err
					}
					fmt.Fprintf(tw, "\t%s", note.Name())
				}
				fmt.Fprintln(tw)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVar(&frets, "frets", 0, "last fret to print (default configured frets)")
	return cmd
}

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, cfg, err := loadEngine()
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg.LogLevel)
			if err != nil {
				return err
			}
			defer logger.Sync()

			if !cmd.Flags().Changed("addr") {
				addr = cfg.Addr
			}

			logger.Info("fretnote starting",
				zap.String("addr", addr),
				zap.Int("strings", cfg.Engine.Strings),
				zap.Int("frets", cfg.Engine.Frets),
				zap.Int("max_fret_generate", cfg.Engine.MaxFretGenerate),
				zap.Int("max_rounds", cfg.MaxRounds),
			)

			server := api.New(engine, addr, cfg.MaxRounds, logger)
			return server.Run()
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", ":8080", "server address")
	return cmd
}
