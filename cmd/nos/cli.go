package main

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/FabienROFFET/Noise-Over-Silence/internal/errors"
	"github.com/FabienROFFET/Noise-Over-Silence/internal/ops"
	"github.com/FabienROFFET/Noise-Over-Silence/internal/save"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(env *ops.Env) *cli.App {
	app := &cli.App{
		Name:    "nos",
		Usage:   "Noise Over Silence, an interactive story player",
		Version: Version,
		Commands: []*cli.Command{
			episodesCmd(env),
			validateCmd(env),
			playCmd(env),
			transcriptCmd(env),
			savesCmd(env),
			saveDeleteCmd(env),
			tapesCmd(env),
			serveCmd(env),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// slotFlag is built per command; urfave flags record state when parsed.
func slotFlag() *cli.IntFlag {
	return &cli.IntFlag{
		Name:    "slot",
		Aliases: []string{"s"},
		Value:   save.AutoSlot,
		Usage:   "Save slot 0-9 (sqlite backend; 0 is the autosave)",
	}
}

// episodesCmd creates the episodes command.
func episodesCmd(env *ops.Env) *cli.Command {
	return &cli.Command{
		Name:  "episodes",
		Usage: "List available episodes",
		Action: func(c *cli.Context) error {
			output, err := ops.ListEpisodes(env)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

// validateCmd creates the validate command.
func validateCmd(env *ops.Env) *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "Check an episode's documents and event graph",
		ArgsUsage: "<episode>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "language", Aliases: []string{"l"}, Usage: "Language code (default: config language)"},
		},
		Action: func(c *cli.Context) error {
			number, err := episodeArg(c)
			if err != nil {
				return outputError(err)
			}

			output, err := ops.Validate(env, ops.ValidateInput{
				Episode:  number,
				Language: c.String("language"),
				Reload:   true,
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

// playCmd creates the play command.
func playCmd(env *ops.Env) *cli.Command {
	return &cli.Command{
		Name:  "play",
		Usage: "Play an episode in the terminal",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "episode", Aliases: []string{"e"}, Usage: "Episode number (default: config start_episode)"},
			&cli.StringFlag{Name: "language", Aliases: []string{"l"}, Usage: "Language code (default: config language)"},
			&cli.IntFlag{Name: "start-event", Usage: "Event id to start at"},
			&cli.BoolFlag{Name: "resume", Aliases: []string{"r"}, Usage: "Continue the saved game in --slot"},
			slotFlag(),
		},
		Action: func(c *cli.Context) error {
			sess, err := env.NewSession()
			if err != nil {
				return outputError(err)
			}

			d, err := ops.Start(env, sess, ops.StartInput{
				Episode:    c.Int("episode"),
				Language:   c.String("language"),
				StartEvent: c.Int("start-event"),
				Resume:     c.Bool("resume"),
				Slot:       c.Int("slot"),
			})
			if err != nil {
				return outputError(err)
			}

			p := &player{env: env, sess: sess, in: c.App.Reader, out: c.App.Writer}
			if err := p.run(*d); err != nil {
				return outputError(err)
			}
			return nil
		},
	}
}

// transcriptCmd creates the transcript command.
func transcriptCmd(env *ops.Env) *cli.Command {
	return &cli.Command{
		Name:  "transcript",
		Usage: "Render a saved game's playthrough as Markdown or HTML",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "md", Usage: "Output format: md|html"},
			&cli.BoolFlag{Name: "write", Aliases: []string{"w"}, Usage: "Write to ~/.nos/transcripts instead of stdout"},
			&cli.StringFlag{Name: "path", Usage: "Destination for --write (must be directly in ~/.nos/transcripts)"},
			slotFlag(),
		},
		Action: func(c *cli.Context) error {
			snap, err := ops.LoadSave(env, c.Int("slot"))
			if err != nil {
				return outputError(err)
			}
			if snap == nil {
				return outputError(errors.NewInvalidRequest("no saved game in that slot"))
			}

			output, err := ops.SnapshotTranscript(env, snap, ops.TranscriptInput{
				Format: c.String("format"),
				Write:  c.Bool("write"),
				Path:   c.String("path"),
			})
			if err != nil {
				return outputError(err)
			}

			if !c.Bool("write") {
				_, err := io.WriteString(c.App.Writer, output.Content)
				return err
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

// savesCmd creates the saves command.
func savesCmd(env *ops.Env) *cli.Command {
	return &cli.Command{
		Name:  "saves",
		Usage: "List saved games, newest first",
		Action: func(c *cli.Context) error {
			output, err := ops.ListSaves(env)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

// saveDeleteCmd creates the save-delete command.
func saveDeleteCmd(env *ops.Env) *cli.Command {
	return &cli.Command{
		Name:  "save-delete",
		Usage: "Delete a saved game",
		Flags: []cli.Flag{slotFlag()},
		Action: func(c *cli.Context) error {
			slot := c.Int("slot")
			if err := ops.DeleteSave(env, slot); err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, map[string]any{"deleted": true, "slot": slot})
		},
	}
}

// tapesCmd creates the tapes command.
func tapesCmd(env *ops.Env) *cli.Command {
	return &cli.Command{
		Name:  "tapes",
		Usage: "List the tape collection",
		Action: func(c *cli.Context) error {
			output, err := ops.ListTapes(env, nil)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

// serveCmd creates the serve command.
func serveCmd(env *ops.Env) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the MCP server on stdio",
		Action: func(c *cli.Context) error {
			if err := serve(env); err != nil {
				return outputError(errors.NewInternal(err))
			}
			return nil
		},
	}
}

// Helper functions

// episodeArg parses the first positional argument as an episode number.
func episodeArg(c *cli.Context) (int, error) {
	if c.NArg() == 0 {
		return 0, errors.NewInvalidRequest("episode number is required")
	}
	n, err := strconv.Atoi(c.Args().First())
	if err != nil || n <= 0 {
		return 0, errors.NewInvalidRequest(fmt.Sprintf("invalid episode number %q", c.Args().First()))
	}
	return n, nil
}

// outputJSON marshals result to w as JSON.
func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	var engErr *errors.EngineError
	if stderrors.As(err, &engErr) {
		return cli.Exit(fmt.Sprintf("[%s] %s", engErr.Code, engErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}
