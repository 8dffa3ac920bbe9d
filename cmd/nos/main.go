package main

import (
	"fmt"
	"os"

	"github.com/FabienROFFET/Noise-Over-Silence/internal/config"
	"github.com/FabienROFFET/Noise-Over-Silence/internal/db"
	"github.com/FabienROFFET/Noise-Over-Silence/internal/episode"
	"github.com/FabienROFFET/Noise-Over-Silence/internal/logging"
	"github.com/FabienROFFET/Noise-Over-Silence/internal/mcp"
	"github.com/FabienROFFET/Noise-Over-Silence/internal/ops"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"episodes": true, "validate": true, "play": true,
	"transcript": true, "saves": true, "save-delete": true,
	"tapes": true, "serve": true,
	"help": true,
}

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode() bool {
	if len(os.Args) < 2 {
		return false // No args → MCP server
	}
	arg := os.Args[1]
	if cliCommands[arg] {
		return true
	}
	if arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" {
		return true
	}
	return false // Default → MCP server
}

// isHelpOrVersion returns true if the user is requesting help or version info.
func isHelpOrVersion() bool {
	if len(os.Args) < 2 {
		return false
	}
	arg := os.Args[1]
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" || arg == "help"
}

// isTerminal returns true if stdin is a terminal (not piped).
func isTerminal() bool {
	stat, _ := os.Stdin.Stat()
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// printBanner displays a friendly banner when run interactively without args.
func printBanner() {
	fmt.Println(`
   _  _  ___  ___
  | \| |/ _ \/ __|
  | .  | (_) \__ \
  |_|\_|\___/|___/

  Noise Over Silence

  Usage: nos <command> [options]
         nos play
         nos --help

  MCP server mode requires piped input.`)
}

func main() {
	// No args + interactive terminal → show banner and exit
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return
	}

	// Handle --help/--version before DB init (no DB needed)
	if isHelpOrVersion() {
		app := newCLIApp(nil)
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	env, closeEnv, err := setup()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer closeEnv()

	// CLI mode: known subcommand
	if isCLIMode() {
		app := newCLIApp(env)
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			closeEnv()
			os.Exit(1)
		}
		return
	}

	// Unknown argument + terminal → show error (don't start MCP server)
	if len(os.Args) >= 2 && isTerminal() {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "Run 'nos --help' for usage.\n")
		closeEnv()
		os.Exit(1)
	}

	// MCP server mode (default)
	if err := serve(env); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		closeEnv()
		os.Exit(1)
	}
}

// setup loads config, opens ~/.nos/nos.db and builds the operations env.
func setup() (*ops.Env, func(), error) {
	globalDir, err := config.GlobalDir()
	if err != nil {
		return nil, nil, fmt.Errorf("could not determine home directory: %w", err)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return nil, nil, fmt.Errorf("could not determine working directory: %w", err)
	}

	cfg, err := config.LoadWithRepo(globalDir, cwd)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.Setup("nos", Version, cfg.LogFormat, cfg.LogLevel, os.Stderr)

	database, err := db.Init(globalDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	db.ConfigurePool(database, cfg)

	env := &ops.Env{
		Config:   cfg,
		Episodes: episode.NewDir(cfg.EpisodesDir, logger),
		DB:       database,
		DataDir:  globalDir,
		Logger:   logger,
	}
	return env, func() { database.Close() }, nil
}

// serve runs the MCP server on stdio after warning about unknown disabled names.
func serve(env *ops.Env) error {
	if unknown := mcp.ValidateDisabledTools(env.Config.DisabledTools); len(unknown) > 0 {
		env.Logger.Warn("unknown tools in disabled_tools", "tools", unknown)
	}
	if unknown := mcp.ValidateDisabledTypes(env.Config.DisabledTypes); len(unknown) > 0 {
		env.Logger.Warn("unknown types in disabled_types", "types", unknown, "known", mcp.KnownTypes)
	}
	return mcp.Run(env, Version)
}
