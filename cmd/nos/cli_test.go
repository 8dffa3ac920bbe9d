package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/FabienROFFET/Noise-Over-Silence/internal/config"
	"github.com/FabienROFFET/Noise-Over-Silence/internal/db"
	"github.com/FabienROFFET/Noise-Over-Silence/internal/episode"
	"github.com/FabienROFFET/Noise-Over-Silence/internal/errors"
	"github.com/FabienROFFET/Noise-Over-Silence/internal/ops"
)

const testEpisode = `{
  "episode": 1,
  "title": "The Static",
  "chapter_intro": {"number": 1, "title": "Cold"},
  "events": [
    {"id": 1, "location": "Attic", "text": "Radio hiss.",
     "choices": [
       {"text": "tune in", "next_event": 2, "unlock_tape": "tape_02"},
       {"text": "switch off"}
     ]},
    {"id": 2, "text": "A voice.", "choices": [{"text": "answer", "next_event": 3}]},
    {"id": 3, "text": "Silence.", "choices": []}
  ]
}`

// setupTestEnv creates a temporary data directory with one episode.
func setupTestEnv(t *testing.T, backend string) *ops.Env {
	t.Helper()
	tmpDir := t.TempDir()
	episodesDir := filepath.Join(tmpDir, "episodes")
	if err := os.MkdirAll(episodesDir, 0700); err != nil {
		t.Fatalf("failed to create episodes dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(episodesDir, "episode01_en.json"), []byte(testEpisode), 0600); err != nil {
		t.Fatalf("failed to write episode: %v", err)
	}

	database, err := db.Init(tmpDir)
	if err != nil {
		t.Fatalf("failed to init test db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	cfg := config.DefaultConfig()
	cfg.SaveBackend = backend
	return &ops.Env{
		Config:   cfg,
		Episodes: episode.NewDir(episodesDir, nil),
		DB:       database,
		DataDir:  tmpDir,
	}
}

// run executes the CLI with the given args and stdin, returning stdout.
func run(t *testing.T, env *ops.Env, stdin string, args ...string) (string, error) {
	t.Helper()
	app := newCLIApp(env)
	var out bytes.Buffer
	app.Writer = &out
	app.ErrWriter = &bytes.Buffer{}
	app.Reader = strings.NewReader(stdin)
	err := app.Run(append([]string{"nos"}, args...))
	return out.String(), err
}

func TestCLIEpisodes(t *testing.T) {
	env := setupTestEnv(t, config.BackendFile)

	out, err := run(t, env, "", "episodes")
	if err != nil {
		t.Fatalf("episodes command failed: %v", err)
	}

	var output ops.ListEpisodesOutput
	if err := json.Unmarshal([]byte(out), &output); err != nil {
		t.Fatalf("failed to parse output: %v\nOutput: %s", err, out)
	}
	if len(output.Episodes) != 1 || output.Episodes[0].Title != "The Static" {
		t.Errorf("unexpected episodes: %+v", output.Episodes)
	}
}

func TestCLIValidate(t *testing.T) {
	env := setupTestEnv(t, config.BackendFile)

	out, err := run(t, env, "", "validate", "1")
	if err != nil {
		t.Fatalf("validate command failed: %v", err)
	}
	var output ops.ValidateOutput
	if err := json.Unmarshal([]byte(out), &output); err != nil {
		t.Fatalf("failed to parse output: %v\nOutput: %s", err, out)
	}
	if output.Events != 3 {
		t.Errorf("events = %d, want 3", output.Events)
	}

	if _, err := run(t, env, "", "validate"); err == nil {
		t.Error("expected error without episode number")
	}
	if _, err := run(t, env, "", "validate", "zero"); err == nil {
		t.Error("expected error for non-numeric episode")
	}
}

func TestCLIPlay(t *testing.T) {
	env := setupTestEnv(t, config.BackendSQLite)

	out, err := run(t, env, "1\ns 2\nq\n", "play")
	if err != nil {
		t.Fatalf("play command failed: %v", err)
	}

	for _, want := range []string{
		"== Episode 1: The Static ==",
		"Chapter 1: Cold",
		"[Attic]",
		"Radio hiss.",
		"  1) tune in",
		"♪ Tape unlocked: tape_02",
		"A voice.",
		"Saved to slot 2: A voice.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\nOutput:\n%s", want, out)
		}
	}

	// Resume picks up at the saved event
	out, err = run(t, env, "1\nq\n", "play", "--resume", "--slot", "2")
	if err != nil {
		t.Fatalf("resume failed: %v", err)
	}
	if !strings.Contains(out, "A voice.") || !strings.Contains(out, "*** The End ***") {
		t.Errorf("unexpected resume output:\n%s", out)
	}
}

func TestCLIPlay_ErrorsDoNotEndGame(t *testing.T) {
	env := setupTestEnv(t, config.BackendFile)

	out, err := run(t, env, "9\nxyzzy\n2\n1\n", "play")
	if err != nil {
		t.Fatalf("play command failed: %v", err)
	}
	if !strings.Contains(out, "[INVALID_CHOICE]") {
		t.Errorf("expected INVALID_CHOICE in output:\n%s", out)
	}
	if !strings.Contains(out, "[INVALID_REQUEST] unknown command") {
		t.Errorf("expected unknown command in output:\n%s", out)
	}
	// "switch off" ends the episode; further choices are refused
	if !strings.Contains(out, "*** The End ***") || !strings.Contains(out, "[NOT_IN_EVENT]") {
		t.Errorf("expected ending then NOT_IN_EVENT:\n%s", out)
	}
}

func TestCLISavesAndTranscript(t *testing.T) {
	env := setupTestEnv(t, config.BackendFile)

	if _, err := run(t, env, "", "transcript"); err == nil {
		t.Error("expected error for transcript without a save")
	}

	if _, err := run(t, env, "1\ns\nq\n", "play"); err != nil {
		t.Fatalf("play command failed: %v", err)
	}

	out, err := run(t, env, "", "saves")
	if err != nil {
		t.Fatalf("saves command failed: %v", err)
	}
	var saves ops.ListSavesOutput
	if err := json.Unmarshal([]byte(out), &saves); err != nil {
		t.Fatalf("failed to parse output: %v\nOutput: %s", err, out)
	}
	if len(saves.Saves) != 1 || saves.Saves[0].EventID != 2 {
		t.Errorf("unexpected saves: %+v", saves.Saves)
	}

	out, err = run(t, env, "", "transcript")
	if err != nil {
		t.Fatalf("transcript command failed: %v", err)
	}
	if !strings.HasPrefix(out, "# Episode 1: The Static") || !strings.Contains(out, "tune in") {
		t.Errorf("unexpected transcript:\n%s", out)
	}

	out, err = run(t, env, "", "transcript", "--format", "html", "--write")
	if err != nil {
		t.Fatalf("transcript --write failed: %v", err)
	}
	var written ops.TranscriptOutput
	if err := json.Unmarshal([]byte(out), &written); err != nil {
		t.Fatalf("failed to parse output: %v\nOutput: %s", err, out)
	}
	if _, err := os.Stat(written.Path); err != nil {
		t.Errorf("transcript not written: %v", err)
	}

	if _, err := run(t, env, "", "save-delete"); err != nil {
		t.Fatalf("save-delete failed: %v", err)
	}
	out, _ = run(t, env, "", "saves")
	if !strings.Contains(out, `"saves": []`) {
		t.Errorf("expected no saves after delete, got %s", out)
	}
}

func TestCLITapes(t *testing.T) {
	env := setupTestEnv(t, config.BackendFile)

	if _, err := run(t, env, "1\nq\n", "play"); err != nil {
		t.Fatalf("play command failed: %v", err)
	}

	out, err := run(t, env, "", "tapes")
	if err != nil {
		t.Fatalf("tapes command failed: %v", err)
	}
	var output ops.ListTapesOutput
	if err := json.Unmarshal([]byte(out), &output); err != nil {
		t.Fatalf("failed to parse output: %v\nOutput: %s", err, out)
	}
	if output.Unlocked != 2 {
		t.Errorf("unlocked = %d, want 2 (tape_01 plus the tape unlocked in play)", output.Unlocked)
	}
}

func TestCLIErrorHandling(t *testing.T) {
	env := setupTestEnv(t, config.BackendSQLite)

	t.Run("unknown episode returns error", func(t *testing.T) {
		_, err := run(t, env, "", "validate", "7")
		if err == nil || !strings.Contains(err.Error(), "[NOT_FOUND]") {
			t.Errorf("expected NOT_FOUND, got %v", err)
		}
	})

	t.Run("slot out of range returns error", func(t *testing.T) {
		_, err := run(t, env, "", "save-delete", "--slot", "11")
		if err == nil || !strings.Contains(err.Error(), "[INVALID_REQUEST]") {
			t.Errorf("expected INVALID_REQUEST, got %v", err)
		}
	})

	t.Run("resume without save returns error", func(t *testing.T) {
		if _, err := run(t, env, "", "play", "--resume", "--slot", "4"); err == nil {
			t.Error("expected error, got nil")
		}
	})
}

func TestOutputError(t *testing.T) {
	err := outputError(fmt.Errorf("loading: %w", errors.NewEventNotFound(4)))
	if !strings.HasPrefix(err.Error(), "[EVENT_NOT_FOUND]") {
		t.Errorf("wrapped engine error lost its code: %v", err)
	}

	err = outputError(fmt.Errorf("plain failure"))
	if err.Error() != "plain failure" {
		t.Errorf("plain error = %q", err.Error())
	}
}

// TestIsCLIMode tests the isCLIMode function.
func TestIsCLIMode(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected bool
	}{
		{"no args", []string{"nos"}, false},
		{"play command", []string{"nos", "play"}, true},
		{"save-delete command", []string{"nos", "save-delete"}, true},
		{"serve command", []string{"nos", "serve"}, true},
		{"help flag", []string{"nos", "--help"}, true},
		{"version flag", []string{"nos", "--version"}, true},
		{"short help flag", []string{"nos", "-h"}, true},
		{"short version flag", []string{"nos", "-v"}, true},
		{"unknown arg defaults to MCP", []string{"nos", "--unknown"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oldArgs := os.Args
			defer func() { os.Args = oldArgs }()

			os.Args = tt.args
			if result := isCLIMode(); result != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, result)
			}
		})
	}
}

// TestIsHelpOrVersion tests the isHelpOrVersion function.
func TestIsHelpOrVersion(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected bool
	}{
		{"no args", []string{"nos"}, false},
		{"help flag", []string{"nos", "--help"}, true},
		{"short help flag", []string{"nos", "-h"}, true},
		{"version flag", []string{"nos", "--version"}, true},
		{"short version flag", []string{"nos", "-v"}, true},
		{"help subcommand", []string{"nos", "help"}, true},
		{"play command is not help", []string{"nos", "play"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oldArgs := os.Args
			defer func() { os.Args = oldArgs }()

			os.Args = tt.args
			if result := isHelpOrVersion(); result != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, result)
			}
		})
	}
}
