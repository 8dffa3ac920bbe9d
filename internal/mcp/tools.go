package mcp

import "github.com/mark3labs/mcp-go/mcp"

var episodeListToolDef = mcp.NewTool(
	"episode_list",
	mcp.WithDescription("List the episodes in the episodes directory with their languages and titles."),
)

var episodeValidateToolDef = mcp.NewTool(
	"episode_validate",
	mcp.WithDescription("Load an episode and check its event graph. Reports endings and unreachable events; fails on malformed documents, duplicate ids or dangling references."),
	mcp.WithNumber("episode", mcp.Required(), mcp.Min(1), mcp.Description("Episode number")),
	mcp.WithString("language", mcp.Description("Language code, e.g. en or cs (default: configured language)")),
	mcp.WithBoolean("reload", mcp.Description("Drop cached episodes so edits on disk are seen")),
)

var sessionStartToolDef = mcp.NewTool(
	"session_start",
	mcp.WithDescription("Start playing an episode, or resume a saved game. Replaces any game in progress."),
	mcp.WithNumber("episode", mcp.Min(1), mcp.Description("Episode number (default: configured start episode)")),
	mcp.WithString("language", mcp.Description("Language code (default: configured language)")),
	mcp.WithNumber("start_event", mcp.Description("Event id to start at (default: first event)")),
	mcp.WithBoolean("resume", mcp.Description("Resume the game saved in slot instead of starting fresh")),
	mcp.WithNumber("slot", mcp.Min(0), mcp.Max(9), mcp.Description("Save slot for resume (sqlite backend only; 0 is the autosave)")),
)

var sessionChooseToolDef = mcp.NewTool(
	"session_choose",
	mcp.WithDescription("Take one of the current event's choices by its index."),
	mcp.WithNumber("index", mcp.Required(), mcp.Min(0), mcp.Description("Choice index as listed in the display")),
)

var sessionStateToolDef = mcp.NewTool(
	"session_state",
	mcp.WithDescription("Show the current event, stats, inventory and available choices."),
)

var sessionRestartToolDef = mcp.NewTool(
	"session_restart",
	mcp.WithDescription("Restart the loaded episode from its first event with a fresh player."),
)

var sessionTranscriptToolDef = mcp.NewTool(
	"session_transcript",
	mcp.WithDescription("Render the playthrough so far as Markdown or HTML."),
	mcp.WithString("format", mcp.Enum("md", "html"), mcp.Description("Output format (default: md)")),
	mcp.WithBoolean("write", mcp.Description("Write to the transcripts directory instead of returning the content")),
	mcp.WithString("path", mcp.Description("Destination for write; must be directly in the transcripts directory")),
)

var saveStoreToolDef = mcp.NewTool(
	"save_store",
	mcp.WithDescription("Save the game in progress."),
	mcp.WithNumber("slot", mcp.Min(0), mcp.Max(9), mcp.Description("Save slot (sqlite backend only; default 0)")),
)

var saveLoadToolDef = mcp.NewTool(
	"save_load",
	mcp.WithDescription("Show a saved game without resuming it."),
	mcp.WithNumber("slot", mcp.Min(0), mcp.Max(9), mcp.Description("Save slot (sqlite backend only; default 0)")),
)

var saveDeleteToolDef = mcp.NewTool(
	"save_delete",
	mcp.WithDescription("Delete a saved game. Deleting an empty slot succeeds."),
	mcp.WithNumber("slot", mcp.Min(0), mcp.Max(9), mcp.Description("Save slot (sqlite backend only; default 0)")),
)

var saveListToolDef = mcp.NewTool(
	"save_list",
	mcp.WithDescription("List saved games, newest first."),
)

var tapeListToolDef = mcp.NewTool(
	"tape_list",
	mcp.WithDescription("List the tape collection. Tapes held by the game in progress are unlocked."),
)
