package ops

import (
	"bytes"
	"path/filepath"
	"time"

	"github.com/FabienROFFET/Noise-Over-Silence/internal/db"
	"github.com/FabienROFFET/Noise-Over-Silence/internal/errors"
	"github.com/FabienROFFET/Noise-Over-Silence/internal/save"
	"github.com/FabienROFFET/Noise-Over-Silence/internal/session"
	"github.com/FabienROFFET/Noise-Over-Silence/internal/transcript"
)

// TranscriptInput contains parameters for the transcript operations.
type TranscriptInput struct {
	Format string // "md" (default) or "html"

	// Write stores the transcript under the transcripts directory instead of returning it.
	Write bool
	Path  string // optional with Write, default: <data dir>/transcripts/<title>-<timestamp>.<ext>
}

// TranscriptOutput contains the result of the transcript operations.
type TranscriptOutput struct {
	Format  string `json:"format"`
	Content string `json:"content,omitempty"`
	Path    string `json:"path,omitempty"`
	Entries int    `json:"entries"`
}

// TranscriptDir is where written transcripts go.
func (e *Env) TranscriptDir() string {
	return filepath.Join(e.DataDir, db.TranscriptsDir)
}

// SessionTranscript renders the live session's history.
func SessionTranscript(env *Env, sess *session.Session, input TranscriptInput) (*TranscriptOutput, error) {
	ep := sess.Episode()
	if ep == nil {
		return nil, errors.NewNotInEvent(sess.Phase().String())
	}
	d := sess.Current()
	return renderTranscript(env, transcript.Document{
		EpisodeNumber: ep.ID,
		EpisodeTitle:  ep.Title,
		Language:      d.Language,
		Entries:       sess.History(),
		Ended:         d.Phase == session.Ended,
	}, input)
}

// SnapshotTranscript renders the history stored in a save.
func SnapshotTranscript(env *Env, snap *save.Snapshot, input TranscriptInput) (*TranscriptOutput, error) {
	if snap == nil {
		return nil, errors.NewInvalidRequest("no saved game")
	}
	return renderTranscript(env, transcript.Document{
		EpisodeNumber: snap.EpisodeNumber,
		EpisodeTitle:  snap.EpisodeTitle,
		Language:      snap.Language,
		Entries:       snap.History,
		Ended:         snap.Ended,
	}, input)
}

func renderTranscript(env *Env, doc transcript.Document, input TranscriptInput) (*TranscriptOutput, error) {
	format, err := transcript.ParseFormat(input.Format)
	if err != nil {
		return nil, errors.NewInvalidRequest(err.Error())
	}

	var buf bytes.Buffer
	if err := transcript.Render(&buf, doc, format); err != nil {
		return nil, errors.NewInternal(err)
	}

	out := &TranscriptOutput{Format: string(format), Entries: len(doc.Entries)}
	if !input.Write {
		out.Content = buf.String()
		return out, nil
	}

	dir := env.TranscriptDir()
	path := input.Path
	if path == "" {
		path = filepath.Join(dir, defaultTranscriptName(doc.Title(), format, time.Now()))
	}
	if err := ValidateTranscriptPath(path, format, dir); err != nil {
		return nil, err
	}
	if err := save.WriteFileAtomic(path, buf.Bytes()); err != nil {
		return nil, err
	}
	out.Path = path
	env.logger().Info("transcript written", "path", path, "entries", out.Entries)
	return out, nil
}
