package ops

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/FabienROFFET/Noise-Over-Silence/internal/errors"
	"github.com/FabienROFFET/Noise-Over-Silence/internal/transcript"
)

// ValidateTranscriptPath checks a destination for a rendered transcript.
// It checks:
// 1. Path traversal (.. sequences)
// 2. Extension (.md or .html, matching format)
// 3. Directory restriction (file must be DIRECTLY in allowedDir, no subdirectories)
// 4. Symlink safety (neither the parent dir nor the file may be a symlink)
//
// The "no subdirectories" rule rules out swapping an intermediate directory for a
// symlink between validation and the write.
func ValidateTranscriptPath(path string, format transcript.Format, allowedDir string) error {
	if path == "" {
		return errors.NewInvalidRequest("path is required")
	}

	if containsTraversal(path) {
		return errors.NewInvalidRequest("path must not contain directory traversal (..)")
	}

	cleaned := filepath.Clean(path)
	if want := extensionFor(format); filepath.Ext(cleaned) != want {
		return errors.NewInvalidRequest(fmt.Sprintf("path must have %s extension", want))
	}

	absPath, err := filepath.Abs(cleaned)
	if err != nil {
		return errors.NewInvalidRequest(fmt.Sprintf("invalid path: %v", err))
	}

	allowed, err := resolveDir(allowedDir)
	if err != nil {
		return err
	}
	parentDir := filepath.Dir(absPath)
	if parentDir != allowed {
		return errors.NewInvalidRequest(
			fmt.Sprintf("file must be directly in %s (no subdirectories)", allowed))
	}

	if info, err := os.Lstat(parentDir); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return errors.NewInvalidRequest("parent directory must not be a symlink")
	}
	if info, err := os.Lstat(absPath); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return errors.NewInvalidRequest("path must not be a symlink")
	}
	return nil
}

// resolveDir returns dir absolute and cleaned, with a symlinked dir resolved to its target.
func resolveDir(dir string) (string, error) {
	abs, err := filepath.Abs(filepath.Clean(dir))
	if err != nil {
		return "", errors.NewInvalidRequest(fmt.Sprintf("invalid transcript directory: %v", err))
	}
	if info, err := os.Lstat(abs); err == nil && info.Mode()&os.ModeSymlink != 0 {
		resolved, err := filepath.EvalSymlinks(abs)
		if err != nil {
			return "", errors.NewInvalidRequest(fmt.Sprintf("cannot resolve symlink in transcript directory: %v", err))
		}
		abs = resolved
	}
	return abs, nil
}

func extensionFor(format transcript.Format) string {
	if format == transcript.FormatHTML {
		return ".html"
	}
	return ".md"
}

// defaultTranscriptName builds <title>-<timestamp>.<ext>, e.g. episode-1-the-static-2026-10-18T101500.md
func defaultTranscriptName(title string, format transcript.Format, now time.Time) string {
	name := SanitizeForFilename(strings.ToLower(strings.Join(strings.Fields(title), "-")))
	return fmt.Sprintf("%s-%s%s", name, now.Format("2006-01-02T150405"), extensionFor(format))
}

// containsTraversal checks if path contains ".." directory traversal.
func containsTraversal(path string) bool {
	for _, part := range strings.Split(path, string(filepath.Separator)) {
		if part == ".." {
			return true
		}
	}
	// Also check for forward slashes on all platforms (e.g., user input)
	if filepath.Separator != '/' {
		for _, part := range strings.Split(path, "/") {
			if part == ".." {
				return true
			}
		}
	}
	return false
}

// SanitizeForFilename sanitizes a string for safe use in a filename.
func SanitizeForFilename(s string) string {
	s = strings.ReplaceAll(s, "/", "-")
	s = strings.ReplaceAll(s, "\\", "-")
	s = strings.ReplaceAll(s, "..", "-")
	s = strings.ReplaceAll(s, ":", "")

	// Remove null bytes and other control characters
	var result strings.Builder
	for _, r := range s {
		if r >= 32 && r != 127 {
			result.WriteRune(r)
		}
	}
	s = result.String()

	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	s = strings.Trim(s, "-")

	if s == "" {
		s = "unnamed"
	}
	return s
}
