package save

import (
	"crypto/rand"
	"encoding/hex"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"

	"github.com/FabienROFFET/Noise-Over-Silence/internal/errors"
)

// WriteFileAtomic replaces path with data. The old content survives if writing fails,
// and a symlink at path is refused rather than followed.
func WriteFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to create directory: %w", err))
	}

	// Write to temp file first, then atomic rename to preserve existing file on failure
	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to generate temp file name: %w", err))
	}
	tempPath := path + "." + hex.EncodeToString(randBytes) + ".tmp"
	file, err := openFileNoFollow(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return errors.NewInternal(fmt.Errorf("failed to create temp file: %w", err))
	}

	success := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	if _, err := file.Write(data); err != nil {
		return errors.NewInternal(err)
	}
	if err := file.Sync(); err != nil {
		return errors.NewInternal(err)
	}
	// Close before rename (required on Windows)
	if err := file.Close(); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to close temp file: %w", err))
	}
	file = nil

	// os.Rename would follow a symlink at the destination
	if info, err := os.Lstat(path); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return errors.NewInvalidRequest("destination is a symlink")
	}

	if err := os.Rename(tempPath, path); err != nil {
		// Windows refuses to rename over an existing file
		if runtime.GOOS != "windows" {
			return errors.NewInternal(fmt.Errorf("failed to finalize write: %w", err))
		}
		if rmErr := os.Remove(path); rmErr != nil && !stderrors.Is(rmErr, fs.ErrNotExist) {
			return errors.NewInternal(fmt.Errorf("failed to replace file: %w", rmErr))
		}
		if err := os.Rename(tempPath, path); err != nil {
			return errors.NewInternal(fmt.Errorf("failed to finalize write: %w", err))
		}
	}

	success = true
	return nil
}
