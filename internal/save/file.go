package save

import (
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/FabienROFFET/Noise-Over-Silence/internal/errors"
	"github.com/FabienROFFET/Noise-Over-Silence/internal/logging"
)

// FileName is the save file inside the data directory.
const FileName = "savegame.json"

// FileStore keeps one save as a JSON file. Every Save overwrites it wholesale.
type FileStore struct {
	path   string
	logger *slog.Logger
	now    func() time.Time
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates a store writing dir/savegame.json.
func NewFileStore(dir string, logger *slog.Logger) *FileStore {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &FileStore{
		path:   filepath.Join(dir, FileName),
		logger: logger,
		now:    time.Now,
	}
}

// Path returns the save file location.
func (f *FileStore) Path() string {
	return f.path
}

// Save writes the snapshot. The previous save survives if writing fails.
func (f *FileStore) Save(s *Snapshot) error {
	stamp(s, f.now())
	data, err := encode(s)
	if err != nil {
		return errors.NewInvalidRequest(fmt.Sprintf("cannot save: %v", err))
	}

	if err := WriteFileAtomic(f.path, data); err != nil {
		return err
	}

	f.logger.Debug("game saved", "path", f.path, "episode", s.EpisodeNumber, "event_id", s.EventID)
	return nil
}

// Load returns the saved snapshot, or nil when there is none or it is unreadable.
func (f *FileStore) Load() (*Snapshot, error) {
	s, err := f.LoadStrict()
	if errors.Is(err, errors.ErrCorruptSave) {
		logging.LogError(f.logger, "ignoring corrupt save", err)
		return nil, nil
	}
	return s, err
}

// LoadStrict is Load without the forgiveness: a corrupt file is a CORRUPT_SAVE error.
func (f *FileStore) LoadStrict() (*Snapshot, error) {
	file, err := openFileNoFollowRead(f.path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	s, err := decode(data)
	if err != nil {
		return nil, errors.NewCorruptSave(f.path, err)
	}
	return s, nil
}

// Exists reports whether a save file is present. It does not check the contents.
func (f *FileStore) Exists() (bool, error) {
	_, err := os.Lstat(f.path)
	if err == nil {
		return true, nil
	}
	if stderrors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, errors.NewInternal(err)
}

// Delete removes the save file. Deleting a missing save is not an error.
func (f *FileStore) Delete() error {
	if err := os.Remove(f.path); err != nil && !stderrors.Is(err, fs.ErrNotExist) {
		return errors.NewInternal(err)
	}
	return nil
}
