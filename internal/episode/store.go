package episode

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"regexp"
	"slices"
	"strconv"
	"sync"

	"github.com/FabienROFFET/Noise-Over-Silence/internal/errors"
	"github.com/FabienROFFET/Noise-Over-Silence/internal/story"
)

// fileRe matches episode documents: episode01.json, episode01_en.yaml, episode12_cs.yml.
var fileRe = regexp.MustCompile(`^episode(\d{2,})(?:_([A-Za-z]{2,3}(?:-[A-Za-z0-9]+)?))?\.(json|yaml|yml)$`)

// langRe matches the language part of an episode file name.
var langRe = regexp.MustCompile(`^[A-Za-z]{2,3}(?:-[A-Za-z0-9]+)?$`)

var extensions = []string{".json", ".yaml", ".yml"}

type cacheKey struct {
	number   int
	language string
}

// Store loads episode documents from a filesystem and caches them.
// Loaded episodes are shared; callers must treat them as read-only.
type Store struct {
	fsys   fs.FS
	logger *slog.Logger

	mu    sync.Mutex
	cache map[cacheKey]*story.Episode
}

// New creates a store reading from fsys.
func New(fsys fs.FS, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{
		fsys:   fsys,
		logger: logger,
		cache:  make(map[cacheKey]*story.Episode),
	}
}

// NewDir creates a store reading from a directory on disk.
func NewDir(dir string, logger *slog.Logger) *Store {
	return New(os.DirFS(dir), logger)
}

// Load returns the episode for (number, language).
// The language-specific document wins; the unsuffixed document is the fallback.
func (s *Store) Load(number int, language string) (*story.Episode, error) {
	if number <= 0 {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("episode number must be positive, got %d", number))
	}
	if language != "" && !langRe.MatchString(language) {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("invalid language code %q", language))
	}
	key := cacheKey{number: number, language: language}

	s.mu.Lock()
	defer s.mu.Unlock()

	if ep, ok := s.cache[key]; ok {
		return ep, nil
	}

	name, data, err := s.read(number, language)
	if err != nil {
		return nil, err
	}
	format, _ := story.FormatFromName(name)

	ep, err := story.Decode(data, format)
	if err != nil {
		return nil, errors.NewParseError(name, err)
	}
	switch {
	case ep.ID == 0:
		ep.ID = number
	case ep.ID != number:
		return nil, errors.NewParseError(name, fmt.Errorf("document declares episode %d", ep.ID))
	}
	if len(ep.Events) == 0 {
		return nil, errors.NewEmptyEpisode(number)
	}
	// Empty when the unsuffixed fallback was used.
	if m := fileRe.FindStringSubmatch(name); m != nil {
		ep.Language = m[2]
	}

	s.cache[key] = ep
	s.logger.Debug("episode loaded", "file", name, "episode", number, "language", language, "events", len(ep.Events))
	return ep, nil
}

func (s *Store) read(number int, language string) (string, []byte, error) {
	for _, name := range candidates(number, language) {
		data, err := fs.ReadFile(s.fsys, name)
		if err == nil {
			return name, data, nil
		}
		if !stderrors.Is(err, fs.ErrNotExist) {
			return "", nil, errors.NewInternal(err)
		}
	}
	return "", nil, errors.NewNotFound(number, language)
}

func candidates(number int, language string) []string {
	var names []string
	if language != "" {
		for _, ext := range extensions {
			names = append(names, fmt.Sprintf("episode%02d_%s%s", number, language, ext))
		}
	}
	for _, ext := range extensions {
		names = append(names, fmt.Sprintf("episode%02d%s", number, ext))
	}
	return names
}

// ClearCache evicts every cached episode so the next Load re-reads from disk.
func (s *Store) ClearCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.cache)
}

// Cached returns the number of cached episodes.
func (s *Store) Cached() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cache)
}

// ListAvailable returns the episode numbers present, sorted and de-duplicated.
func (s *Store) ListAvailable() ([]int, error) {
	files, err := s.scan()
	if err != nil {
		return nil, err
	}
	numbers := make([]int, 0, len(files))
	for n := range files {
		numbers = append(numbers, n)
	}
	slices.Sort(numbers)
	return numbers, nil
}

// Languages returns the language codes with a dedicated document for an episode.
// An unsuffixed document is reported as "".
func (s *Store) Languages(number int) ([]string, error) {
	files, err := s.scan()
	if err != nil {
		return nil, err
	}
	langs, ok := files[number]
	if !ok {
		return nil, errors.NewNotFound(number, "")
	}
	slices.Sort(langs)
	return slices.Compact(langs), nil
}

func (s *Store) scan() (map[int][]string, error) {
	entries, err := fs.ReadDir(s.fsys, ".")
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	files := make(map[int][]string)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := fileRe.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil || n <= 0 {
			continue
		}
		files[n] = append(files[n], m[2])
	}
	return files, nil
}
