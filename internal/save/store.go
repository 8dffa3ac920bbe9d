package save

// Store persists a single save.
//
// Load returns nil, nil when nothing has been saved. A corrupt save is
// logged and also reported as nil, nil so a bad file never blocks a new game.
// Delete is idempotent.
type Store interface {
	Save(s *Snapshot) error
	Load() (*Snapshot, error)
	Exists() (bool, error)
	Delete() error
}
