// Package canonstore persists canonical interpretations keyed by their
// fingerprint, so that isomorphism filtering can skip classes seen in
// earlier runs.
//
// # Storage Layout
//
//	canon/<fingerprint>  ->  YAML-encoded Record
//
// Thread Safety: A Store is safe for concurrent use. Badger transactions
// serialize conflicting writes.
package canonstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/gitrdm/gofinite/pkg/interp"
)

const keyPrefix = "canon/"

// maxConflictRetries bounds PutIfAbsent retries on transaction conflicts.
const maxConflictRetries = 5

var (
	// ErrNotFound is returned when no record exists for a fingerprint.
	ErrNotFound = errors.New("canonical record not found")

	// ErrPathRequired is returned when a persistent store has no path.
	ErrPathRequired = errors.New("path is required for persistent store")
)

// Config configures a Store.
type Config struct {
	// Path is the directory for BadgerDB files.
	// Ignored when InMemory is true.
	Path string

	// InMemory enables in-memory mode (no disk persistence).
	InMemory bool

	// SyncWrites enables synchronous writes for durability.
	SyncWrites bool

	// Logger receives BadgerDB's internal logs and GC reports.
	// If nil, BadgerDB's internal logging is disabled.
	Logger *slog.Logger

	// GCInterval is how often to run value log garbage collection.
	// Set to 0 to disable.
	GCInterval time.Duration

	// GCDiscardRatio is the minimum ratio of discardable data before GC.
	GCDiscardRatio float64
}

// DefaultConfig returns settings for a persistent store at path.
func DefaultConfig(path string) Config {
	return Config{
		Path:           path,
		SyncWrites:     true,
		GCInterval:     10 * time.Minute,
		GCDiscardRatio: 0.5,
	}
}

// InMemoryConfig returns settings for a throwaway store.
func InMemoryConfig() Config {
	return Config{InMemory: true}
}

// Record is one stored canonical form.
type Record struct {
	ID          string             `yaml:"id"`
	Fingerprint string             `yaml:"fingerprint"`
	Created     time.Time          `yaml:"created"`
	Description interp.Description `yaml:"description"`
}

// badgerLogger adapts slog to badger.Logger.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

// Infof is mapped to Debug: badger reports table and level state here.
func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// Store is a fingerprint-keyed set of canonical interpretations.
type Store struct {
	db     *badger.DB
	gc     *gcRunner
	logger *slog.Logger
}

// Open opens or creates a store.
func Open(cfg Config) (*Store, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, ErrPathRequired
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("create store directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)
	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Store{db: db, logger: logger}
	if cfg.GCInterval > 0 && !cfg.InMemory {
		s.gc = newGCRunner(db, cfg.GCInterval, cfg.GCDiscardRatio, logger)
		s.gc.start()
	}
	return s, nil
}

// OpenInMemory opens a store that lives only as long as the process.
func OpenInMemory() (*Store, error) {
	return Open(InMemoryConfig())
}

// Close stops background GC and closes the database.
func (s *Store) Close() error {
	if s.gc != nil {
		s.gc.stop()
	}
	return s.db.Close()
}

func recordKey(fingerprint string) []byte {
	return []byte(keyPrefix + fingerprint)
}

func decodeRecord(item *badger.Item) (Record, error) {
	var rec Record
	err := item.Value(func(val []byte) error {
		return yaml.Unmarshal(val, &rec)
	})
	if err != nil {
		return Record{}, fmt.Errorf("decode record %s: %w", item.Key(), err)
	}
	return rec, nil
}

// PutIfAbsent stores canon under fingerprint unless a record already
// exists. It returns the stored record and whether it was newly added.
func (s *Store) PutIfAbsent(ctx context.Context, fingerprint string, canon interp.Description) (Record, bool, error) {
	key := recordKey(fingerprint)
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return Record{}, false, err
		}

		var (
			rec   Record
			added bool
		)
		err := s.db.Update(func(txn *badger.Txn) error {
			item, err := txn.Get(key)
			if err == nil {
				rec, err = decodeRecord(item)
				return err
			}
			if !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}

			rec = Record{
				ID:          uuid.NewString(),
				Fingerprint: fingerprint,
				Created:     time.Now().UTC(),
				Description: canon,
			}
			data, err := yaml.Marshal(&rec)
			if err != nil {
				return fmt.Errorf("encode record: %w", err)
			}
			added = true
			return txn.Set(key, data)
		})
		if errors.Is(err, badger.ErrConflict) && attempt < maxConflictRetries {
			s.logger.Debug("canonical store conflict, retrying",
				slog.String("fingerprint", fingerprint),
				slog.Int("attempt", attempt+1))
			continue
		}
		if err != nil {
			return Record{}, false, fmt.Errorf("put %s: %w", fingerprint, err)
		}
		return rec, added, nil
	}
}

// Get returns the record stored under fingerprint.
func (s *Store) Get(fingerprint string) (Record, error) {
	var rec Record
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(recordKey(fingerprint))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: %s", ErrNotFound, fingerprint)
		}
		if err != nil {
			return err
		}
		rec, err = decodeRecord(item)
		return err
	})
	return rec, err
}

// Has reports whether fingerprint is stored.
func (s *Store) Has(fingerprint string) (bool, error) {
	_, err := s.Get(fingerprint)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// Count returns the number of stored records.
func (s *Store) Count() (int, error) {
	n := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(keyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}

// Each calls fn for every record in fingerprint order. Iteration stops at
// the first error returned by fn.
func (s *Store) Each(fn func(Record) error) error {
	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(keyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			rec, err := decodeRecord(it.Item())
			if err != nil {
				return err
			}
			if err := fn(rec); err != nil {
				return err
			}
		}
		return nil
	})
}
