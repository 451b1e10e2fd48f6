// Package server exposes a shared wdb.World over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/andreyvit/wdb"
)

type Options struct {
	Context      context.Context
	Logger       *slog.Logger
	Store        *wdb.SnapshotStore // optional
	SnapshotName string
	Verbose      bool
}

// Service owns a World and serializes access to it with one reader/writer
// lock over the whole tree. Readers run concurrently; any write excludes
// everything else.
type Service struct {
	ctx          context.Context
	logger       *slog.Logger
	store        *wdb.SnapshotStore
	snapshotName string
	verbose      bool

	mu    sync.RWMutex
	world *wdb.World

	ReadCount  atomic.Uint64
	WriteCount atomic.Uint64
}

func New(w *wdb.World, opt Options) *Service {
	if w == nil {
		w = wdb.NewWorld()
	}
	if opt.Context == nil {
		opt.Context = context.Background()
	}
	if opt.Logger == nil {
		opt.Logger = slog.Default()
	}
	if opt.SnapshotName == "" {
		opt.SnapshotName = DefaultSnapshotName
	}
	return &Service{
		ctx:          opt.Context,
		logger:       opt.Logger,
		store:        opt.Store,
		snapshotName: opt.SnapshotName,
		verbose:      opt.Verbose,
		world:        w,
	}
}

func (s *Service) Read(f func(w *wdb.World)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.ReadCount.Add(1)
	f(s.world)
}

func (s *Service) ReadErr(f func(w *wdb.World) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.ReadCount.Add(1)
	return f(s.world)
}

func (s *Service) Write(f func(w *wdb.World) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.WriteCount.Add(1)
	return f(s.world)
}

// GetString returns the string stored under key. Missing databases,
// collections and keys fail with distinct wdb.ErrNotFound errors; non-string
// values with wdb.ErrTypeMismatch.
func (s *Service) GetString(dbIdx, collIdx uint8, key string) (string, error) {
	var result string
	err := s.ReadErr(func(w *wdb.World) error {
		c, err := w.Collection(int(dbIdx), int(collIdx))
		if err != nil {
			return err
		}
		result, err = c.GetString(key)
		return err
	})
	return result, err
}

// SetString upserts a string value.
func (s *Service) SetString(dbIdx, collIdx uint8, key, value string) error {
	err := s.Write(func(w *wdb.World) error {
		c, err := w.Collection(int(dbIdx), int(collIdx))
		if err != nil {
			return err
		}
		return c.Add(key, wdb.String(value))
	})
	if err == nil && s.verbose {
		s.logger.LogAttrs(s.ctx, slog.LevelDebug, "wdb: set", slog.Int("db", int(dbIdx)), slog.Int("coll", int(collIdx)), slog.String("key", key))
	}
	return err
}

// Delete removes key; a missing key is not an error.
func (s *Service) Delete(dbIdx, collIdx uint8, key string) error {
	return s.Write(func(w *wdb.World) error {
		c, err := w.Collection(int(dbIdx), int(collIdx))
		if err != nil {
			return err
		}
		c.Delete(key)
		return nil
	})
}

// AddDatabase appends an empty database and returns its index.
func (s *Service) AddDatabase(name string) (int, error) {
	var idx int
	err := s.Write(func(w *wdb.World) error {
		idx = w.Len()
		return w.AddDatabase(wdb.NewDatabase(name))
	})
	return idx, err
}

// AddCollection appends an empty collection and returns its index.
func (s *Service) AddCollection(dbIdx uint8, name string) (int, error) {
	var idx int
	err := s.Write(func(w *wdb.World) error {
		db, err := w.Database(int(dbIdx))
		if err != nil {
			return err
		}
		idx = db.Len()
		return db.AddCollection(wdb.NewCollection(name))
	})
	return idx, err
}

// Snapshot returns the binary encoding of the current World.
func (s *Service) Snapshot() ([]byte, error) {
	var data []byte
	err := s.ReadErr(func(w *wdb.World) error {
		var err error
		data, err = w.MarshalBinary()
		return err
	})
	return data, err
}

func (s *Service) Dump(f wdb.DumpFlags) string {
	var result string
	s.Read(func(w *wdb.World) {
		result = w.Dump(f)
	})
	return result
}

// Save stores the current World in the snapshot store. The lock is held only
// while cloning the tree.
func (s *Service) Save() (wdb.SnapshotMeta, error) {
	if s.store == nil {
		return wdb.SnapshotMeta{}, fmt.Errorf("wdb: no snapshot store configured")
	}
	var clone *wdb.World
	s.Read(func(w *wdb.World) {
		clone = w.Clone()
	})
	meta, err := s.store.Save(s.snapshotName, clone)
	if err != nil {
		s.logger.LogAttrs(s.ctx, slog.LevelError, "wdb: save failed", slog.String("snapshot", s.snapshotName), slog.Any("err", err))
		return meta, err
	}
	s.logger.LogAttrs(s.ctx, slog.LevelInfo, "wdb: saved", slog.String("snapshot", s.snapshotName), slog.Int("size", meta.Size), slog.Int("dbs", meta.Databases))
	return meta, nil
}

// Restore replaces the World with the stored snapshot. It returns false
// without error when there is no snapshot yet.
func (s *Service) Restore() (bool, error) {
	if s.store == nil {
		return false, nil
	}
	loaded, meta, err := s.store.Load(s.snapshotName)
	if errors.Is(err, wdb.ErrSnapshotNotFound) {
		return false, nil
	} else if err != nil {
		return false, err
	}
	s.mu.Lock()
	s.world = loaded
	s.mu.Unlock()
	s.logger.LogAttrs(s.ctx, slog.LevelInfo, "wdb: restored", slog.String("snapshot", s.snapshotName), slog.Int("size", meta.Size), slog.Time("saved_at", meta.SavedAt))
	return true, nil
}
