package wdb

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/dustin/go-humanize"
	"github.com/vmihailenco/msgpack/v5"
	"go.etcd.io/bbolt"
)

const (
	snapshotDataBucket = "snapshots"
	snapshotMetaBucket = "snapshot_meta"
)

// SnapshotMeta describes a saved World. It is stored next to the encoded
// data and is used to verify it on load.
type SnapshotMeta struct {
	Name        string    `msgpack:"n"`
	Size        int       `msgpack:"sz"`
	Checksum    uint64    `msgpack:"ck"`
	SavedAt     time.Time `msgpack:"at"`
	Databases   int       `msgpack:"dbs"`
	Collections int       `msgpack:"cols"`
	Entries     int       `msgpack:"ents"`
}

type SnapshotOptions struct {
	Context   context.Context
	Logger    *slog.Logger
	Now       func() time.Time
	Verbose   bool
	IsTesting bool
	Timeout   time.Duration
}

// SnapshotStore keeps named binary encodings of Worlds in a key-value store.
type SnapshotStore struct {
	st      storage
	ctx     context.Context
	logger  *slog.Logger
	now     func() time.Time
	verbose bool
}

func newSnapshotStore(st storage, opt SnapshotOptions) *SnapshotStore {
	if opt.Context == nil {
		opt.Context = context.Background()
	}
	if opt.Logger == nil {
		opt.Logger = slog.Default()
	}
	if opt.Now == nil {
		opt.Now = time.Now
	}
	return &SnapshotStore{
		st:      st,
		ctx:     opt.Context,
		logger:  opt.Logger,
		now:     opt.Now,
		verbose: opt.Verbose,
	}
}

// OpenSnapshotStore opens (creating if necessary) a Bolt file at path.
func OpenSnapshotStore(path string, opt SnapshotOptions) (*SnapshotStore, error) {
	bopt := &bbolt.Options{}
	*bopt = *bbolt.DefaultOptions
	bopt.Timeout = 10 * time.Second
	if opt.Timeout != 0 {
		bopt.Timeout = opt.Timeout
	}
	if opt.IsTesting {
		bopt.NoSync = true
		bopt.NoFreelistSync = true
	} else {
		bopt.FreelistType = bbolt.FreelistMapType
	}

	bdb, err := bbolt.Open(path, 0666, bopt)
	if err != nil {
		return nil, fmt.Errorf("wdb: snapshots: %w", err)
	}
	return newSnapshotStore(newBoltStorage(bdb), opt), nil
}

// NewMemSnapshotStore returns a store that lives only in memory.
func NewMemSnapshotStore(opt SnapshotOptions) *SnapshotStore {
	return newSnapshotStore(newMemStorage(), opt)
}

func (ss *SnapshotStore) Close() error {
	return ss.st.Close()
}

func (ss *SnapshotStore) update(f func(tx storageTx) error) error {
	tx, err := ss.st.BeginTx(true)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	err = f(tx)
	if err != nil {
		return err
	}
	return tx.Commit()
}

func (ss *SnapshotStore) view(f func(tx storageTx) error) error {
	tx, err := ss.st.BeginTx(false)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	return f(tx)
}

// Save encodes w and stores it under name, replacing any previous snapshot.
func (ss *SnapshotStore) Save(name string, w *World) (SnapshotMeta, error) {
	if name == "" {
		return SnapshotMeta{}, fmt.Errorf("wdb: snapshot name required")
	}
	data, err := w.MarshalBinary()
	if err != nil {
		return SnapshotMeta{}, fmt.Errorf("wdb: snapshot %s: %w", name, err)
	}
	stats := w.Stats()
	meta := SnapshotMeta{
		Name:        name,
		Size:        len(data),
		Checksum:    xxhash.Sum64(data),
		SavedAt:     ss.now().UTC(),
		Databases:   stats.Databases,
		Collections: stats.Collections,
		Entries:     stats.Entries,
	}
	rawMeta, err := msgpack.Marshal(&meta)
	if err != nil {
		return SnapshotMeta{}, fmt.Errorf("wdb: snapshot %s: meta: %w", name, err)
	}

	err = ss.update(func(tx storageTx) error {
		dataB, err := tx.CreateBucket(snapshotDataBucket)
		if err != nil {
			return err
		}
		metaB, err := tx.CreateBucket(snapshotMetaBucket)
		if err != nil {
			return err
		}
		if err := dataB.Put([]byte(name), data); err != nil {
			return err
		}
		return metaB.Put([]byte(name), rawMeta)
	})
	if err != nil {
		return SnapshotMeta{}, fmt.Errorf("wdb: snapshot %s: %w", name, err)
	}

	if ss.verbose {
		ss.logger.LogAttrs(ss.ctx, slog.LevelDebug, "wdb: snapshot saved", slog.String("snapshot", name), slog.String("size", humanize.Bytes(uint64(meta.Size))), slog.Int("dbs", meta.Databases), slog.Int("entries", meta.Entries))
	}
	return meta, nil
}

// Load returns the World saved under name. A missing snapshot fails with
// ErrSnapshotNotFound; a corrupted one with ErrMalformedStream.
func (ss *SnapshotStore) Load(name string) (*World, SnapshotMeta, error) {
	var data []byte
	var meta SnapshotMeta
	err := ss.view(func(tx storageTx) error {
		dataB, metaB := tx.Bucket(snapshotDataBucket), tx.Bucket(snapshotMetaBucket)
		if dataB == nil || metaB == nil {
			return ErrSnapshotNotFound
		}
		raw := dataB.Get([]byte(name))
		rawMeta := metaB.Get([]byte(name))
		if raw == nil || rawMeta == nil {
			return ErrSnapshotNotFound
		}
		if err := msgpack.Unmarshal(rawMeta, &meta); err != nil {
			return dataErrf(slices.Clone(rawMeta), 0, err, "invalid snapshot meta")
		}
		data = slices.Clone(raw)
		return nil
	})
	if err != nil {
		return nil, SnapshotMeta{}, fmt.Errorf("wdb: snapshot %s: %w", name, err)
	}

	if len(data) != meta.Size {
		return nil, meta, fmt.Errorf("wdb: snapshot %s: %w", name, malformedf(data, 0, "got %d bytes, expected %d", len(data), meta.Size))
	}
	if sum := xxhash.Sum64(data); sum != meta.Checksum {
		return nil, meta, fmt.Errorf("wdb: snapshot %s: %w", name, malformedf(data, 0, "checksum %016x, expected %016x", sum, meta.Checksum))
	}
	w, err := DecodeWorld(data)
	if err != nil {
		return nil, meta, fmt.Errorf("wdb: snapshot %s: %w", name, err)
	}

	if ss.verbose {
		ss.logger.LogAttrs(ss.ctx, slog.LevelDebug, "wdb: snapshot loaded", slog.String("snapshot", name), slog.String("size", humanize.Bytes(uint64(meta.Size))), slog.Time("saved_at", meta.SavedAt))
	}
	return w, meta, nil
}

// List returns the metadata of all snapshots ordered by name.
func (ss *SnapshotStore) List() ([]SnapshotMeta, error) {
	var result []SnapshotMeta
	err := ss.view(func(tx storageTx) error {
		metaB := tx.Bucket(snapshotMetaBucket)
		if metaB == nil {
			return nil
		}
		result = make([]SnapshotMeta, 0, metaB.KeyCount())
		return metaB.ForEach(func(k, v []byte) error {
			var meta SnapshotMeta
			if err := msgpack.Unmarshal(v, &meta); err != nil {
				return dataErrf(slices.Clone(v), 0, err, "invalid snapshot meta for %q", k)
			}
			result = append(result, meta)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("wdb: snapshots: %w", err)
	}
	return result, nil
}

// Delete removes the snapshot if present.
func (ss *SnapshotStore) Delete(name string) error {
	return ss.update(func(tx storageTx) error {
		for _, bn := range []string{snapshotDataBucket, snapshotMetaBucket} {
			if b := tx.Bucket(bn); b != nil {
				if err := b.Delete([]byte(name)); err != nil {
					return err
				}
			}
		}
		return nil
	})
}
