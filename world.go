package wdb

import (
	"fmt"
	"io"
	"iter"
	"slices"
)

// World is the root of the tree. The zero value is an empty World.
type World struct {
	databases []*Database
}

func NewWorld() *World {
	return &World{}
}

func (w *World) Len() int {
	return len(w.databases)
}

// AddDatabase appends db. The database count is stored in a single byte, so
// the 256th database fails with ErrCapacityExceeded.
func (w *World) AddDatabase(db *Database) error {
	if db == nil {
		panic("nil database")
	}
	if err := checkLen("database name", db.name); err != nil {
		return err
	}
	if len(w.databases) >= maxCount {
		return capacityErrf("world already has %d databases", len(w.databases))
	}
	if slices.Contains(w.databases, db) {
		panic(fmt.Errorf("database %q added twice", db.name))
	}
	w.databases = append(w.databases, db)
	return nil
}

func (w *World) Database(i int) (*Database, error) {
	if i < 0 || i >= len(w.databases) {
		return nil, fmt.Errorf("%w: index %d, world has %d", ErrDatabaseNotFound, i, len(w.databases))
	}
	return w.databases[i], nil
}

// DatabaseNamed returns the first database with the given name.
func (w *World) DatabaseNamed(name string) (*Database, int, error) {
	for i, db := range w.databases {
		if db.name == name {
			return db, i, nil
		}
	}
	return nil, -1, fmt.Errorf("%w: %q", ErrDatabaseNotFound, name)
}

// Collection resolves a database index and a collection index in one step.
func (w *World) Collection(dbIdx, collIdx int) (*Collection, error) {
	db, err := w.Database(dbIdx)
	if err != nil {
		return nil, err
	}
	return db.Collection(collIdx)
}

func (w *World) Databases() iter.Seq2[int, *Database] {
	return slices.All(w.databases)
}

// Clone returns a deep copy sharing nothing with w.
func (w *World) Clone() *World {
	out := &World{databases: make([]*Database, len(w.databases))}
	for i, db := range w.databases {
		out.databases[i] = db.clone()
	}
	return out
}

func (w *World) AppendBinary(buf []byte) ([]byte, error) {
	var err error
	buf, err = appendCount(buf, "database", len(w.databases))
	if err != nil {
		return buf, err
	}
	for _, db := range w.databases {
		buf, err = db.AppendBinary(buf)
		if err != nil {
			return buf, err
		}
	}
	return buf, nil
}

func (w *World) MarshalBinary() ([]byte, error) {
	return w.AppendBinary(nil)
}

// WriteTo encodes w and writes it to out in one call.
func (w *World) WriteTo(out io.Writer) (int64, error) {
	buf, err := w.MarshalBinary()
	if err != nil {
		return 0, err
	}
	n, err := out.Write(buf)
	return int64(n), err
}

// UnmarshalBinary replaces the content of w with the decoded data. On error
// w is left untouched.
func (w *World) UnmarshalBinary(data []byte) error {
	decoded, err := DecodeWorld(data)
	if err != nil {
		return err
	}
	w.databases = decoded.databases
	return nil
}

func ReadWorld(r io.Reader) (*World, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return DecodeWorld(data)
}
