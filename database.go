package wdb

import (
	"fmt"
	"iter"
	"slices"
)

// Database is a named ordered list of collections. A collection's position
// is its index for external lookups, so collections are only ever appended.
type Database struct {
	name        string
	collections []*Collection
}

func NewDatabase(name string) *Database {
	return &Database{name: name}
}

func (db *Database) Name() string {
	return db.name
}

func (db *Database) Len() int {
	return len(db.collections)
}

func (db *Database) AddCollection(c *Collection) error {
	if c == nil {
		panic("nil collection")
	}
	if err := checkLen("collection name", c.name); err != nil {
		return err
	}
	if len(db.collections) >= maxCount {
		return capacityErrf("database %q already has %d collections", db.name, len(db.collections))
	}
	if slices.Contains(db.collections, c) {
		panic(fmt.Errorf("collection %q added to database %q twice", c.name, db.name))
	}
	db.collections = append(db.collections, c)
	return nil
}

func (db *Database) Collection(i int) (*Collection, error) {
	if i < 0 || i >= len(db.collections) {
		return nil, fmt.Errorf("%w: index %d, database %q has %d", ErrCollectionNotFound, i, db.name, len(db.collections))
	}
	return db.collections[i], nil
}

// CollectionNamed returns the first collection with the given name.
func (db *Database) CollectionNamed(name string) (*Collection, int, error) {
	for i, c := range db.collections {
		if c.name == name {
			return c, i, nil
		}
	}
	return nil, -1, fmt.Errorf("%w: %q in database %q", ErrCollectionNotFound, name, db.name)
}

func (db *Database) Collections() iter.Seq2[int, *Collection] {
	return slices.All(db.collections)
}

func (db *Database) clone() *Database {
	out := &Database{name: db.name, collections: make([]*Collection, len(db.collections))}
	for i, c := range db.collections {
		out.collections[i] = c.clone()
	}
	return out
}

func (db *Database) AppendBinary(buf []byte) ([]byte, error) {
	var err error
	buf, err = appendLString(buf, "database name", db.name)
	if err != nil {
		return buf, err
	}
	buf, err = appendCount(buf, "collection", len(db.collections))
	if err != nil {
		return buf, err
	}
	for _, c := range db.collections {
		buf, err = c.AppendBinary(buf)
		if err != nil {
			return buf, err
		}
	}
	return buf, nil
}
