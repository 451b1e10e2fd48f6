package wdb

import (
	"iter"
	"maps"
	"slices"
)

// Collection is a named set of key/value entries. Entries have no order of
// their own; everything that enumerates them does so in bytewise key order.
type Collection struct {
	name    string
	entries map[string]Value
}

func NewCollection(name string) *Collection {
	return &Collection{
		name:    name,
		entries: make(map[string]Value),
	}
}

func (c *Collection) Name() string {
	return c.name
}

func (c *Collection) Len() int {
	return len(c.entries)
}

func (c *Collection) validate(key string, v Value) error {
	if !v.IsValid() {
		return typeMismatch(v, "a valid value")
	}
	if err := checkLen("key", key); err != nil {
		return err
	}
	if v.kind == KindString {
		if err := checkLen("string value", v.str); err != nil {
			return err
		}
	}
	if _, found := c.entries[key]; !found && len(c.entries) >= maxCount {
		return capacityErrf("collection %q already has %d entries", c.name, len(c.entries))
	}
	return nil
}

// Add inserts or overwrites the entry for key. On error the collection is
// left unchanged.
func (c *Collection) Add(key string, v Value) error {
	if err := c.validate(key, v); err != nil {
		return err
	}
	if c.entries == nil {
		c.entries = make(map[string]Value)
	}
	c.entries[key] = v
	return nil
}

// Delete removes key if present.
func (c *Collection) Delete(key string) {
	delete(c.entries, key)
}

// Modify replaces key with v by deleting and re-adding it. Validation runs
// first, so a failed Modify keeps the old entry.
func (c *Collection) Modify(key string, v Value) error {
	if err := c.validate(key, v); err != nil {
		return err
	}
	c.Delete(key)
	return c.Add(key, v)
}

func (c *Collection) Has(key string) bool {
	_, found := c.entries[key]
	return found
}

func (c *Collection) Get(key string) (Value, error) {
	v, found := c.entries[key]
	if !found {
		return Value{}, ErrKeyNotFound
	}
	return v, nil
}

func (c *Collection) GetString(key string) (string, error) {
	v, err := c.Get(key)
	if err != nil {
		return "", err
	}
	return v.Str()
}

// Keys returns the keys in bytewise order.
func (c *Collection) Keys() []string {
	return slices.Sorted(maps.Keys(c.entries))
}

// All iterates over the entries in key order.
func (c *Collection) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		for _, k := range c.Keys() {
			if !yield(k, c.entries[k]) {
				return
			}
		}
	}
}

func (c *Collection) clone() *Collection {
	return &Collection{
		name:    c.name,
		entries: maps.Clone(c.entries),
	}
}

func (c *Collection) AppendBinary(buf []byte) ([]byte, error) {
	var err error
	buf, err = appendLString(buf, "collection name", c.name)
	if err != nil {
		return buf, err
	}
	buf, err = appendCount(buf, "entry", len(c.entries))
	if err != nil {
		return buf, err
	}
	for k, v := range c.All() {
		buf, err = appendLString(buf, "key", k)
		if err != nil {
			return buf, err
		}
		buf, err = appendValue(buf, v)
		if err != nil {
			return buf, err
		}
	}
	return buf, nil
}
