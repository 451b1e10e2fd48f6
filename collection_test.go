package wdb

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestCollection_AddIsUpsert(t *testing.T) {
	c := NewCollection("test")
	ensure(c.Add("k", String("v")))
	ensure(c.Add("k", String("v2")))
	deepEqual(t, c.Len(), 1)
	deepEqual(t, must(c.GetString("k")), "v2")

	ensure(c.Add("k", U8(3)))
	deepEqual(t, must(c.Get("k")), U8(3))
}

func TestCollection_DeleteMissingIsNoop(t *testing.T) {
	c := NewCollection("test")
	ensure(c.Add("a", String("x")))
	before := must(c.AppendBinary(nil))

	c.Delete("nope")
	deepEqual(t, c.Len(), 1)
	deepEqual(t, must(c.AppendBinary(nil)), before)

	var empty Collection
	empty.Delete("nope")
	deepEqual(t, empty.Len(), 0)
}

func TestCollection_ModifyMatchesAdd(t *testing.T) {
	a, b := NewCollection("t"), NewCollection("t")
	for _, c := range []*Collection{a, b} {
		ensure(c.Add("x", String("old")))
		ensure(c.Add("y", I32(1)))
	}
	ensure(a.Modify("x", String("new")))
	ensure(b.Add("x", String("new")))
	deepEqual(t, must(a.AppendBinary(nil)), must(b.AppendBinary(nil)))

	// on a missing key Modify simply inserts
	ensure(a.Modify("z", U16(9)))
	deepEqual(t, must(a.Get("z")), U16(9))
}

func TestCollection_FailedWritesLeaveStateIntact(t *testing.T) {
	c := NewCollection("t")
	ensure(c.Add("k", String("keep")))

	long := strings.Repeat("x", 256)
	if err := c.Modify("k", String(long)); !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("** Modify(long) err = %v, wanted ErrCapacityExceeded", err)
	}
	deepEqual(t, must(c.GetString("k")), "keep")

	if err := c.Add(long, U8(1)); !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("** Add(long key) err = %v, wanted ErrCapacityExceeded", err)
	}
	if err := c.Add("z", Value{}); !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("** Add(invalid) err = %v, wanted ErrTypeMismatch", err)
	}
	deepEqual(t, c.Keys(), []string{"k"})

	// exactly 255 bytes is fine
	ensure(c.Add(long[:255], String(long[:255])))
}

func TestCollection_EntryLimit(t *testing.T) {
	c := NewCollection("t")
	for i := range 255 {
		ensure(c.Add(fmt.Sprintf("k%03d", i), U8(uint8(i))))
	}
	if err := c.Add("one-more", U8(0)); !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("** 256th entry err = %v, wanted ErrCapacityExceeded", err)
	}
	// overwriting an existing key doesn't grow the collection
	ensure(c.Add("k000", String("replaced")))
	deepEqual(t, c.Len(), 255)
}

func TestCollection_Lookups(t *testing.T) {
	c := NewCollection("t")
	ensure(c.Add("s", String("str")))
	ensure(c.Add("n", U8(1)))

	if _, err := c.Get("missing"); !errors.Is(err, ErrKeyNotFound) || !errors.Is(err, ErrNotFound) {
		t.Errorf("** Get(missing) err = %v, wanted ErrKeyNotFound", err)
	}
	if _, err := c.GetString("missing"); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("** GetString(missing) err = %v, wanted ErrKeyNotFound", err)
	}
	if _, err := c.GetString("n"); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("** GetString(n) err = %v, wanted ErrTypeMismatch", err)
	}
	if !c.Has("s") || c.Has("missing") {
		t.Errorf("** Has is wrong")
	}
}

func TestCollection_KeysAreSorted(t *testing.T) {
	c := NewCollection("t")
	for _, k := range []string{"b", "a", "B", "ab", "", "\xff"} {
		ensure(c.Add(k, U8(0)))
	}
	deepEqual(t, c.Keys(), []string{"", "B", "a", "ab", "b", "\xff"})

	var seen []string
	for k := range c.All() {
		seen = append(seen, k)
		if k == "a" {
			break
		}
	}
	deepEqual(t, seen, []string{"", "B", "a"})
}
