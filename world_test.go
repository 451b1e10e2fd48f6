package wdb

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestWorld_DatabaseLimit(t *testing.T) {
	var w World
	for i := range 255 {
		ensure(w.AddDatabase(NewDatabase(fmt.Sprintf("db%d", i))))
	}
	deepEqual(t, must(w.Database(254)).Name(), "db254")

	err := w.AddDatabase(NewDatabase("db255"))
	if !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("** 256th database err = %v, wanted ErrCapacityExceeded", err)
	}
	deepEqual(t, w.Len(), 255)

	data := must(w.MarshalBinary())
	deepEqual(t, data[0], byte(255))
	sameWorld(t, must(DecodeWorld(data)), &w)
}

func TestWorld_Lookups(t *testing.T) {
	w := DemoWorld()

	if _, err := w.Database(5); !errors.Is(err, ErrDatabaseNotFound) || !errors.Is(err, ErrNotFound) {
		t.Errorf("** Database(5) err = %v, wanted ErrDatabaseNotFound", err)
	}
	if _, err := w.Database(-1); !errors.Is(err, ErrDatabaseNotFound) {
		t.Errorf("** Database(-1) err = %v, wanted ErrDatabaseNotFound", err)
	}
	if _, err := w.Collection(0, 1); !errors.Is(err, ErrCollectionNotFound) || errors.Is(err, ErrDatabaseNotFound) {
		t.Errorf("** Collection(0, 1) err = %v, wanted ErrCollectionNotFound", err)
	}
	c := must(w.Collection(0, 0))
	deepEqual(t, c.Name(), "test")

	db, idx, err := w.DatabaseNamed("hello")
	if err != nil || idx != 0 || db.Name() != "hello" {
		t.Errorf("** DatabaseNamed(hello) = %v, %d, %v", db, idx, err)
	}
	if _, _, err := w.DatabaseNamed("nope"); !errors.Is(err, ErrDatabaseNotFound) {
		t.Errorf("** DatabaseNamed(nope) err = %v", err)
	}
	if _, _, err := db.CollectionNamed("nope"); !errors.Is(err, ErrCollectionNotFound) {
		t.Errorf("** CollectionNamed(nope) err = %v", err)
	}
}

func TestWorld_NameLimits(t *testing.T) {
	long := strings.Repeat("n", 256)
	var w World
	if err := w.AddDatabase(NewDatabase(long)); !errors.Is(err, ErrCapacityExceeded) {
		t.Errorf("** long database name err = %v", err)
	}
	db := NewDatabase("db")
	if err := db.AddCollection(NewCollection(long)); !errors.Is(err, ErrCapacityExceeded) {
		t.Errorf("** long collection name err = %v", err)
	}
	for i := range 255 {
		ensure(db.AddCollection(NewCollection(fmt.Sprint(i))))
	}
	if err := db.AddCollection(NewCollection("x")); !errors.Is(err, ErrCapacityExceeded) {
		t.Errorf("** 256th collection err = %v", err)
	}
}

func TestWorld_AddTwicePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	db := NewDatabase("db")
	var w World
	ensure(w.AddDatabase(db))
	w.AddDatabase(db)
}

func TestWorld_CloneIsDeep(t *testing.T) {
	w := DemoWorld()
	clone := w.Clone()
	ensure(must(clone.Collection(0, 0)).Add("a", String("changed")))
	ensure(must(clone.Database(0)).AddCollection(NewCollection("extra")))

	deepEqual(t, must(must(w.Collection(0, 0)).GetString("a")), "Hello")
	deepEqual(t, must(w.Database(0)).Len(), 1)
}

func TestWorld_DemoState(t *testing.T) {
	c := must(DemoWorld().Collection(0, 0))
	deepEqual(t, c.Keys(), []string{"a", "c"})
	deepEqual(t, must(c.Get("a")), String("Hello"))
	deepEqual(t, must(c.Get("c")), String("Github"))
	if c.Has("b") {
		t.Errorf("** b was not deleted")
	}
}
