package wdb

import (
	"encoding/hex"
	"reflect"
	"strings"
	"testing"
)

func deepEqual[T any](t testing.TB, a, e T) {
	if !reflect.DeepEqual(a, e) {
		t.Helper()
		t.Errorf("** got %v, wanted %v", a, e)
	}
}

func x(data string) []byte {
	data = strings.ReplaceAll(data, " ", "")
	return must(hex.DecodeString(data))
}

// sameWorld compares two trees node by node.
func sameWorld(t testing.TB, a, e *World) {
	t.Helper()
	if a.Len() != e.Len() {
		t.Fatalf("** got %d databases, wanted %d", a.Len(), e.Len())
	}
	for i, edb := range e.Databases() {
		adb := must(a.Database(i))
		if adb.Name() != edb.Name() || adb.Len() != edb.Len() {
			t.Fatalf("** database #%d: got %q with %d collections, wanted %q with %d", i, adb.Name(), adb.Len(), edb.Name(), edb.Len())
		}
		for j, ec := range edb.Collections() {
			ac := must(adb.Collection(j))
			if ac.Name() != ec.Name() {
				t.Fatalf("** collection #%d.#%d: got %q, wanted %q", i, j, ac.Name(), ec.Name())
			}
			deepEqual(t, ac.Keys(), ec.Keys())
			for k, ev := range ec.All() {
				av, err := ac.Get(k)
				if err != nil || !av.Equal(ev) {
					t.Errorf("** %s.%s[%q] = %v (%v), wanted %v", edb.Name(), ec.Name(), k, av, err, ev)
				}
			}
		}
	}
}

func demoBytes() []byte {
	return x("01 05 68656c6c6f 01 04 74657374 02 0161 01 05 48656c6c6f 0163 01 06 476974687562")
}
