package wdb

import (
	"errors"
	"strings"
	"testing"
)

func TestDataError_ErrorAndUnwrap(t *testing.T) {
	t.Run("small data", func(t *testing.T) {
		inner := errors.New("inner")
		err := dataErrf([]byte{0xAA, 0xBB}, 1, inner, "oops")
		var de *DataError
		if !errors.As(err, &de) {
			t.Fatalf("err = %T, wanted *DataError", err)
		}
		if !errors.Is(err, inner) {
			t.Fatalf("errors.Is(err, inner) = false, wanted true")
		}
		s := err.Error()
		if !strings.Contains(s, "oops at 1") || !strings.Contains(s, "inner") || !strings.Contains(s, "(2) aabb") {
			t.Fatalf("err.Error() = %q, wanted message with oops/inner/(2)", s)
		}
	})

	t.Run("large data includes prefix+suffix", func(t *testing.T) {
		data := make([]byte, 200)
		for i := range data {
			data[i] = byte(i)
		}
		err := malformedf(data, 0, "oops")
		s := err.Error()
		if !strings.Contains(s, "(200)") || !strings.Contains(s, "...") || !strings.Contains(s, "malformed stream") {
			t.Fatalf("err.Error() = %q, wanted message with (200) and ...", s)
		}
	})
}

func TestNotFoundErrorsAreDistinct(t *testing.T) {
	all := []error{ErrDatabaseNotFound, ErrCollectionNotFound, ErrKeyNotFound, ErrSnapshotNotFound}
	for i, a := range all {
		if !errors.Is(a, ErrNotFound) {
			t.Errorf("** %v does not match ErrNotFound", a)
		}
		for j, b := range all {
			if i != j && errors.Is(a, b) {
				t.Errorf("** %v matches %v", a, b)
			}
		}
	}
}
