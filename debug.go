package wdb

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

type DumpFlags uint64

const (
	DumpDatabases = DumpFlags(1 << iota)
	DumpCollections
	DumpEntries
	DumpStats

	DumpAll = DumpFlags(0xFFFFFFFFFFFFFFFF)

	indentStep = "  "
)

var (
	dumpSep1 = strings.Repeat("=", 80)
	dumpSep2 = strings.Repeat("-", 60)
)

func (f DumpFlags) Contains(v DumpFlags) bool {
	return (f & v) == v
}

// Dump renders the tree as text, one line per node, for debugging.
func (w *World) Dump(f DumpFlags) string {
	var buf strings.Builder
	if f.Contains(DumpStats) {
		s := w.Stats()
		fmt.Fprintln(&buf, dumpSep1)
		fmt.Fprintf(&buf, "world.stats: databases = %d, collections = %d, entries = %d, encoded_size = %s\n", s.Databases, s.Collections, s.Entries, humanize.Bytes(uint64(s.EncodedSize)))
	}
	for i, db := range w.databases {
		w.dumpDatabase(&buf, f, db, i)
	}
	return buf.String()
}

func (w *World) dumpDatabase(buf *strings.Builder, f DumpFlags, db *Database, pos int) {
	if f.Contains(DumpDatabases) {
		fmt.Fprintln(buf, dumpSep1)
		fmt.Fprintf(buf, "#%d %s (%d collections)\n", pos, db.name, len(db.collections))
	}
	for i, c := range db.collections {
		prefix := fmt.Sprintf("#%d.#%d", pos, i)
		if f.Contains(DumpCollections) {
			if f.Contains(DumpEntries) && i > 0 {
				fmt.Fprintln(buf, dumpSep2)
			}
			fmt.Fprintf(buf, "%s%s %s.%s (%d entries)\n", indentStep, prefix, db.name, c.name, len(c.entries))
		}
		if f.Contains(DumpEntries) {
			for k, v := range c.All() {
				fmt.Fprintf(buf, "%s%s%q = %v\n", indentStep, indentStep, k, v)
			}
		}
	}
}
