/*
Package wdb implements a small nested in-memory document store and the binary
format used to persist and exchange it.

The tree:

1. World, the root container, holds up to 255 Databases in append order.

2. Database, a named ordered list of up to 255 Collections.

3. Collection, a named set of up to 255 key/value entries.

4. Value, a tagged scalar: a string or a fixed-width integer or float.

All nodes are owned exclusively by their parent; there is no sharing and no
back-references. The tree itself does no locking. Code that shares a World
between goroutines must put a single reader/writer lock around the whole
tree (see package server).

# Binary format

Every repeated group is preceded by a one-byte count, and every value by a
one-byte tag, so the stream is self-delimiting:

	World      = u8(db_count) Database*
	Database   = lstring(name) u8(coll_count) Collection*
	Collection = lstring(name) u8(entry_count) Entry*
	Entry      = lstring(key) u8(tag) payload
	lstring    = u8(len) byte*

**Payloads.** A string payload is an lstring. Integers are written as raw
two's complement bytes of their width, big-endian. Floats are written as
their IEEE-754 bit pattern, big-endian. The tag determines the width; see
Kind for the tag table.

**Ordering.** Databases and collections are written in append order.
Entries are written in bytewise key order, so encoding the same tree twice
yields identical bytes.

**Limits.** Counts and string lengths are single bytes. Anything that would
exceed 255 fails with ErrCapacityExceeded instead of being truncated.

Decoding is the exact inverse. Truncated input, unknown tags, duplicate keys
and trailing garbage fail with a *DataError wrapping ErrMalformedStream, and
no partial tree is returned.
*/
package wdb
