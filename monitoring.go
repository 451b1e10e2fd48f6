package wdb

// WorldStats summarizes the size of a World.
type WorldStats struct {
	Databases   int
	Collections int
	Entries     int
	StringBytes int

	// EncodedSize is the length of the binary encoding, computed without
	// encoding. It is meaningless for a World that fails to encode.
	EncodedSize int
}

func (w *World) Stats() WorldStats {
	s := WorldStats{Databases: len(w.databases), EncodedSize: 1}
	for _, db := range w.databases {
		s.Collections += len(db.collections)
		s.EncodedSize += 1 + len(db.name) + 1
		for _, c := range db.collections {
			s.Entries += len(c.entries)
			s.EncodedSize += 1 + len(c.name) + 1
			for k, v := range c.entries {
				s.EncodedSize += 1 + len(k) + 1
				if v.kind == KindString {
					s.StringBytes += len(v.str)
					s.EncodedSize += 1 + len(v.str)
				} else {
					s.EncodedSize += v.kind.Width()
				}
			}
		}
	}
	return s
}
