package wdb

func appendValue(buf []byte, v Value) ([]byte, error) {
	if !v.kind.Valid() {
		return buf, typeMismatch(v, "a valid value")
	}
	buf = append(buf, byte(v.kind))
	if v.kind == KindString {
		return appendLString(buf, "string value", v.str)
	}
	return appendFixed(buf, v.kind.Width(), v.hi, v.lo), nil
}

func (d *byteDecoder) Value() (Value, error) {
	off := d.Off()
	tag, err := d.Byte()
	if err != nil {
		return Value{}, err
	}
	k := Kind(tag)
	if !k.Valid() {
		return Value{}, malformedf(d.Orig, off, "unknown value tag %d", tag)
	}
	if k == KindString {
		s, err := d.LString()
		if err != nil {
			return Value{}, err
		}
		return String(s), nil
	}
	info := k.info()
	hi, lo, err := d.Fixed(info.width, info.signed)
	if err != nil {
		return Value{}, err
	}
	return Value{kind: k, hi: hi, lo: lo}, nil
}

func (d *byteDecoder) Collection() (*Collection, error) {
	name, err := d.LString()
	if err != nil {
		return nil, err
	}
	n, err := d.Byte()
	if err != nil {
		return nil, err
	}
	c := NewCollection(name)
	for range int(n) {
		off := d.Off()
		key, err := d.LString()
		if err != nil {
			return nil, err
		}
		if c.Has(key) {
			return nil, malformedf(d.Orig, off, "duplicate key %q in collection %q", key, name)
		}
		v, err := d.Value()
		if err != nil {
			return nil, err
		}
		c.entries[key] = v
	}
	return c, nil
}

func (d *byteDecoder) Database() (*Database, error) {
	name, err := d.LString()
	if err != nil {
		return nil, err
	}
	n, err := d.Byte()
	if err != nil {
		return nil, err
	}
	db := &Database{name: name, collections: make([]*Collection, 0, n)}
	for range int(n) {
		c, err := d.Collection()
		if err != nil {
			return nil, err
		}
		db.collections = append(db.collections, c)
	}
	return db, nil
}

func (d *byteDecoder) World() (*World, error) {
	n, err := d.Byte()
	if err != nil {
		return nil, err
	}
	w := &World{databases: make([]*Database, 0, n)}
	for range int(n) {
		db, err := d.Database()
		if err != nil {
			return nil, err
		}
		w.databases = append(w.databases, db)
	}
	return w, nil
}

// DecodeWorld parses a complete binary World. The whole input must be
// consumed; trailing bytes are an error.
func DecodeWorld(data []byte) (*World, error) {
	d := makeByteDecoder(data)
	w, err := d.World()
	if err != nil {
		return nil, err
	}
	if !d.EOF() {
		return nil, malformedf(data, d.Off(), "%d trailing bytes", len(d.Buf))
	}
	return w, nil
}

// DecodeCollection parses a single collection as written by
// Collection.AppendBinary and returns the unconsumed rest of data.
func DecodeCollection(data []byte) (*Collection, []byte, error) {
	d := makeByteDecoder(data)
	c, err := d.Collection()
	if err != nil {
		return nil, data, err
	}
	return c, d.Buf, nil
}

// DecodeDatabase parses a single database as written by
// Database.AppendBinary and returns the unconsumed rest of data.
func DecodeDatabase(data []byte) (*Database, []byte, error) {
	d := makeByteDecoder(data)
	db, err := d.Database()
	if err != nil {
		return nil, data, err
	}
	return db, d.Buf, nil
}
