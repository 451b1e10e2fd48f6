package wdb

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Format selects how Export and Import render a World.
type Format int

const (
	// Binary is the native self-delimiting format.
	Binary Format = iota
	// MsgPack renders the tree as MessagePack documents.
	MsgPack
	// JSON renders the tree as JSON documents.
	JSON
)

func (f Format) String() string {
	switch f {
	case Binary:
		return "binary"
	case MsgPack:
		return "msgpack"
	case JSON:
		return "json"
	default:
		return fmt.Sprintf("format(%d)", int(f))
	}
}

func ParseFormat(s string) (Format, error) {
	switch s {
	case "binary", "bin", "":
		return Binary, nil
	case "msgpack", "mp":
		return MsgPack, nil
	case "json":
		return JSON, nil
	default:
		return 0, fmt.Errorf("unknown format %q", s)
	}
}

type (
	worldDoc struct {
		Databases []databaseDoc `msgpack:"dbs" json:"databases"`
	}
	databaseDoc struct {
		Name        string          `msgpack:"n" json:"name"`
		Collections []collectionDoc `msgpack:"c" json:"collections"`
	}
	collectionDoc struct {
		Name    string     `msgpack:"n" json:"name"`
		Entries []entryDoc `msgpack:"e" json:"entries"`
	}
	entryDoc struct {
		Key   string `msgpack:"k" json:"key"`
		Kind  string `msgpack:"t" json:"kind"`
		Value string `msgpack:"v" json:"value"`
	}
)

func (w *World) doc() *worldDoc {
	wd := &worldDoc{Databases: make([]databaseDoc, 0, len(w.databases))}
	for _, db := range w.databases {
		dd := databaseDoc{Name: db.name, Collections: make([]collectionDoc, 0, len(db.collections))}
		for _, c := range db.collections {
			cd := collectionDoc{Name: c.name, Entries: make([]entryDoc, 0, len(c.entries))}
			for k, v := range c.All() {
				cd.Entries = append(cd.Entries, entryDoc{Key: k, Kind: v.kind.String(), Value: v.Text()})
			}
			dd.Collections = append(dd.Collections, cd)
		}
		wd.Databases = append(wd.Databases, dd)
	}
	return wd
}

func worldFromDoc(wd *worldDoc) (*World, error) {
	w := NewWorld()
	for _, dd := range wd.Databases {
		db := NewDatabase(dd.Name)
		for _, cd := range dd.Collections {
			c := NewCollection(cd.Name)
			for _, ed := range cd.Entries {
				k, ok := KindByName(ed.Kind)
				if !ok {
					return nil, fmt.Errorf("%s/%s/%s: unknown kind %q", dd.Name, cd.Name, ed.Key, ed.Kind)
				}
				v, err := ParseValue(k, ed.Value)
				if err != nil {
					return nil, fmt.Errorf("%s/%s/%s: %w", dd.Name, cd.Name, ed.Key, err)
				}
				if c.Has(ed.Key) {
					return nil, fmt.Errorf("%s/%s: duplicate key %q", dd.Name, cd.Name, ed.Key)
				}
				if err := c.Add(ed.Key, v); err != nil {
					return nil, fmt.Errorf("%s/%s/%s: %w", dd.Name, cd.Name, ed.Key, err)
				}
			}
			if err := db.AddCollection(c); err != nil {
				return nil, err
			}
		}
		if err := w.AddDatabase(db); err != nil {
			return nil, err
		}
	}
	return w, nil
}

// Export renders w in the given format.
func (w *World) Export(f Format) ([]byte, error) {
	switch f {
	case Binary:
		return w.MarshalBinary()
	case MsgPack:
		var bb bytesBuilder
		enc := msgpack.GetEncoder()
		enc.ResetDict(&bb, nil)
		enc.SetSortMapKeys(true)
		err := enc.Encode(w.doc())
		msgpack.PutEncoder(enc)
		if err != nil {
			return nil, fmt.Errorf("failed to encode world using MsgPack: %w", err)
		}
		return bb.Buf, nil
	case JSON:
		return json.MarshalIndent(w.doc(), "", "  ")
	default:
		panic("unsupported format")
	}
}

// Import parses data produced by Export in the same format.
func Import(f Format, data []byte) (*World, error) {
	var wd worldDoc
	switch f {
	case Binary:
		return DecodeWorld(data)
	case MsgPack:
		var r bytes.Reader
		r.Reset(data)
		dec := msgpack.GetDecoder()
		dec.ResetDict(&r, nil)
		err := dec.Decode(&wd)
		msgpack.PutDecoder(dec)
		if err != nil {
			return nil, dataErrf(data, 0, err, "failed to decode msgpack world")
		}
	case JSON:
		err := json.Unmarshal(data, &wd)
		if err != nil {
			return nil, dataErrf(data, 0, err, "failed to decode JSON world")
		}
	default:
		panic("unsupported format")
	}
	return worldFromDoc(&wd)
}
