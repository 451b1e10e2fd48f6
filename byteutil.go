package wdb

import (
	"encoding/binary"
	"io"
)

const maxCount = 255

func ensureCapacity(buf []byte, minCap int) []byte {
	c := cap(buf)
	if minCap > c {
		if c < 16 {
			c = 16
		}
		for minCap > c {
			c <<= 1
		}
		old := buf
		buf = make([]byte, len(old), c)
		copy(buf, old)
	}
	return buf
}

func grow(buf []byte, n int) (int, []byte) {
	off := len(buf)
	newLen := off + n
	buf = ensureCapacity(buf, newLen)
	return off, buf[:newLen]
}

func appendRaw(buf []byte, chunk []byte) []byte {
	n := len(chunk)
	off, buf := grow(buf, n)
	copy(buf[off:], chunk)
	return buf
}

func appendCount(buf []byte, what string, n int) ([]byte, error) {
	if n > maxCount {
		return buf, capacityErrf("%s count %d exceeds %d", what, n, maxCount)
	}
	return append(buf, byte(n)), nil
}

func appendLString(buf []byte, what, s string) ([]byte, error) {
	if err := checkLen(what, s); err != nil {
		return buf, err
	}
	off, buf := grow(buf, 1+len(s))
	buf[off] = byte(len(s))
	copy(buf[off+1:], s)
	return buf, nil
}

// appendFixed writes the low width bytes of hi:lo big-endian.
func appendFixed(buf []byte, width int, hi, lo uint64) []byte {
	off, buf := grow(buf, width)
	switch width {
	case 1:
		buf[off] = byte(lo)
	case 2:
		binary.BigEndian.PutUint16(buf[off:], uint16(lo))
	case 4:
		binary.BigEndian.PutUint32(buf[off:], uint32(lo))
	case 8:
		binary.BigEndian.PutUint64(buf[off:], lo)
	case 16:
		binary.BigEndian.PutUint64(buf[off:], hi)
		binary.BigEndian.PutUint64(buf[off+8:], lo)
	default:
		panic("unsupported width")
	}
	return buf
}

// bytesBuilder adapts an append-style buffer to io.Writer.
type bytesBuilder struct {
	Buf []byte
}

var _ io.Writer = (*bytesBuilder)(nil)

func (bb *bytesBuilder) Write(b []byte) (int, error) {
	bb.Buf = appendRaw(bb.Buf, b)
	return len(b), nil
}

type byteDecoder struct {
	Orig []byte
	Buf  []byte
}

func makeByteDecoder(buf []byte) byteDecoder {
	return byteDecoder{buf, buf}
}

func (d *byteDecoder) Off() int {
	return len(d.Orig) - len(d.Buf)
}

func (d *byteDecoder) Raw(n int) ([]byte, error) {
	if len(d.Buf) < n {
		return nil, malformedf(d.Orig, d.Off(), "not enough data: %d bytes remaining, %d wanted", len(d.Buf), n)
	}
	v := d.Buf[:n]
	d.Buf = d.Buf[n:]
	return v, nil
}

func (d *byteDecoder) Byte() (byte, error) {
	if len(d.Buf) == 0 {
		return 0, malformedf(d.Orig, d.Off(), "unexpected end of data")
	}
	v := d.Buf[0]
	d.Buf = d.Buf[1:]
	return v, nil
}

func (d *byteDecoder) LString() (string, error) {
	n, err := d.Byte()
	if err != nil {
		return "", err
	}
	raw, err := d.Raw(int(n))
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// Fixed reads a big-endian integer of the given width, sign-extending it
// into lo when signed is set.
func (d *byteDecoder) Fixed(width int, signed bool) (hi, lo uint64, err error) {
	raw, err := d.Raw(width)
	if err != nil {
		return 0, 0, err
	}
	switch width {
	case 1:
		lo = uint64(raw[0])
		if signed {
			lo = uint64(int64(int8(raw[0])))
		}
	case 2:
		v := binary.BigEndian.Uint16(raw)
		lo = uint64(v)
		if signed {
			lo = uint64(int64(int16(v)))
		}
	case 4:
		v := binary.BigEndian.Uint32(raw)
		lo = uint64(v)
		if signed {
			lo = uint64(int64(int32(v)))
		}
	case 8:
		lo = binary.BigEndian.Uint64(raw)
	case 16:
		hi = binary.BigEndian.Uint64(raw)
		lo = binary.BigEndian.Uint64(raw[8:])
	default:
		panic("unsupported width")
	}
	return hi, lo, nil
}

func (d *byteDecoder) EOF() bool {
	return len(d.Buf) == 0
}
