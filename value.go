package wdb

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
)

// Kind identifies a Value variant. Its numeric value is the tag byte written
// before every payload, so existing kinds must never be renumbered.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindString
	KindI8
	KindU8
	KindI16
	KindU16
	KindI32
	KindU32
	KindI64
	KindU64
	KindI128
	KindU128
	KindF32
	KindF64

	kindCount
)

const varWidth = -1

type kindInfo struct {
	name   string
	width  int // payload bytes, or varWidth for length-prefixed payloads
	signed bool
	float  bool
}

// kinds drives both the encoder and the decoder.
var kinds = [kindCount]kindInfo{
	KindInvalid: {name: "invalid"},
	KindString:  {name: "string", width: varWidth},
	KindI8:      {name: "i8", width: 1, signed: true},
	KindU8:      {name: "u8", width: 1},
	KindI16:     {name: "i16", width: 2, signed: true},
	KindU16:     {name: "u16", width: 2},
	KindI32:     {name: "i32", width: 4, signed: true},
	KindU32:     {name: "u32", width: 4},
	KindI64:     {name: "i64", width: 8, signed: true},
	KindU64:     {name: "u64", width: 8},
	KindI128:    {name: "i128", width: 16, signed: true},
	KindU128:    {name: "u128", width: 16},
	KindF32:     {name: "f32", width: 4, float: true},
	KindF64:     {name: "f64", width: 8, float: true},
}

func (k Kind) Valid() bool {
	return k > KindInvalid && k < kindCount
}

func (k Kind) info() kindInfo {
	if k >= kindCount {
		return kinds[KindInvalid]
	}
	return kinds[k]
}

func (k Kind) String() string {
	if k >= kindCount {
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
	return kinds[k].name
}

// Width returns the payload size in bytes, or -1 for strings.
func (k Kind) Width() int {
	return k.info().width
}

func (k Kind) IsInteger() bool {
	i := k.info()
	return k.Valid() && i.width > 0 && !i.float
}

// KindByName is the inverse of Kind.String.
func KindByName(name string) (Kind, bool) {
	for k := KindString; k < kindCount; k++ {
		if kinds[k].name == name {
			return k, true
		}
	}
	return KindInvalid, false
}

// Value is an immutable tagged scalar. The zero Value is invalid and cannot
// be stored in a Collection.
type Value struct {
	kind Kind
	str  string
	hi   uint64 // upper 64 bits of 128-bit payloads
	lo   uint64 // bit pattern of every other numeric payload, sign-extended for signed kinds
}

func String(s string) Value { return Value{kind: KindString, str: s} }
func I8(v int8) Value       { return Value{kind: KindI8, lo: uint64(int64(v))} }
func U8(v uint8) Value      { return Value{kind: KindU8, lo: uint64(v)} }
func I16(v int16) Value     { return Value{kind: KindI16, lo: uint64(int64(v))} }
func U16(v uint16) Value    { return Value{kind: KindU16, lo: uint64(v)} }
func I32(v int32) Value     { return Value{kind: KindI32, lo: uint64(int64(v))} }
func U32(v uint32) Value    { return Value{kind: KindU32, lo: uint64(v)} }
func I64(v int64) Value     { return Value{kind: KindI64, lo: uint64(v)} }
func U64(v uint64) Value    { return Value{kind: KindU64, lo: v} }
func F32(v float32) Value   { return Value{kind: KindF32, lo: uint64(math.Float32bits(v))} }
func F64(v float64) Value   { return Value{kind: KindF64, lo: math.Float64bits(v)} }

// I128 builds a signed 128-bit value from its two's complement halves.
func I128(hi int64, lo uint64) Value {
	return Value{kind: KindI128, hi: uint64(hi), lo: lo}
}

// U128 builds an unsigned 128-bit value from its halves.
func U128(hi, lo uint64) Value {
	return Value{kind: KindU128, hi: hi, lo: lo}
}

var (
	minI128 = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))
	maxI128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
	maxU128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))
	mod128  = new(big.Int).Lsh(big.NewInt(1), 128)
	mask64  = new(big.Int).SetUint64(math.MaxUint64)
)

func I128FromBig(v *big.Int) (Value, error) {
	if v.Cmp(minI128) < 0 || v.Cmp(maxI128) > 0 {
		return Value{}, capacityErrf("%v does not fit into i128", v)
	}
	u := new(big.Int).Set(v)
	if u.Sign() < 0 {
		u.Add(u, mod128)
	}
	hi, lo := splitBig(u)
	return Value{kind: KindI128, hi: hi, lo: lo}, nil
}

func U128FromBig(v *big.Int) (Value, error) {
	if v.Sign() < 0 || v.Cmp(maxU128) > 0 {
		return Value{}, capacityErrf("%v does not fit into u128", v)
	}
	hi, lo := splitBig(v)
	return U128(hi, lo), nil
}

func splitBig(u *big.Int) (hi, lo uint64) {
	lo = new(big.Int).And(u, mask64).Uint64()
	hi = new(big.Int).Rsh(u, 64).Uint64()
	return
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsValid() bool { return v.kind.Valid() }

func (v Value) Str() (string, error) {
	if v.kind != KindString {
		return "", typeMismatch(v, "string")
	}
	return v.str, nil
}

// Int returns the value of a signed integer of at most 64 bits.
func (v Value) Int() (int64, error) {
	switch v.kind {
	case KindI8, KindI16, KindI32, KindI64:
		return int64(v.lo), nil
	default:
		return 0, typeMismatch(v, "signed integer")
	}
}

// Uint returns the value of an unsigned integer of at most 64 bits.
func (v Value) Uint() (uint64, error) {
	switch v.kind {
	case KindU8, KindU16, KindU32, KindU64:
		return v.lo, nil
	default:
		return 0, typeMismatch(v, "unsigned integer")
	}
}

func (v Value) Float() (float64, error) {
	switch v.kind {
	case KindF32:
		return float64(math.Float32frombits(uint32(v.lo))), nil
	case KindF64:
		return math.Float64frombits(v.lo), nil
	default:
		return 0, typeMismatch(v, "float")
	}
}

// Uint128 returns the raw halves of a 128-bit value (two's complement for i128).
func (v Value) Uint128() (hi, lo uint64, err error) {
	if v.kind != KindI128 && v.kind != KindU128 {
		return 0, 0, typeMismatch(v, "128-bit integer")
	}
	return v.hi, v.lo, nil
}

// Big returns any integer value as a big.Int, or nil for non-integers.
func (v Value) Big() *big.Int {
	switch v.kind {
	case KindI8, KindI16, KindI32, KindI64:
		return big.NewInt(int64(v.lo))
	case KindU8, KindU16, KindU32, KindU64:
		return new(big.Int).SetUint64(v.lo)
	case KindU128, KindI128:
		b := new(big.Int).SetUint64(v.hi)
		b.Lsh(b, 64)
		b.Or(b, new(big.Int).SetUint64(v.lo))
		if v.kind == KindI128 && int64(v.hi) < 0 {
			b.Sub(b, mod128)
		}
		return b
	default:
		return nil
	}
}

func (v Value) Equal(another Value) bool {
	return v == another
}

// Text renders the payload without the kind, the way the HTTP surface and
// the JSON export show it.
func (v Value) Text() string {
	switch {
	case v.kind == KindString:
		return v.str
	case v.kind == KindF32:
		return strconv.FormatFloat(float64(math.Float32frombits(uint32(v.lo))), 'g', -1, 32)
	case v.kind == KindF64:
		return strconv.FormatFloat(math.Float64frombits(v.lo), 'g', -1, 64)
	case v.kind.IsInteger():
		return v.Big().String()
	default:
		return ""
	}
}

func (v Value) String() string {
	switch v.kind {
	case KindInvalid:
		return "<invalid>"
	case KindString:
		return fmt.Sprintf("%q", v.str)
	default:
		return v.kind.String() + "(" + v.Text() + ")"
	}
}

// ParseValue is the inverse of Value.Text for a known kind.
func ParseValue(k Kind, s string) (Value, error) {
	info := k.info()
	switch {
	case k == KindString:
		if err := checkLen("string", s); err != nil {
			return Value{}, err
		}
		return String(s), nil
	case k == KindF32:
		f, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return Value{}, err
		}
		return F32(float32(f)), nil
	case k == KindF64:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Value{}, err
		}
		return F64(f), nil
	case k == KindI128:
		b, ok := new(big.Int).SetString(s, 10)
		if !ok {
			return Value{}, fmt.Errorf("invalid i128 %q", s)
		}
		return I128FromBig(b)
	case k == KindU128:
		b, ok := new(big.Int).SetString(s, 10)
		if !ok {
			return Value{}, fmt.Errorf("invalid u128 %q", s)
		}
		return U128FromBig(b)
	case k.IsInteger() && info.signed:
		n, err := strconv.ParseInt(s, 10, info.width*8)
		if err != nil {
			return Value{}, err
		}
		return Value{kind: k, lo: uint64(n)}, nil
	case k.IsInteger():
		n, err := strconv.ParseUint(s, 10, info.width*8)
		if err != nil {
			return Value{}, err
		}
		return Value{kind: k, lo: n}, nil
	default:
		return Value{}, fmt.Errorf("cannot parse %v", k)
	}
}
