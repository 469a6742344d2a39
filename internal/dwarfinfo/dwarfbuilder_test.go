package dwarfinfo

import (
	"bytes"
	"debug/dwarf"
	"encoding/binary"
)

// dwarfBuilder assembles raw DWARF section bytes by hand, for tests that
// need a *dwarf.Data without a real compiled binary to read it from.
// It only ever produces 32-bit DWARF (4-byte section offsets), which is
// what every compiler still emits by default.
type dwarfBuilder struct {
	buf bytes.Buffer
}

func (b *dwarfBuilder) off() uint32 { return uint32(b.buf.Len()) }

func (b *dwarfBuilder) u8(v uint8) { b.buf.WriteByte(v) }

func (b *dwarfBuilder) u16(v uint16) {
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], v)
	b.buf.Write(tmp[:])
}

func (b *dwarfBuilder) u32(v uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	b.buf.Write(tmp[:])
}

func (b *dwarfBuilder) u64(v uint64) {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	b.buf.Write(tmp[:])
}

func (b *dwarfBuilder) str(s string) {
	b.buf.WriteString(s)
	b.buf.WriteByte(0)
}

func (b *dwarfBuilder) raw(p []byte) { b.buf.Write(p) }

func (b *dwarfBuilder) uleb(v uint64) {
	for {
		c := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			c |= 0x80
		}
		b.buf.WriteByte(c)
		if v == 0 {
			return
		}
	}
}

func (b *dwarfBuilder) sleb(v int64) {
	for {
		c := byte(v & 0x7f)
		sign := c&0x40 != 0
		v >>= 7
		done := (v == 0 && !sign) || (v == -1 && sign)
		if !done {
			c |= 0x80
		}
		b.buf.WriteByte(c)
		if done {
			return
		}
	}
}

// exprloc appends a DW_FORM_exprloc value: a ULEB128 length prefix
// followed by the raw expression bytes.
func (b *dwarfBuilder) exprloc(payload []byte) {
	b.uleb(uint64(len(payload)))
	b.raw(payload)
}

// Raw DWARF tag, attribute and form encodings. debug/dwarf exports the
// Attr and Tag types these correspond to, but not every numeric
// constant as a named value, so the ones this test file needs to write
// by hand are spelled out here instead.
const (
	tagCompileUnit = 0x11
	tagSubprogram  = 0x2e
	tagVariable    = 0x34
	tagBaseType    = 0x24

	formAddr      = 0x01
	formData1     = 0x0b
	formString    = 0x08
	formRefAddr   = 0x10
	formSecOffset = 0x17
	formExprloc   = 0x18

	attrCompDir = 0x1b
)

// abbrevBuilder assembles a .debug_abbrev section: a sequence of
// (code, tag, children, [attr, form]..., 0, 0) declarations terminated
// by a code of 0.
type abbrevBuilder struct {
	b    dwarfBuilder
	next uint64
}

// declare registers a new abbreviation and returns its code.
func (a *abbrevBuilder) declare(tag uint64, children bool, attrs ...[2]uint64) uint64 {
	a.next++
	code := a.next
	a.b.uleb(code)
	a.b.uleb(tag)
	if children {
		a.b.u8(1)
	} else {
		a.b.u8(0)
	}
	for _, pair := range attrs {
		a.b.uleb(pair[0])
		a.b.uleb(pair[1])
	}
	a.b.uleb(0)
	a.b.uleb(0)
	return code
}

func (a *abbrevBuilder) finish() []byte {
	a.b.uleb(0)
	return a.b.buf.Bytes()
}

// newCompileUnitInfo writes a CU header (DWARF version 4, 8-byte
// addresses) into info and returns a function that, once every DIE has
// been appended, patches the unit_length field and returns the final
// bytes.
func newCompileUnitInfo() (info *dwarfBuilder, finish func() []byte) {
	info = &dwarfBuilder{}
	info.u32(0) // unit_length placeholder
	info.u16(4) // version
	info.u32(0) // abbrev_offset
	info.u8(8)  // address_size

	finish = func() []byte {
		out := info.buf.Bytes()
		binary.LittleEndian.PutUint32(out[0:4], uint32(len(out)-4))
		return out
	}
	return info, finish
}

func mustDWARF(abbrev, info, line []byte) *dwarf.Data {
	d, err := dwarf.New(abbrev, nil, nil, info, line, nil, nil, nil)
	if err != nil {
		panic(err)
	}
	return d
}
