package dwarfinfo

import (
	"debug/dwarf"

	"github.com/CastilloDel/debugito/internal/curated"
	"github.com/CastilloDel/debugito/internal/registers"
)

// BaseEncoding is the four-variant DWARF base-type encoding debugito
// supports for printing, per spec §4.1. Anything else (address,
// complex_float, signed_char, unsigned_char, ...) is rejected.
type BaseEncoding int

const (
	EncodingUnsupported BaseEncoding = iota
	EncodingBoolean
	EncodingFloat
	EncodingSigned
	EncodingUnsigned
)

// raw DW_AT_encoding values, per DWARF §7.8. debug/dwarf does not export
// these as named constants.
const (
	dwAteBoolean  = 0x02
	dwAteFloat    = 0x04
	dwAteSigned   = 0x05
	dwAteUnsigned = 0x07
)

func encodingFromDWARF(raw int64) BaseEncoding {
	switch raw {
	case dwAteBoolean:
		return EncodingBoolean
	case dwAteFloat:
		return EncodingFloat
	case dwAteSigned:
		return EncodingSigned
	case dwAteUnsigned:
		return EncodingUnsigned
	default:
		return EncodingUnsupported
	}
}

// Variable describes a resolved local variable. RuntimeAddress is already
// a live-process address, not a file-relative DWARF one: the location
// expression that produced it was evaluated against a register snapshot
// from the running tracee (directly, or via a register frame base), so
// no further file-relative/runtime translation is needed.
type Variable struct {
	RuntimeAddress uint64
	Encoding       BaseEncoding
	SizeBits       int64
}

// AddressOfVariable performs the depth-first walk described in spec
// §4.1: it finds the named *variable* DIE, tracking the stack of
// enclosing subprogram DIEs so that, if needed, it can evaluate that
// subprogram's DW_AT_frame_base expression against the given register
// snapshot.
func (r *Resolver) AddressOfVariable(name string, regs registers.Snapshot) (Variable, error) {
	reader := r.dwrf.Reader()

	// ancestors holds every currently-open DIE (those whose children we
	// have not yet finished visiting); enclosingSubprogram picks the
	// innermost of them tagged TagSubprogram as a variable's enclosing
	// function.
	var ancestors []*dwarf.Entry

	for {
		entry, err := reader.Next()
		if err != nil {
			return Variable{}, curated.Errorf("reading DWARF entries: %w", err)
		}
		if entry == nil {
			break
		}

		if entry.Tag == 0 {
			if len(ancestors) > 0 {
				ancestors = ancestors[:len(ancestors)-1]
			}
			continue
		}

		if entry.Tag == dwarf.TagVariable {
			if n, _ := entry.Val(dwarf.AttrName).(string); n == name {
				return r.resolveVariable(entry, enclosingSubprogram(ancestors), regs)
			}
		}

		if entry.Children {
			ancestors = append(ancestors, entry)
		}
	}

	return Variable{}, curated.Errorf("variable not found: %s", name)
}

func enclosingSubprogram(ancestors []*dwarf.Entry) *dwarf.Entry {
	for i := len(ancestors) - 1; i >= 0; i-- {
		if ancestors[i].Tag == dwarf.TagSubprogram {
			return ancestors[i]
		}
	}
	return nil
}

func (r *Resolver) resolveVariable(entry *dwarf.Entry, subprogram *dwarf.Entry, regs registers.Snapshot) (Variable, error) {
	encoding, sizeBits, err := r.resolveBaseType(entry)
	if err != nil {
		return Variable{}, err
	}

	loc, ok := entry.Val(dwarf.AttrLocation).([]byte)
	if !ok {
		return Variable{}, curated.Errorf("variable location is a location list, which is unsupported")
	}

	frameBase := func() (uint64, error) {
		return r.evaluateFrameBase(subprogram, regs)
	}

	result, err := evaluateExpression(loc, regs, frameBase)
	if err != nil {
		return Variable{}, err
	}
	if result.kind != locationAddress {
		return Variable{}, curated.Errorf("variable location did not resolve to an address")
	}

	return Variable{RuntimeAddress: result.address, Encoding: encoding, SizeBits: sizeBits}, nil
}

// evaluateFrameBase evaluates the enclosing subprogram's DW_AT_frame_base
// expression. Per spec §4.1 the result must be a single Register
// location; its value is then read from the live register snapshot.
func (r *Resolver) evaluateFrameBase(subprogram *dwarf.Entry, regs registers.Snapshot) (uint64, error) {
	if subprogram == nil {
		return 0, curated.Errorf("variable has no enclosing subprogram to provide a frame base")
	}

	expr, ok := subprogram.Val(dwarf.AttrFrameBase).([]byte)
	if !ok {
		return 0, curated.Errorf("frame base is not a register")
	}

	loc, err := evaluateExpression(expr, regs, nil)
	if err != nil {
		return 0, curated.Errorf("frame base is not a register: %w", err)
	}
	if loc.kind != locationRegister {
		return 0, curated.Errorf("frame base is not a register")
	}

	return regs.Value(loc.register)
}

// resolveBaseType follows DW_AT_type from a variable DIE to a base_type
// DIE and extracts its encoding and bit size.
func (r *Resolver) resolveBaseType(variable *dwarf.Entry) (BaseEncoding, int64, error) {
	typeOffset, ok := variable.Val(dwarf.AttrType).(dwarf.Offset)
	if !ok {
		return 0, 0, curated.Errorf("variable has no type")
	}

	typeReader := r.dwrf.Reader()
	typeReader.Seek(typeOffset)
	typeEntry, err := typeReader.Next()
	if err != nil {
		return 0, 0, curated.Errorf("reading variable type: %w", err)
	}
	if typeEntry == nil || typeEntry.Tag != dwarf.TagBaseType {
		return 0, 0, curated.Errorf("variable type is not a base type")
	}

	rawEncoding, _ := typeEntry.Val(dwarf.AttrEncoding).(int64)
	encoding := encodingFromDWARF(rawEncoding)
	if encoding == EncodingUnsupported {
		return 0, 0, curated.Errorf("unsupported base type encoding: %d", rawEncoding)
	}

	if bitSize, ok := typeEntry.Val(dwarf.AttrBitSize).(int64); ok {
		return encoding, bitSize, nil
	}
	if byteSize, ok := typeEntry.Val(dwarf.AttrByteSize).(int64); ok {
		return encoding, byteSize * 8, nil
	}

	return 0, 0, curated.Errorf("base type has no recorded size")
}
