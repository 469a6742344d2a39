package dwarfinfo

import "debug/dwarf"

// Function describes a subprogram DIE. It is used only by diagnostics
// (the dwarfgraph dump) - no core operation in spec §4 depends on it, but
// it falls directly out of the DFS that address_of_variable already
// performs.
type Function struct {
	Name   string
	LowPC  uint64
	HighPC uint64
}

// EnumerateFunctions returns every subprogram DIE with a name and a
// low/high PC range.
func (r *Resolver) EnumerateFunctions() ([]Function, error) {
	var functions []Function

	reader := r.dwrf.Reader()
	for {
		entry, err := reader.Next()
		if err != nil {
			return nil, err
		}
		if entry == nil {
			break
		}
		if entry.Tag != dwarf.TagSubprogram {
			continue
		}

		name, _ := entry.Val(dwarf.AttrName).(string)
		if name == "" {
			continue
		}

		low, lowOK := entry.Val(dwarf.AttrLowpc).(uint64)
		high, highOK := highPC(entry, low)
		if !lowOK || !highOK {
			continue
		}

		functions = append(functions, Function{Name: name, LowPC: low, HighPC: high})
	}

	return functions, nil
}

// highPC resolves DW_AT_high_pc, which DWARF allows to be encoded either
// as an absolute address or as an offset from low_pc depending on its
// attribute class. An int64 value is taken as an offset. A uint64 value
// is taken as an absolute address unless it is smaller than low, in which
// case it is treated as an offset too.
func highPC(entry *dwarf.Entry, low uint64) (uint64, bool) {
	switch v := entry.Val(dwarf.AttrHighpc).(type) {
	case uint64:
		if v < low {
			return low + v, true
		}
		return v, true
	case int64:
		return low + uint64(v), true
	default:
		return 0, false
	}
}
