// Package dwarfinfo is debugito's DWARF resolver: it turns the debug
// sections of an x86-64 ELF executable into (a) the set of legal
// breakpoint addresses, (b) a reverse lookup from instruction pointer to
// source location, and (c) the runtime address of a named local variable.
//
// It is built entirely on the standard library's debug/dwarf and
// debug/elf packages, following the teacher's own choice
// (coprocessor/developer in the retrieved pack parses ARM DWARF the same
// way) rather than reaching for a third-party DWARF library - none of the
// pack's complete repositories uses one.
package dwarfinfo

import (
	"debug/dwarf"
	"debug/elf"
	"io"
	"path/filepath"

	"github.com/CastilloDel/debugito/internal/curated"
	"github.com/CastilloDel/debugito/internal/registers"
)

// SourceLine identifies a single line of a single canonicalized source
// file. It is the key type for breakpoints everywhere in debugito: the
// session package's Breakpoint is this same pair.
type SourceLine struct {
	Path string
	Line int
}

// Resolver holds a loaded binary's DWARF data for the lifetime of a
// debugging session. Its buffer is read once at construction and never
// written again - it is shared, immutable data for every subsequent
// resolver operation, just as §9 of the design notes prescribes.
type Resolver struct {
	path string
	elf  *elf.File
	dwrf *dwarf.Data
}

// Load opens path as an ELF file, validates it is a little-endian x86-64
// executable, and loads its DWARF debug sections.
func Load(path string) (*Resolver, error) {
	f, err := elf.Open(path)
	if err != nil {
		return nil, curated.Errorf("opening ELF file: %w", err)
	}

	if f.Machine != elf.EM_X86_64 {
		f.Close()
		return nil, curated.Errorf("unsupported architecture: %s (only x86-64 is supported)", f.Machine)
	}
	if f.ByteOrder != nil && f.ByteOrder.String() != "LittleEndian" {
		f.Close()
		return nil, curated.Errorf("unsupported byte order (only little-endian is supported)")
	}

	dwrf, err := f.DWARF()
	if err != nil {
		f.Close()
		return nil, curated.Errorf("parsing DWARF data: %w", err)
	}

	return &Resolver{path: path, elf: f, dwrf: dwrf}, nil
}

// Close releases the underlying ELF file handle.
func (r *Resolver) Close() error {
	return r.elf.Close()
}

// canonicalize resolves a line-program file name (directory-joined by the
// debug/dwarf line reader already) to an absolute, symlink-free path.
// Files that cannot be resolved on the current machine are reported via
// the returned error so callers can skip the row silently, per spec.
func canonicalize(name string) (string, error) {
	abs, err := filepath.Abs(name)
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", err
	}
	return resolved, nil
}

// lineRow is a single non-end-sequence row together with its resolved,
// canonical source line.
type lineRow struct {
	line    SourceLine
	address uint64
}

// walkLines runs every compile unit's line program (for units that carry
// a DW_AT_stmt_list) and invokes visit for every resolvable,
// non-end-sequence row, in encounter order. visit returning false stops
// the walk early (used by ResolveLineAt's exact-match search).
func (r *Resolver) walkLines(visit func(lineRow) (keepGoing bool, err error)) error {
	reader := r.dwrf.Reader()
	for {
		entry, err := reader.Next()
		if err != nil {
			return curated.Errorf("reading DWARF entries: %w", err)
		}
		if entry == nil {
			return nil
		}
		if entry.Tag != dwarf.TagCompileUnit {
			continue
		}
		if _, ok := entry.Val(dwarf.AttrStmtList).(int64); !ok {
			continue
		}

		lineReader, err := r.dwrf.LineReader(entry)
		if err != nil || lineReader == nil {
			// line-program format we don't understand (e.g. an indexed
			// file table from a newer DWARF version) - skip this unit.
			continue
		}

		var le dwarf.LineEntry
		for {
			err := lineReader.Next(&le)
			if err == io.EOF {
				break
			}
			if err != nil {
				return curated.Errorf("reading line program: %w", err)
			}
			if le.EndSequence {
				continue
			}
			if le.File == nil {
				continue
			}
			if le.Line == 0 {
				continue // "cannot be attributed to any source line" per debug/dwarf
			}

			canonical, err := canonicalize(le.File.Name)
			if err != nil {
				continue // file not resolvable on this machine; skip silently
			}

			row := lineRow{
				line:    SourceLine{Path: canonical, Line: le.Line},
				address: uint64(le.Address),
			}

			keepGoing, err := visit(row)
			if err != nil {
				return err
			}
			if !keepGoing {
				return nil
			}
		}
	}
}

// EnumerateLineBreakpoints walks every compile unit's line program and
// returns the set of legal breakpoint positions, each mapped to the
// first address encountered for that (file, line) pair.
func (r *Resolver) EnumerateLineBreakpoints() (map[SourceLine]uint64, error) {
	positions := make(map[SourceLine]uint64)

	err := r.walkLines(func(row lineRow) (bool, error) {
		if _, exists := positions[row.line]; !exists {
			positions[row.line] = row.address
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	return positions, nil
}

// LinePosition is a resolved source location.
type LinePosition struct {
	Path string
	Line int
}

// ResolveLineAt returns the source location of the exact instruction
// address given, or found=false if no line-program row has that exact
// address. There is no nearest-address fallback.
func (r *Resolver) ResolveLineAt(address uint64) (pos LinePosition, found bool, err error) {
	err = r.walkLines(func(row lineRow) (bool, error) {
		if row.address == address {
			pos = LinePosition{Path: row.line.Path, Line: row.line.Line}
			found = true
			return false, nil // stop at first exact match
		}
		return true, nil
	})
	return pos, found, err
}
