// Package procmaps locates a traced process's executable mapping by
// parsing /proc/<pid>/maps, the only place the kernel tells us where a
// binary actually landed in a process's address space.
package procmaps

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/CastilloDel/debugito/internal/curated"
)

// AddressRange is a half-open [Begin, End) range of virtual addresses.
type AddressRange struct {
	Begin uint64
	End   uint64
}

// Entry is a single parsed line of /proc/<pid>/maps.
type Entry struct {
	Range       AddressRange
	Permissions string
	Offset      uint64
	Pathname    string
}

// Executable reports whether the mapping's permissions include 'x'.
func (e Entry) Executable() bool {
	return strings.Contains(e.Permissions, "x")
}

// parseLine parses a single /proc/<pid>/maps line, e.g.:
//
//	55d1e1a0d000-55d1e1a0e000 r-xp 00001000 08:01 1234  /home/user/hello
func parseLine(line string) (Entry, error) {
	fields := strings.Fields(line)
	if len(fields) < 5 {
		return Entry{}, curated.Errorf("malformed /proc/pid/maps line: %q", line)
	}

	addrParts := strings.SplitN(fields[0], "-", 2)
	if len(addrParts) != 2 {
		return Entry{}, curated.Errorf("malformed address range: %q", fields[0])
	}
	begin, err := strconv.ParseUint(addrParts[0], 16, 64)
	if err != nil {
		return Entry{}, curated.Errorf("malformed range start: %w", err)
	}
	end, err := strconv.ParseUint(addrParts[1], 16, 64)
	if err != nil {
		return Entry{}, curated.Errorf("malformed range end: %w", err)
	}

	offset, err := strconv.ParseUint(fields[2], 16, 64)
	if err != nil {
		return Entry{}, curated.Errorf("malformed offset: %w", err)
	}

	var pathname string
	if len(fields) >= 6 {
		pathname = fields[5]
	}

	return Entry{
		Range:       AddressRange{Begin: begin, End: end},
		Permissions: fields[1],
		Offset:      offset,
		Pathname:    pathname,
	}, nil
}

// Parse reads and parses every line of /proc/<pid>/maps.
func Parse(pid int) ([]Entry, error) {
	path := fmt.Sprintf("/proc/%d/maps", pid)
	f, err := os.Open(path)
	if err != nil {
		return nil, curated.Errorf("reading process maps: %w", err)
	}
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		e, err := parseLine(line)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, curated.Errorf("reading process maps: %w", err)
	}

	return entries, nil
}

// FindExecutable selects the single mapping whose pathname equals
// canonicalPath and whose permissions include executable. This is the
// mapping address translation is anchored on (spec §3's "base"/"off").
func FindExecutable(pid int, canonicalPath string) (Entry, error) {
	entries, err := Parse(pid)
	if err != nil {
		return Entry{}, err
	}

	for _, e := range entries {
		if e.Pathname == canonicalPath && e.Executable() {
			return e, nil
		}
	}

	return Entry{}, curated.Errorf("no executable mapping found for %s in pid %d", canonicalPath, pid)
}
