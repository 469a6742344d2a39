package tracer

import "github.com/CastilloDel/debugito/internal/procmaps"

// This file holds the single address-translation formula debugito uses
// anywhere it crosses the DWARF (file-relative) / live-process (runtime)
// address boundary. Per design note §9 this is the most error-prone
// interface in the system; every caller goes through these two functions
// so the formula is never duplicated.

// FileRelativeToRuntime converts a DWARF file-relative address into the
// address it occupies in a traced process's memory, given that process's
// executable mapping.
func FileRelativeToRuntime(fileRelative uint64, exe procmaps.Entry) uint64 {
	return fileRelative + exe.Range.Begin - exe.Offset
}

// RuntimeToFileRelative is the inverse of FileRelativeToRuntime.
func RuntimeToFileRelative(runtime uint64, exe procmaps.Entry) uint64 {
	return runtime - exe.Range.Begin + exe.Offset
}
