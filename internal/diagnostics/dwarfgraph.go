// Package diagnostics renders debug-only views of debugito's internal
// state for the dwarfgraph REPL command. It has no bearing on any of the
// documented debugger operations; it exists purely so a user puzzled by
// a resolver failure can see the shape of the DWARF data debugito built.
package diagnostics

import (
	"io"

	"github.com/bradleyjkemp/memviz"

	"github.com/CastilloDel/debugito/internal/dwarfinfo"
)

// WriteFunctionGraph dumps the resolver's enumerated function list as a
// Graphviz DOT graph, for inspection with `dot -Tpng`.
func WriteFunctionGraph(w io.Writer, functions []dwarfinfo.Function) {
	memviz.Map(w, &functions)
}
