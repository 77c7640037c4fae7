package presenter

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/gsaikiranchary/DataUtilitiesAcolyte/internal/lineage"
)

// WriteDOT writes the graph in Graphviz format, dependencies pointing at
// their dependents
func WriteDOT(w io.Writer, g *lineage.Graph) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, "digraph lineage {")
	fmt.Fprintln(bw, "  rankdir=LR;")
	fmt.Fprintln(bw, "  node [fontname=\"Helvetica\"];")

	for i, node := range g.Nodes {
		fmt.Fprintf(bw, "  n%d [label=%s, shape=%s];\n", i, dotQuote(node.Label()), dotShape(node.Kind))
	}
	for _, e := range g.Edges {
		fmt.Fprintf(bw, "  n%d -> n%d;\n", e.From, e.To)
	}

	fmt.Fprintln(bw, "}")
	return bw.Flush()
}

func dotShape(kind lineage.NodeKind) string {
	switch kind {
	case lineage.KindView:
		return "ellipse"
	case lineage.KindTable:
		return "box"
	default:
		return "plaintext"
	}
}

var dotEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// dotQuote quotes a DOT string. Only backslash and double quote are escaped;
// other characters, including non-ASCII, are written as is.
func dotQuote(s string) string {
	return `"` + dotEscaper.Replace(s) + `"`
}
