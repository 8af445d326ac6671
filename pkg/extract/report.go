package extract

import (
	"fmt"
	"io"
	"strings"

	"github.com/japaniel/lexgraph/pkg/index"
	"github.com/japaniel/lexgraph/pkg/morph"
)

func printBanner(w io.Writer, resource string, languages, vectors []string, target string) {
	fmt.Fprintf(w, "RESOURCE: %s\n", resource)
	fmt.Fprintf(w, "LANGUAGE: %s\n", strings.Join(languages, ", "))
	fmt.Fprintf(w, "VECTORS: %s\n", strings.Join(vectors, ", "))
	fmt.Fprintf(w, "TARGET: %s\n", target)
}

func printStats(w io.Writer, st index.Stats) {
	fmt.Fprintf(w, "   Words: %d / %d\n", st.WordsResolved, st.WordsAttempted)
	fmt.Fprintf(w, "  Synset: %d / %d\n", st.SynsetsLive, st.SynsetsTotal)
	fmt.Fprintf(w, "  Lexems: %d / %d\n", st.SensesEmitted, st.SensesAttempted)
	if st.Duplicates > 0 {
		fmt.Fprintf(w, "  Duplicate listings skipped: %d\n", st.Duplicates)
	}
}

func printProjection(w io.Writer, p *index.Projection) {
	fmt.Fprintf(w, "Extracted %s: done!\n", p.Relation.Name)
	for _, pos := range p.ReachOrder() {
		fmt.Fprintf(w, "  %s: %d\n", pos, p.Reach[pos])
	}
	fmt.Fprintf(w, "  edges: %d emitted, %d dropped\n", len(p.Edges), p.Dropped)
}

// oovReport renders one line per distinct out-of-vocabulary key, in first
// seen order: the key, a tab, and the first normalization candidate the
// language's space covers, or "-".
func oovReport(oov []index.Key, spaces map[string]index.VectorSpace, a *morph.Analyzer) []string {
	seen := make(map[index.Key]bool, len(oov))
	var lines []string
	for _, k := range oov {
		if seen[k] {
			continue
		}
		seen[k] = true
		suggestion := "-"
		if space := spaces[k.Language]; space != nil {
			for _, c := range a.Candidates(k.Word, k.Language) {
				if space.Contains(c) {
					suggestion = c
					break
				}
			}
		}
		lines = append(lines, k.String()+"\t"+suggestion)
	}
	return lines
}
