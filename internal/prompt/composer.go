package prompt

import (
	"fmt"
	"strings"

	"github.com/GasparGW/chinfield-rag-demo/internal/retrieval"
)

// contextSeparator visibly delimits documents inside the grounding
// context block.
const contextSeparator = "\n\n---\n\n"

// BuildContext concatenates the retrieved documents into a single
// grounding block, each under its "Documento {rank}:" label in
// retrieval order. Zero documents yield an empty block; the strategy
// template passes it through and the model handles it per its own
// instructions.
func BuildContext(docs []retrieval.ScoredDocument) string {
	if len(docs) == 0 {
		return ""
	}

	sections := make([]string, 0, len(docs))
	for _, doc := range docs {
		sections = append(sections, fmt.Sprintf("Documento %d:\n%s", doc.Rank, doc.Text))
	}

	return strings.Join(sections, contextSeparator)
}
