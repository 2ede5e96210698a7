package handoff

import (
	"strings"

	"github.com/GasparGW/chinfield-rag-demo/internal/retrieval"
)

// contactBlock is appended to answers that should reach a human. The
// header doubles as the idempotency marker: a result already carrying
// it is never decorated twice.
const (
	contactHeader = "💬 **¿Necesitás más ayuda?**"

	contactBlock = "\n\n---\n\n" + contactHeader + "\n\n" +
		"Para consultas específicas o asesoramiento personalizado, " +
		"contactá a nuestro equipo técnico:\n\n" +
		"📧 Email: info@chinfield.com\n" +
		"📞 Teléfono: +54 11 XXXX-XXXX\n" +
		"🌐 Web: https://chinfield.com/contacto"
)

// Policy decides when a conversation must be escalated to a human
// operator, based on generation outcome and retrieval confidence.
type Policy struct {
	threshold float64
}

func NewPolicy(confidenceThreshold float64) *Policy {
	return &Policy{threshold: confidenceThreshold}
}

// NeedsHandoff evaluates the escalation rules in precedence order:
// generation failure, then empty retrieval, then weak mean similarity.
func (p *Policy) NeedsHandoff(success bool, docs []retrieval.ScoredDocument) bool {
	if !success {
		return true
	}

	if len(docs) == 0 {
		return true
	}

	if meanSimilarity(docs) < p.threshold {
		return true
	}

	return false
}

// AppendContact adds the contact block to the answer. The
// transformation is idempotent: applying it to an answer that already
// ends with the block is a no-op.
func (p *Policy) AppendContact(answer string) string {
	if strings.Contains(answer, contactHeader) {
		return answer
	}

	return answer + contactBlock
}

func meanSimilarity(docs []retrieval.ScoredDocument) float64 {
	var sum float64
	for _, doc := range docs {
		sum += doc.Similarity
	}

	return sum / float64(len(docs))
}
