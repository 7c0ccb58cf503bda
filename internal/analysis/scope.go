package analysis

import (
	"strings"

	"github.com/kwoncho1001/Jomath/internal/models"
)

// Scope decides whether a topic path is inside the configured analysis
// selection. Selections are path prefixes: "subject" selects everything under
// a subject, "subject|major|minor" a single minor unit. An empty selection
// puts nothing in scope.
type Scope struct {
	prefixes []string
}

// NewScope builds a scope from the configured topic-path prefixes.
func NewScope(selected []string) Scope {
	prefixes := make([]string, 0, len(selected))
	for _, s := range selected {
		if p := Normalize(s); p != "" {
			prefixes = append(prefixes, p)
		}
	}
	return Scope{prefixes: prefixes}
}

// Matches reports whether a full topic path falls under any selected prefix.
func (s Scope) Matches(path string) bool {
	for _, prefix := range s.prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// Contains reports whether a transaction is in scope. Transactions whose
// question is missing from the catalog are out of scope.
func (s Scope) Contains(catalog *Catalog, txn models.Transaction) bool {
	path, ok := catalog.PathFor(QuestionRef{ExamKey: txn.ExamKey, Number: txn.QuestionNum})
	if !ok {
		return false
	}
	return s.Matches(path.String())
}

// FilterTransactions returns the in-scope view of a transaction log. The log
// itself is never mutated.
func (s Scope) FilterTransactions(catalog *Catalog, log []models.Transaction) []models.Transaction {
	out := make([]models.Transaction, 0, len(log))
	for _, txn := range log {
		if s.Contains(catalog, txn) {
			out = append(out, txn)
		}
	}
	return out
}
