package coa

import (
	"github.com/financo-app/financo/internal/ledger"
)

// Classification maps account ids to the entries posted against them.
// Entries referencing a missing, inactive or non-postable account land in
// the UnclassifiedID bucket; Unclassified counts them so callers can log
// the data-quality drift.
type Classification struct {
	ByAccount    map[int64][]ledger.LedgerLine
	Unclassified int
}

// Classify assigns each entry to a chart-of-accounts bucket. Cancelled
// entries are dropped up front: they contribute to nothing downstream.
// Pure function, no side effects.
func Classify(lines []ledger.LedgerLine, tree *Tree) Classification {
	out := Classification{ByAccount: make(map[int64][]ledger.LedgerLine)}
	for _, line := range lines {
		if line.Cancelled() {
			continue
		}
		id := line.AccountID
		if !tree.Postable(id) {
			out.Unclassified++
			id = UnclassifiedID
		}
		out.ByAccount[id] = append(out.ByAccount[id], line)
	}
	return out
}
