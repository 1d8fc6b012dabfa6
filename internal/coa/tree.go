// Package coa indexes the chart of accounts and classifies ledger entries
// into its hierarchy.
package coa

import (
	"sort"

	"github.com/financo-app/financo/internal/ledger"
)

// UnclassifiedID is the synthetic bucket for entries whose account is
// missing, inactive or synthetic (not postable). It never collides with a
// real account id.
const UnclassifiedID int64 = 0

// UnclassifiedAccount is the synthetic node entries drift into instead of
// failing the aggregation.
func UnclassifiedAccount() ledger.ChartAccount {
	return ledger.ChartAccount{
		ID:            UnclassifiedID,
		Code:          "9.99",
		Description:   "Não classificado",
		Type:          ledger.TypeOther,
		Level:         1,
		AllowsPosting: true,
		Active:        true,
	}
}

// Tree is an indexed chart-of-accounts hierarchy.
type Tree struct {
	byID     map[int64]ledger.ChartAccount
	children map[int64][]int64
	ordered  []int64
}

// NewTree indexes the given accounts. Ordering follows the dotted code so
// report rows come out in chart order.
func NewTree(accounts []ledger.ChartAccount) *Tree {
	t := &Tree{
		byID:     make(map[int64]ledger.ChartAccount, len(accounts)),
		children: make(map[int64][]int64),
	}
	for _, acc := range accounts {
		t.byID[acc.ID] = acc
		if acc.ParentID != nil {
			t.children[*acc.ParentID] = append(t.children[*acc.ParentID], acc.ID)
		}
		t.ordered = append(t.ordered, acc.ID)
	}
	sort.Slice(t.ordered, func(i, j int) bool {
		return t.byID[t.ordered[i]].Code < t.byID[t.ordered[j]].Code
	})
	return t
}

// Account looks up a node by id.
func (t *Tree) Account(id int64) (ledger.ChartAccount, bool) {
	acc, ok := t.byID[id]
	return acc, ok
}

// Ordered returns all account ids in chart-code order.
func (t *Tree) Ordered() []int64 {
	return t.ordered
}

// Ancestors walks from the account's parent up to its root, nearest first.
func (t *Tree) Ancestors(id int64) []int64 {
	var out []int64
	acc, ok := t.byID[id]
	for ok && acc.ParentID != nil {
		acc, ok = t.byID[*acc.ParentID]
		if !ok {
			break
		}
		out = append(out, acc.ID)
	}
	return out
}

// Postable reports whether the account exists, is active and accepts
// postings.
func (t *Tree) Postable(id int64) bool {
	acc, ok := t.byID[id]
	return ok && acc.Active && acc.AllowsPosting
}

// Len returns the number of indexed accounts.
func (t *Tree) Len() int {
	return len(t.byID)
}
