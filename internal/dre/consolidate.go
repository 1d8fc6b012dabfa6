package dre

// Consolidated merges per-company statements into a single totals set.
type Consolidated struct {
	PerCompany []Statement `json:"per_company"`
	Totals     Totals      `json:"totals"`
}

// Consolidate sums every Totals field across the input statements. The sum
// is commutative, so the result does not depend on input order. An empty
// input is a valid degenerate report with zeroed totals.
func Consolidate(statements []Statement) Consolidated {
	out := Consolidated{
		PerCompany: statements,
		Totals:     zeroTotals(),
	}
	if out.PerCompany == nil {
		out.PerCompany = []Statement{}
	}
	for _, st := range statements {
		out.Totals = out.Totals.Add(st.Totals)
	}
	return out
}
