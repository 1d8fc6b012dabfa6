package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseLineStatus(t *testing.T) {
	cases := map[string]LineStatus{
		"PENDING":      StatusPending,
		"pendente":     StatusPending,
		"PAGO":         StatusSettled,
		"Recebido":     StatusSettled,
		"liquidado":    StatusSettled,
		"VENCIDO":      StatusOverdue,
		"pago_parcial": StatusPartial,
		" CANCELADO ":  StatusCancelled,
	}
	for raw, want := range cases {
		got, err := ParseLineStatus(raw)
		require.NoError(t, err, raw)
		require.Equal(t, want, got, raw)
	}

	_, err := ParseLineStatus("ESTORNADO")
	require.Error(t, err)
}

func TestParseAccountType(t *testing.T) {
	cases := map[string]AccountType{
		"RECEITA": TypeRevenue,
		"custo":   TypeCost,
		"Despesa": TypeExpense,
		"OUTRAS":  TypeOther,
		"REVENUE": TypeRevenue,
	}
	for raw, want := range cases {
		got, err := ParseAccountType(raw)
		require.NoError(t, err, raw)
		require.Equal(t, want, got, raw)
	}

	_, err := ParseAccountType("PATRIMONIO")
	require.Error(t, err)
}

func TestPeriod(t *testing.T) {
	p := NewPeriod(
		time.Date(2025, 1, 1, 14, 30, 0, 0, time.Local),
		time.Date(2025, 1, 31, 8, 0, 0, 0, time.Local),
	)
	require.NoError(t, p.Validate())
	require.Equal(t, 31, p.Days())

	require.True(t, p.Contains(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)))
	require.True(t, p.Contains(time.Date(2025, 1, 31, 23, 59, 0, 0, time.UTC)))
	require.False(t, p.Contains(time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)))

	inverted := NewPeriod(p.End, p.Start)
	require.Error(t, inverted.Validate())
	require.Error(t, Period{}.Validate())
}

func TestCancelled(t *testing.T) {
	require.True(t, LedgerLine{Status: StatusCancelled}.Cancelled())
	require.False(t, LedgerLine{Status: StatusSettled}.Cancelled())
}
