package http

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/financo-app/financo/internal/dre"
	"github.com/financo-app/financo/internal/reports"
)

const (
	csvFlushEvery = 200
	csvBufferSize = 32 * 1024
)

type csvStreamer struct {
	buf          *bufio.Writer
	csv          *csv.Writer
	flushEvery   int
	pendingLines int
}

func newCSVStreamer(w io.Writer) *csvStreamer {
	buf := bufio.NewWriterSize(w, csvBufferSize)
	writer := csv.NewWriter(buf)
	writer.UseCRLF = true
	return &csvStreamer{buf: buf, csv: writer, flushEvery: csvFlushEvery}
}

func (s *csvStreamer) writeComment(line string) error {
	if s == nil || s.buf == nil {
		return fmt.Errorf("csv streamer not initialised")
	}
	if !strings.HasSuffix(line, "\r\n") {
		line = strings.TrimSuffix(line, "\n")
		line += "\r\n"
	}
	if _, err := s.buf.WriteString(line); err != nil {
		return err
	}
	return nil
}

func (s *csvStreamer) writeRow(row []string) error {
	if s == nil || s.csv == nil {
		return fmt.Errorf("csv streamer not initialised")
	}
	if err := s.csv.Write(row); err != nil {
		return err
	}
	s.pendingLines++
	if s.flushEvery > 0 && s.pendingLines >= s.flushEvery {
		return s.Flush()
	}
	return nil
}

func (s *csvStreamer) Flush() error {
	if s == nil || s.csv == nil || s.buf == nil {
		return fmt.Errorf("csv streamer not initialised")
	}
	s.csv.Flush()
	if err := s.csv.Error(); err != nil {
		return err
	}
	if err := s.buf.Flush(); err != nil {
		return err
	}
	s.pendingLines = 0
	return nil
}

func (s *csvStreamer) Close() error {
	return s.Flush()
}

func writeWarnings(streamer *csvStreamer, warnings []string) error {
	if len(warnings) == 0 {
		return streamer.writeComment("# Avisos: nenhum")
	}
	joined := make([]string, len(warnings))
	for i, w := range warnings {
		joined[i] = strings.TrimSpace(w)
	}
	return streamer.writeComment("# Avisos: " + strings.Join(joined, "; "))
}

func writeDRESections(streamer *csvStreamer, st dre.Statement) error {
	sections := []struct {
		label string
		lines []dre.Line
	}{
		{dre.LabelRevenue, st.Revenue},
		{dre.LabelCost, st.Cost},
		{dre.LabelExpense, st.Expense},
		{"Outros", st.Other},
	}
	for _, section := range sections {
		for _, line := range section.lines {
			if err := streamer.writeRow([]string{
				section.label,
				line.AccountCode,
				line.Description,
				fmt.Sprintf("%d", line.Level),
				formatAmount(line.Value),
			}); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeDRETotals(streamer *csvStreamer, totals dre.Totals) error {
	rows := [][]string{
		{"Totais", "", dre.LabelRevenue, "", formatAmount(totals.Revenue)},
		{"Totais", "", dre.LabelCost, "", formatAmount(totals.Cost)},
		{"Totais", "", dre.LabelExpense, "", formatAmount(totals.Expense)},
		{"Totais", "", "Outros", "", formatAmount(totals.Other)},
		{"Totais", "", dre.LabelOperatingProfit, "", formatAmount(totals.OperatingProfit)},
		{"Totais", "", dre.LabelNetResult, "", formatAmount(totals.NetResult)},
	}
	for _, row := range rows {
		if err := streamer.writeRow(row); err != nil {
			return err
		}
	}
	return nil
}

func writeDRECSV(w io.Writer, report reports.DREReport) error {
	streamer := newCSVStreamer(w)
	period := report.Statement.Period
	if err := streamer.writeComment(fmt.Sprintf("# Relatório: DRE | Empresa: %d | Período: %s a %s",
		report.Statement.CompanyID, period.Start.Format("2006-01-02"), period.End.Format("2006-01-02"))); err != nil {
		return err
	}
	if err := writeWarnings(streamer, report.Meta.Warnings); err != nil {
		return err
	}
	if err := streamer.writeRow([]string{"Seção", "Conta", "Descrição", "Nível", "Valor"}); err != nil {
		return err
	}
	if err := writeDRESections(streamer, report.Statement); err != nil {
		return err
	}
	if err := streamer.writeRow([]string{"", "", "", "", ""}); err != nil {
		return err
	}
	if err := writeDRETotals(streamer, report.Statement.Totals); err != nil {
		return err
	}
	return streamer.Close()
}

func writeConsolidatedCSV(w io.Writer, report reports.ConsolidatedReport) error {
	streamer := newCSVStreamer(w)
	if err := streamer.writeComment(fmt.Sprintf("# Relatório: DRE Consolidado | Empresas: %d", len(report.Report.PerCompany))); err != nil {
		return err
	}
	if err := writeWarnings(streamer, report.Meta.Warnings); err != nil {
		return err
	}
	if err := streamer.writeRow([]string{"Empresa", dre.LabelRevenue, dre.LabelCost, dre.LabelExpense, "Outros", dre.LabelOperatingProfit, dre.LabelNetResult}); err != nil {
		return err
	}
	for _, st := range report.Report.PerCompany {
		if err := streamer.writeRow([]string{
			fmt.Sprintf("%d", st.CompanyID),
			formatAmount(st.Totals.Revenue),
			formatAmount(st.Totals.Cost),
			formatAmount(st.Totals.Expense),
			formatAmount(st.Totals.Other),
			formatAmount(st.Totals.OperatingProfit),
			formatAmount(st.Totals.NetResult),
		}); err != nil {
			return err
		}
	}
	totals := report.Report.Totals
	if err := streamer.writeRow([]string{
		"Consolidado",
		formatAmount(totals.Revenue),
		formatAmount(totals.Cost),
		formatAmount(totals.Expense),
		formatAmount(totals.Other),
		formatAmount(totals.OperatingProfit),
		formatAmount(totals.NetResult),
	}); err != nil {
		return err
	}
	return streamer.Close()
}

func writeComparisonCSV(w io.Writer, report reports.ComparisonReport) error {
	streamer := newCSVStreamer(w)
	if err := streamer.writeComment(fmt.Sprintf("# Relatório: DRE Comparativo | Período A: %s a %s | Período B: %s a %s",
		report.PeriodA.Start.Format("2006-01-02"), report.PeriodA.End.Format("2006-01-02"),
		report.PeriodB.Start.Format("2006-01-02"), report.PeriodB.End.Format("2006-01-02"))); err != nil {
		return err
	}
	if err := writeWarnings(streamer, report.Meta.Warnings); err != nil {
		return err
	}
	if err := streamer.writeRow([]string{"Indicador", "Período A", "Período B", "Diferença", "Variação %"}); err != nil {
		return err
	}
	for _, row := range report.Rows {
		if err := streamer.writeRow([]string{
			row.Label,
			formatAmount(row.ValueA),
			formatAmount(row.ValueB),
			formatAmount(row.Difference),
			formatAmount(row.PercentDifference),
		}); err != nil {
			return err
		}
	}
	return streamer.Close()
}

func writeCashFlowCSV(w io.Writer, report reports.CashFlowReport) error {
	streamer := newCSVStreamer(w)
	st := report.Statement
	if err := streamer.writeComment(fmt.Sprintf("# Relatório: Fluxo de Caixa | Período: %s a %s | Saldo inicial: %s",
		st.Period.Start.Format("2006-01-02"), st.Period.End.Format("2006-01-02"), formatAmount(st.OpeningBalance))); err != nil {
		return err
	}
	if err := writeWarnings(streamer, report.Meta.Warnings); err != nil {
		return err
	}
	if err := streamer.writeRow([]string{
		"Data",
		"Entradas Realizadas", "Entradas Previstas",
		"Saídas Realizadas", "Saídas Previstas",
		"Saldo Dia Realizado", "Saldo Dia Previsto",
		"Saldo Acumulado Realizado", "Saldo Acumulado Previsto",
	}); err != nil {
		return err
	}
	for _, line := range st.Lines {
		if err := streamer.writeRow([]string{
			line.Date.Format("2006-01-02"),
			formatAmount(line.InflowRealized),
			formatAmount(line.InflowForecast),
			formatAmount(line.OutflowRealized),
			formatAmount(line.OutflowForecast),
			formatAmount(line.DailyRealized),
			formatAmount(line.DailyForecast),
			formatAmount(line.CumulativeRealized),
			formatAmount(line.CumulativeForecast),
		}); err != nil {
			return err
		}
	}
	if err := streamer.writeRow([]string{"", "", "", "", "", "", "", "", ""}); err != nil {
		return err
	}
	totalsRows := [][]string{
		{"Totais", formatAmount(st.TotalInflowRealized), formatAmount(st.TotalInflowForecast), formatAmount(st.TotalOutflowRealized), formatAmount(st.TotalOutflowForecast), "", "", formatAmount(st.FinalRealized), formatAmount(st.FinalForecast)},
	}
	for _, row := range totalsRows {
		if err := streamer.writeRow(row); err != nil {
			return err
		}
	}
	return streamer.Close()
}

func writeAccrualCashCSV(w io.Writer, report reports.AccrualCashReport) error {
	streamer := newCSVStreamer(w)
	if err := streamer.writeComment(fmt.Sprintf("# Relatório: DRE vs Fluxo de Caixa | Período: %s a %s",
		report.Period.Start.Format("2006-01-02"), report.Period.End.Format("2006-01-02"))); err != nil {
		return err
	}
	if err := streamer.writeComment("# " + report.Note); err != nil {
		return err
	}
	if err := writeWarnings(streamer, report.Meta.Warnings); err != nil {
		return err
	}
	if err := streamer.writeRow([]string{"Indicador", "Competência", "Caixa", "Diferença", "Variação %"}); err != nil {
		return err
	}
	for _, row := range report.Rows {
		if err := streamer.writeRow([]string{
			row.Label,
			formatAmount(row.ValueA),
			formatAmount(row.ValueB),
			formatAmount(row.Difference),
			formatAmount(row.PercentDifference),
		}); err != nil {
			return err
		}
	}
	return streamer.Close()
}

// serveCSV streams straight to the client. The report is already built by
// the time this runs, so failures here mean a broken connection, not a bad
// report; the status line is long gone and all that is left is logging.
func (h *Handler) serveCSV(w http.ResponseWriter, filename string, write func(io.Writer) error) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	if err := write(w); err != nil {
		h.logger.Error("stream csv export", slog.Any("error", err))
	}
}

// HandleDRECSV serves the CSV export of the income statement.
func (h *Handler) HandleDRECSV(w http.ResponseWriter, r *http.Request) {
	filters, parseErrors := parseDREFilters(r)
	if len(parseErrors) > 0 {
		h.respondParseErrors(w, parseErrors)
		return
	}
	report, err := h.service.DRE(r.Context(), filters)
	if err != nil {
		h.respondError(w, err)
		return
	}
	filename := fmt.Sprintf("dre-%d-%s.csv", filters.CompanyID, report.Statement.Period.Start.Format("2006-01-02"))
	h.serveCSV(w, filename, func(out io.Writer) error { return writeDRECSV(out, report) })
}

// HandleConsolidatedCSV serves the CSV export of the consolidation.
func (h *Handler) HandleConsolidatedCSV(w http.ResponseWriter, r *http.Request) {
	filters, parseErrors := parseConsolidatedFilters(r)
	if len(parseErrors) > 0 {
		h.respondParseErrors(w, parseErrors)
		return
	}
	report, err := h.service.ConsolidatedDRE(r.Context(), filters)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.serveCSV(w, "dre-consolidado.csv", func(out io.Writer) error { return writeConsolidatedCSV(out, report) })
}

// HandleComparisonCSV serves the CSV export of the period comparison.
func (h *Handler) HandleComparisonCSV(w http.ResponseWriter, r *http.Request) {
	filters, parseErrors := parseComparisonFilters(r)
	if len(parseErrors) > 0 {
		h.respondParseErrors(w, parseErrors)
		return
	}
	report, err := h.service.CompareDRE(r.Context(), filters)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.serveCSV(w, "dre-comparativo.csv", func(out io.Writer) error { return writeComparisonCSV(out, report) })
}

// HandleCashFlowCSV serves the CSV export of the daily timeline.
func (h *Handler) HandleCashFlowCSV(w http.ResponseWriter, r *http.Request) {
	filters, parseErrors := parseCashFlowFilters(r)
	if len(parseErrors) > 0 {
		h.respondParseErrors(w, parseErrors)
		return
	}
	report, err := h.service.CashFlow(r.Context(), filters)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.serveCSV(w, "fluxo-caixa.csv", func(out io.Writer) error { return writeCashFlowCSV(out, report) })
}

// HandleAccrualVsCashCSV serves the CSV export of the accrual-vs-cash rows.
func (h *Handler) HandleAccrualVsCashCSV(w http.ResponseWriter, r *http.Request) {
	filters, parseErrors := parseAccrualCashFilters(r)
	if len(parseErrors) > 0 {
		h.respondParseErrors(w, parseErrors)
		return
	}
	report, err := h.service.AccrualVsCash(r.Context(), filters)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.serveCSV(w, "dre-vs-fluxo.csv", func(out io.Writer) error { return writeAccrualCashCSV(out, report) })
}
