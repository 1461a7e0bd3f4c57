package backtest

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"stock-backtest/internal/model"
)

// WriteTradesCSV writes the closed-trade table, one row per round trip.
// This is the primary artifact for "what happened" in a backtest.
func WriteTradesCSV(path string, trades []*model.Trade) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{
		"symbol",
		"entry_date",
		"entry_price",
		"exit_date",
		"exit_price",
		"quantity",
		"invested",
		"exit_amount",
		"pnl",
		"pnl_pct",
		"holding_days",
		"entry_reason",
		"exit_reason",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, t := range trades {
		row := []string{
			t.Symbol,
			fmtDate(t.EntryDate),
			fmtDecimal(t.EntryPrice),
			fmtDate(t.ExitDate),
			fmtDecimal(t.ExitPrice),
			strconv.FormatInt(t.Quantity, 10),
			fmtDecimal(t.InvestedAmount),
			fmtDecimal(t.ExitAmount),
			fmtDecimal(t.PnL),
			fmtDecimal(t.PnLPct),
			strconv.Itoa(t.HoldingDays),
			t.EntryReason,
			t.ExitReason,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}

// WriteEquityCSV writes the per-day snapshot history for external charting.
func WriteEquityCSV(path string, snapshots []Snapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{
		"date",
		"cash",
		"invested",
		"equity",
		"open_positions",
		"trades_this_week",
		"trades_this_month",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, s := range snapshots {
		row := []string{
			fmtDate(s.Date),
			fmtDecimal(s.Cash),
			fmtDecimal(s.Invested),
			fmtDecimal(s.Equity),
			strconv.Itoa(s.OpenPositions),
			strconv.Itoa(s.TradesThisWeek),
			strconv.Itoa(s.TradesThisMonth),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}

func fmtDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func fmtDecimal(d decimal.Decimal) string {
	return d.StringFixed(4)
}
