package data

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"stock-backtest/internal/model"
)

// requiredColumns is the canonical column set of a processed OHLCV dataset.
// Sourcing and column normalization happen upstream; this loader only
// validates and parses.
var requiredColumns = []string{"DATE", "OPEN", "HIGH", "LOW", "CLOSE", "VOLUME"}

// LoadSeriesCSV reads one symbol's OHLCV series from a CSV file with a
// DATE,OPEN,HIGH,LOW,CLOSE,VOLUME header (any column order, case-insensitive).
// The series must be chronologically sorted with no duplicate dates.
func LoadSeriesCSV(path string) ([]model.Bar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("%s: read header: %w", path, err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToUpper(strings.TrimSpace(name))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("%s: missing required column %s", path, name)
		}
	}

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	bars := make([]model.Bar, 0, len(records))
	var prev time.Time
	for i, rec := range records {
		bar, err := parseBar(rec, col)
		if err != nil {
			return nil, fmt.Errorf("%s: row %d: %w", path, i+2, err)
		}
		if !prev.IsZero() {
			if bar.Date.Equal(prev) {
				return nil, fmt.Errorf("%s: row %d: duplicate date %s", path, i+2, bar.Date.Format("2006-01-02"))
			}
			if bar.Date.Before(prev) {
				return nil, fmt.Errorf("%s: row %d: dates not sorted (%s after %s)", path, i+2, bar.Date.Format("2006-01-02"), prev.Format("2006-01-02"))
			}
		}
		prev = bar.Date
		bars = append(bars, bar)
	}
	return bars, nil
}

func parseBar(rec []string, col map[string]int) (model.Bar, error) {
	field := func(name string) string { return strings.TrimSpace(rec[col[name]]) }

	date, err := time.ParseInLocation("2006-01-02", field("DATE"), time.UTC)
	if err != nil {
		return model.Bar{}, fmt.Errorf("invalid date %q", field("DATE"))
	}
	prices := make(map[string]float64, 4)
	for _, name := range []string{"OPEN", "HIGH", "LOW", "CLOSE"} {
		v, err := strconv.ParseFloat(field(name), 64)
		if err != nil {
			return model.Bar{}, fmt.Errorf("invalid %s %q", strings.ToLower(name), field(name))
		}
		prices[name] = v
	}
	volume, err := strconv.ParseInt(field("VOLUME"), 10, 64)
	if err != nil {
		return model.Bar{}, fmt.Errorf("invalid volume %q", field("VOLUME"))
	}
	return model.Bar{
		Date:   model.Day(date),
		Open:   prices["OPEN"],
		High:   prices["HIGH"],
		Low:    prices["LOW"],
		Close:  prices["CLOSE"],
		Volume: volume,
	}, nil
}

// LoadDir loads <dir>/<SYMBOL>.csv for each requested symbol. With an empty
// symbol list it loads every .csv file in the directory, keyed by file name.
func LoadDir(dir string, symbols []string) (map[string][]model.Bar, error) {
	if len(symbols) == 0 {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), ".csv") {
				continue
			}
			symbols = append(symbols, strings.TrimSuffix(e.Name(), ".csv"))
		}
	}
	if len(symbols) == 0 {
		return nil, fmt.Errorf("no datasets in %s", dir)
	}

	out := make(map[string][]model.Bar, len(symbols))
	for _, sym := range symbols {
		bars, err := LoadSeriesCached(dir, sym, filepath.Join(dir, sym+".csv"))
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", sym, err)
		}
		out[sym] = bars
	}
	return out, nil
}

// DatasetInfo summarizes one on-disk symbol series for listings.
type DatasetInfo struct {
	Symbol    string    `json:"symbol"`
	Rows      int       `json:"rows"`
	FirstDate time.Time `json:"first_date"`
	LastDate  time.Time `json:"last_date"`
}

// ListDatasets scans a directory of per-symbol CSVs and summarizes each one.
// Unreadable files are skipped rather than failing the whole listing.
func ListDatasets(dir string) ([]DatasetInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []DatasetInfo
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".csv") {
			continue
		}
		symbol := strings.TrimSuffix(e.Name(), ".csv")
		bars, err := LoadSeriesCSV(filepath.Join(dir, e.Name()))
		if err != nil || len(bars) == 0 {
			continue
		}
		out = append(out, DatasetInfo{
			Symbol:    symbol,
			Rows:      len(bars),
			FirstDate: bars[0].Date,
			LastDate:  bars[len(bars)-1].Date,
		})
	}
	return out, nil
}
