package data

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const validCSV = `DATE,OPEN,HIGH,LOW,CLOSE,VOLUME
2024-01-01,100.0,105.0,99.0,104.0,12000
2024-01-02,104.0,110.0,103.0,108.5,15000
2024-01-03,108.5,109.0,101.0,102.0,9000
`

func TestLoadSeriesCSVParsesValidFile(t *testing.T) {
	path := writeCSV(t, t.TempDir(), "TCS.csv", validCSV)

	bars, err := LoadSeriesCSV(path)
	require.NoError(t, err)
	require.Len(t, bars, 3)

	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), bars[0].Date)
	assert.Equal(t, 104.0, bars[0].Close)
	assert.Equal(t, int64(12000), bars[0].Volume)
	assert.Equal(t, 101.0, bars[2].Low)
}

func TestLoadSeriesCSVAcceptsReorderedLowercaseHeader(t *testing.T) {
	csv := "close,date,volume,open,high,low\n104.0,2024-01-01,12000,100.0,105.0,99.0\n"
	path := writeCSV(t, t.TempDir(), "X.csv", csv)

	bars, err := LoadSeriesCSV(path)
	require.NoError(t, err)
	require.Len(t, bars, 1)
	assert.Equal(t, 104.0, bars[0].Close)
	assert.Equal(t, 99.0, bars[0].Low)
}

func TestLoadSeriesCSVRejectsMissingColumn(t *testing.T) {
	csv := "DATE,OPEN,HIGH,LOW,CLOSE\n2024-01-01,1,1,1,1\n"
	path := writeCSV(t, t.TempDir(), "X.csv", csv)

	_, err := LoadSeriesCSV(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "VOLUME")
}

func TestLoadSeriesCSVRejectsUnsortedDates(t *testing.T) {
	csv := `DATE,OPEN,HIGH,LOW,CLOSE,VOLUME
2024-01-02,1,1,1,1,100
2024-01-01,1,1,1,1,100
`
	path := writeCSV(t, t.TempDir(), "X.csv", csv)

	_, err := LoadSeriesCSV(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not sorted")
}

func TestLoadSeriesCSVRejectsDuplicateDates(t *testing.T) {
	csv := `DATE,OPEN,HIGH,LOW,CLOSE,VOLUME
2024-01-01,1,1,1,1,100
2024-01-01,1,1,1,1,100
`
	path := writeCSV(t, t.TempDir(), "X.csv", csv)

	_, err := LoadSeriesCSV(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestLoadSeriesCSVRejectsMalformedValues(t *testing.T) {
	tests := []struct {
		name string
		row  string
	}{
		{"bad date", "01/02/2024,1,1,1,1,100"},
		{"bad close", "2024-01-01,1,1,1,abc,100"},
		{"bad volume", "2024-01-01,1,1,1,1,12.5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			csv := "DATE,OPEN,HIGH,LOW,CLOSE,VOLUME\n" + tt.row + "\n"
			path := writeCSV(t, t.TempDir(), "X.csv", csv)
			_, err := LoadSeriesCSV(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadDirLoadsRequestedSymbols(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "TCS.csv", validCSV)
	writeCSV(t, dir, "INFY.csv", validCSV)

	out, err := LoadDir(dir, []string{"TCS"})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Len(t, out["TCS"], 3)
}

func TestLoadDirDiscoversAllDatasets(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "TCS.csv", validCSV)
	writeCSV(t, dir, "INFY.csv", validCSV)
	writeCSV(t, dir, "notes.txt", "not a dataset")

	out, err := LoadDir(dir, nil)
	require.NoError(t, err)
	assert.Len(t, out, 2)
	assert.Contains(t, out, "TCS")
	assert.Contains(t, out, "INFY")
}

func TestLoadDirFailsOnMissingSymbol(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "TCS.csv", validCSV)

	_, err := LoadDir(dir, []string{"TCS", "MISSING"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MISSING")
}

func TestLoadDirFailsOnEmptyDir(t *testing.T) {
	_, err := LoadDir(t.TempDir(), nil)
	assert.Error(t, err)
}

func TestListDatasetsSummarizesAndSkipsBroken(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "TCS.csv", validCSV)
	writeCSV(t, dir, "BROKEN.csv", "DATE,OPEN\nnot,valid\n")

	infos, err := ListDatasets(dir)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "TCS", infos[0].Symbol)
	assert.Equal(t, 3, infos[0].Rows)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), infos[0].FirstDate)
	assert.Equal(t, time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), infos[0].LastDate)
}

func TestSeriesCacheDisabledByDefault(t *testing.T) {
	assert.Nil(t, GetCache())

	// A nil cache behaves as a permanent miss and absorbs writes.
	var c *SeriesCache
	c.Set("k", nil)
	_, ok := c.Get("k")
	assert.False(t, ok)
	c.Clear()
}

func TestCacheKeyIsDeterministic(t *testing.T) {
	a := CacheKey("data", "TCS")
	b := CacheKey("data", "TCS")
	other := CacheKey("data", "INFY")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, other)
}
