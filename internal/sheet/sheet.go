// Package sheet loads a spreadsheet tab into a plain string grid.
package sheet

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrSheetNotFound is returned when a workbook has no tab with the requested name.
var ErrSheetNotFound = errors.New("sheet not found")

// Grid holds cell text by row then column. Rows may be ragged.
type Grid [][]string

// Cell returns the trimmed text at (row, col), or "" when out of range.
func (g Grid) Cell(row, col int) string {
	if row < 0 || row >= len(g) || col < 0 || col >= len(g[row]) {
		return ""
	}
	return strings.TrimSpace(g[row][col])
}

// Open reads the named tab of an .xlsx workbook, or the whole of a .csv file
// (the name is ignored). Workbook cells come back as raw values, so dates
// appear as Excel serial numbers.
func Open(path, name string) (Grid, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return openWorkbook(path, name)
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		defer f.Close()
		return ReadCSV(f)
	default:
		return nil, fmt.Errorf("unsupported spreadsheet type %q", filepath.Ext(path))
	}
}

func openWorkbook(path, name string) (Grid, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()

	if idx, err := f.GetSheetIndex(name); err != nil || idx < 0 {
		return nil, fmt.Errorf("%w: %q in %s", ErrSheetNotFound, name, filepath.Base(path))
	}
	rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", name, err)
	}
	return Grid(rows), nil
}

// ReadCSV reads every record from r. Records may have differing field counts.
func ReadCSV(r io.Reader) (Grid, error) {
	cr := csv.NewReader(bufio.NewReader(r))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	var g Grid
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		g = append(g, rec)
	}
	return g, nil
}
