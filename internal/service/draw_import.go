package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/jask/liquidity/internal/config"
	"github.com/jask/liquidity/internal/database/repository"
	"github.com/jask/liquidity/internal/logger"
	"github.com/jask/liquidity/internal/sheet"
)

// ErrImportFailed wraps every reason a draw spreadsheet cannot be imported.
var ErrImportFailed = errors.New("import failed")

// Block maps one partner to their columns in the draw sheet.
type Block struct {
	Partner repository.Partner
	Roles   config.ColumnRoles
}

// DrawLayout describes the draw sheet. Blocks are parsed independently in order.
type DrawLayout struct {
	HeaderRows   int
	FallbackDate time.Time
	Blocks       []Block
}

// LayoutFromConfig builds the two-block layout: Katie on the left, Mark on the right.
func LayoutFromConfig(c config.ImportConfig) (DrawLayout, error) {
	fallback, err := time.Parse(time.DateOnly, c.FallbackDate)
	if err != nil {
		return DrawLayout{}, fmt.Errorf("fallback date: %w", err)
	}
	return DrawLayout{
		HeaderRows:   c.HeaderRows,
		FallbackDate: fallback,
		Blocks: []Block{
			{Partner: repository.PartnerKatie, Roles: c.Katie},
			{Partner: repository.PartnerMark, Roles: c.Mark},
		},
	}, nil
}

// ImportResult is the outcome of parsing a draw sheet. Skipped counts partner
// rows that had a description or an amount but not both.
type ImportResult struct {
	Draws   []repository.NewDraw
	Counts  map[repository.Partner]int
	Skipped int
}

// ParseDraws turns grid into draws. Each block resolves a row's date from its
// own date cell, then its fallback column on the same row, then the last date
// it resolved, then the layout's fallback date.
func ParseDraws(grid sheet.Grid, layout DrawLayout) (ImportResult, error) {
	res := ImportResult{Counts: map[repository.Partner]int{}}
	for _, b := range layout.Blocks {
		res.Counts[b.Partner] = 0
		var last *time.Time
		for row := layout.HeaderRows; row < len(grid); row++ {
			desc := grid.Cell(row, b.Roles.Description)
			rawAmount := grid.Cell(row, b.Roles.Amount)
			if desc == "" || rawAmount == "" {
				if desc != "" || rawAmount != "" {
					res.Skipped++
				}
				continue
			}
			amount, err := parseAmount(rawAmount)
			if err != nil {
				return ImportResult{}, fmt.Errorf("%w: row %d %s amount %q: %v", ErrImportFailed, row+1, b.Partner, rawAmount, err)
			}

			day, ok := parseDrawDate(grid.Cell(row, b.Roles.Date))
			if !ok && b.Roles.FallbackDateCol >= 0 {
				day, ok = parseDrawDate(grid.Cell(row, b.Roles.FallbackDateCol))
			}
			switch {
			case ok:
			case last != nil:
				day = *last
			default:
				day = layout.FallbackDate
			}
			last = &day

			d := repository.NewDraw{Partner: b.Partner, Date: day, Description: desc, Amount: amount}
			if b.Roles.Notes >= 0 {
				if n := grid.Cell(row, b.Roles.Notes); n != "" {
					d.Notes = &n
				}
			}
			res.Draws = append(res.Draws, d)
			res.Counts[b.Partner]++
		}
	}
	if len(res.Draws) == 0 {
		return ImportResult{}, fmt.Errorf("%w: no draw rows found", ErrImportFailed)
	}
	return res, nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.NewReplacer("$", "", ",", "").Replace(s)
	return decimal.NewFromString(strings.TrimSpace(s))
}

var drawDateLayouts = []string{
	time.DateOnly,
	time.DateTime,
	"1/2/2006",
	"01/02/2006",
	"1/2/06",
	"Jan 2, 2006",
	"2-Jan-2006",
}

// Excel serials between 1900-01-01 and 9999-12-31.
const maxExcelSerial = 2958465

// parseDrawDate reads a date cell. Anything unreadable counts as absent.
func parseDrawDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		if f < 1 || f > maxExcelSerial {
			return time.Time{}, false
		}
		t, err := excelize.ExcelDateToTime(f, false)
		if err != nil {
			return time.Time{}, false
		}
		return dateOnly(t), true
	}
	for _, layout := range drawDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return dateOnly(t), true
		}
	}
	return time.Time{}, false
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DrawImporter loads the partner draw spreadsheet into the store.
type DrawImporter struct {
	Draws  *repository.DrawRepo
	Sheet  string
	Layout DrawLayout
}

// PreviewFromSpreadsheet parses path without touching the store.
func (s *DrawImporter) PreviewFromSpreadsheet(ctx context.Context, path string) (ImportResult, error) {
	grid, err := sheet.Open(path, s.Sheet)
	if err != nil {
		return ImportResult{}, fmt.Errorf("%w: %w", ErrImportFailed, err)
	}
	res, err := ParseDraws(grid, s.Layout)
	if err != nil {
		return ImportResult{}, err
	}
	log := logger.FromContext(ctx)
	log.Debug().Str("path", path).Int("draws", len(res.Draws)).Int("skipped", res.Skipped).Msg("draw preview parsed")
	return res, nil
}

// ReplaceAllFromSpreadsheet deletes every stored draw and replaces them with
// the rows parsed from path. Nothing is deleted when parsing or any insert fails.
func (s *DrawImporter) ReplaceAllFromSpreadsheet(ctx context.Context, path string) (ImportResult, error) {
	if s.Draws == nil {
		return ImportResult{}, fmt.Errorf("draw import: repo not configured")
	}
	res, err := s.PreviewFromSpreadsheet(ctx, path)
	if err != nil {
		return ImportResult{}, err
	}
	if err := s.Draws.ReplaceAll(ctx, res.Draws); err != nil {
		return ImportResult{}, fmt.Errorf("replace draws: %w", err)
	}
	log := logger.FromContext(ctx)
	log.Info().
		Str("path", path).
		Int(string(repository.PartnerKatie), res.Counts[repository.PartnerKatie]).
		Int(string(repository.PartnerMark), res.Counts[repository.PartnerMark]).
		Int("skipped", res.Skipped).
		Msg("draws replaced")
	return res, nil
}
