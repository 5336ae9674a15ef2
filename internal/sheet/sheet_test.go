package sheet

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestGridCell(t *testing.T) {
	g := Grid{{"a", " b "}, {}}
	require.Equal(t, "b", g.Cell(0, 1))
	require.Equal(t, "", g.Cell(0, 5))
	require.Equal(t, "", g.Cell(1, 0))
	require.Equal(t, "", g.Cell(9, 0))
	require.Equal(t, "", g.Cell(-1, 0))
}

func TestReadCSVRagged(t *testing.T) {
	g, err := ReadCSV(strings.NewReader("Date,Desc,Amount\n1/5/2025,Coffee,-12.50\n,Lunch\n"))
	require.NoError(t, err)
	require.Len(t, g, 3)
	require.Equal(t, "-12.50", g.Cell(1, 2))
	require.Equal(t, "", g.Cell(2, 2))
}

func TestOpenCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "draws.csv")
	require.NoError(t, os.WriteFile(path, []byte("h\nx,y\n"), 0o644))

	g, err := Open(path, "ignored")
	require.NoError(t, err)
	require.Equal(t, "y", g.Cell(1, 1))
}

func TestOpenWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "draws.xlsx")
	f := excelize.NewFile()
	_, err := f.NewSheet("Draw 2025")
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue("Draw 2025", "A1", "Date"))
	require.NoError(t, f.SetCellValue("Draw 2025", "B2", "Coffee"))
	require.NoError(t, f.SetCellValue("Draw 2025", "C2", -12.5))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	g, err := Open(path, "Draw 2025")
	require.NoError(t, err)
	require.Equal(t, "Date", g.Cell(0, 0))
	require.Equal(t, "Coffee", g.Cell(1, 1))
	require.Equal(t, "-12.5", g.Cell(1, 2))

	_, err = Open(path, "Draw 2024")
	require.ErrorIs(t, err, ErrSheetNotFound)
}

func TestOpenWorkbookDateCellsAreSerials(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dates.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, f.SetCellValue("Sheet1", "B1", time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	g, err := Open(path, "Sheet1")
	require.NoError(t, err)
	require.Equal(t, "45662", g.Cell(0, 0))
	require.Equal(t, "45725", g.Cell(0, 1))
}

func TestOpenErrors(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.xlsx"), "Sheet1")
	require.Error(t, err)

	_, err = Open("draws.ods", "Sheet1")
	require.ErrorContains(t, err, "unsupported")
}
