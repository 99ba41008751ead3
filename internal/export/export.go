// Package export writes the projected county table as a downloadable file.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/census-explorer/internal/pipeline"
	"github.com/KaramelBytes/census-explorer/internal/utils"
)

// DefaultFileName is the name offered for the CSV download.
const DefaultFileName = "census_data_county_level.csv"

// SheetName is the worksheet used for XLSX exports.
const SheetName = "County Data"

// Format selects the export file type.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat accepts "csv" or "xlsx" in any case.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("unsupported export format %q (use csv or xlsx)", s)
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv"
}

// WriteCSV writes the display columns of t with a header row. Absent values are
// written as empty cells.
func WriteCSV(w io.Writer, t *pipeline.Table) error {
	f, err := t.Display()
	if err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(f.Names()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	rec := make([]string, len(f.Columns))
	for r := 0; r < f.Len(); r++ {
		for i, c := range f.Columns {
			rec[i] = formatValue(c.Values[r])
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row %d: %w", r+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes the display columns of t to a single-sheet workbook.
func WriteXLSX(w io.Writer, t *pipeline.Table) error {
	fr, err := t.Display()
	if err != nil {
		return err
	}
	x := excelize.NewFile()
	defer x.Close()
	if err := x.SetSheetName(x.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	header := make([]interface{}, len(fr.Columns))
	for i, n := range fr.Names() {
		header[i] = n
	}
	if err := x.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for r := 0; r < fr.Len(); r++ {
		row := make([]interface{}, len(fr.Columns))
		for i, c := range fr.Columns {
			if v := c.Values[r]; !math.IsNaN(v) {
				row[i] = v
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := x.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", r+1, err)
		}
	}
	if err := x.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// Write encodes t in the given format.
func Write(w io.Writer, t *pipeline.Table, format Format) error {
	if format == FormatXLSX {
		return WriteXLSX(w, t)
	}
	return WriteCSV(w, t)
}

// Save writes t to path atomically.
func Save(path string, t *pipeline.Table, format Format) error {
	var buf bytes.Buffer
	if err := Write(&buf, t, format); err != nil {
		return err
	}
	return utils.SafeWriteFile(path, buf.Bytes())
}

func formatValue(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
