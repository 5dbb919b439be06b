package manifest

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/eugenenazirov/uld-packer/internal/geometry"
)

// Columns is the spreadsheet header, in the order WriteXLSX emits it.
var Columns = []string{"id", "length", "width", "height", "weight", "must_pack"}

var requiredColumns = []string{"length", "width", "height"}

// ReadXLSX reads boxes from the first sheet of a workbook. The first row is
// a header naming the columns; blank rows are skipped.
func ReadXLSX(r io.Reader) ([]geometry.Box, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("read sheet: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: empty sheet", ErrMissingColumn)
	}

	index := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "priority" {
			key = "must_pack"
		}
		index[key] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}

	boxes := make([]geometry.Box, 0, len(rows)-1)
	for n, row := range rows[1:] {
		if blank(row) {
			continue
		}
		line := n + 2
		cell := func(col string) string {
			i, ok := index[col]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		var b geometry.Box
		b.ID = cell("id")
		for _, field := range []struct {
			col string
			dst *float64
		}{
			{"length", &b.Length},
			{"width", &b.Width},
			{"height", &b.Height},
			{"weight", &b.Weight},
		} {
			raw := cell(field.col)
			if raw == "" && field.col == "weight" {
				continue
			}
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("%w %d: %s %q is not a number", ErrInvalidRow, line, field.col, raw)
			}
			*field.dst = v
		}
		must, err := parseFlag(cell("must_pack"))
		if err != nil {
			return nil, fmt.Errorf("%w %d: %v", ErrInvalidRow, line, err)
		}
		b.MustPack = must
		boxes = append(boxes, b)
	}
	return boxes, nil
}

// WriteXLSX writes boxes as a workbook that ReadXLSX accepts.
func WriteXLSX(w io.Writer, boxes []geometry.Box) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	header := make([]any, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, b := range boxes {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{b.ID, b.Length, b.Width, b.Height, b.Weight, b.MustPack}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return f.Write(w)
}

func parseFlag(raw string) (bool, error) {
	switch strings.ToLower(raw) {
	case "", "0", "false", "no", "n":
		return false, nil
	case "1", "true", "yes", "y", "x":
		return true, nil
	default:
		return false, fmt.Errorf("must_pack %q is not a flag", raw)
	}
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
