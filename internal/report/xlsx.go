package report

import (
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/eugenenazirov/uld-packer/internal/geometry"
)

var placementColumns = []any{"id", "must_pack", "packed", "orientation", "x", "y", "z", "dx", "dy", "dz", "weight"}

// WriteXLSX writes one row per box with its placement.
func WriteXLSX(w io.Writer, boxes []geometry.Box, placements []geometry.Placement) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	if err := f.SetSheetRow(sheet, "A1", &placementColumns); err != nil {
		return err
	}
	for i, pl := range placements {
		b := boxes[pl.Index]
		row := []any{b.Label(pl.Index), b.MustPack, pl.Packed}
		if pl.Packed {
			row = append(row, pl.Orientation.String(),
				pl.Position[0], pl.Position[1], pl.Position[2],
				pl.Extent[0], pl.Extent[1], pl.Extent[2], b.Weight)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return f.Write(w)
}
