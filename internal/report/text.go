package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/eugenenazirov/uld-packer/internal/geometry"
	"github.com/eugenenazirov/uld-packer/internal/planner"
)

// WriteText prints a summary line and one row per box.
func WriteText(w io.Writer, c geometry.Container, boxes []geometry.Box, res *planner.Result) error {
	fill := 0.0
	if v := c.Volume(); v > 0 {
		fill = 100 * res.PackedVolume / v
	}
	if _, err := fmt.Fprintf(w, "status %s, objective %g, packed %d/%d, volume %g (%.1f%%), weight %g, nodes %d, solve %s\n\n",
		res.Status, res.Objective, res.PackedCount, len(boxes), res.PackedVolume, fill, res.PackedWeight,
		res.Stats.Nodes, res.Stats.SolveTime); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "BOX\tMUST\tPACKED\tORIENT\tX\tY\tZ\tDX\tDY\tDZ")
	for _, pl := range res.Placements {
		b := boxes[pl.Index]
		if !pl.Packed {
			fmt.Fprintf(tw, "%s\t%t\tno\t-\t-\t-\t-\t-\t-\t-\n", b.Label(pl.Index), b.MustPack)
			continue
		}
		fmt.Fprintf(tw, "%s\t%t\tyes\t%s\t%g\t%g\t%g\t%g\t%g\t%g\n",
			b.Label(pl.Index), b.MustPack, pl.Orientation,
			pl.Position[0], pl.Position[1], pl.Position[2],
			pl.Extent[0], pl.Extent[1], pl.Extent[2])
	}
	return tw.Flush()
}
