package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/eugenenazirov/uld-packer/internal/geometry"
)

var palette = []string{"#5470c6", "#91cc75", "#fac858", "#ee6666", "#73c0de", "#3ba272", "#fc8452", "#9a60b4", "#ea7ccc"}

// WriteChart renders packed boxes as an interactive 3D scatter page. Each
// box is drawn as the eight corners of its placed extent.
func WriteChart(w io.Writer, title string, c geometry.Container, boxes []geometry.Box, placements []geometry.Placement) error {
	chart := charts.NewScatter3D()
	chart.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: fmt.Sprintf("container %g x %g x %g", c.Length, c.Width, c.Height),
		}),
		charts.WithXAxis3DOpts(opts.XAxis3D{Name: "x", Min: 0, Max: c.Length}),
		charts.WithYAxis3DOpts(opts.YAxis3D{Name: "y", Min: 0, Max: c.Width}),
		charts.WithZAxis3DOpts(opts.ZAxis3D{Name: "z", Min: 0, Max: c.Height}),
	)

	chart.AddSeries("container", corners("container", geometry.Vec3{}, c.Size(), "#cccccc"))
	for n, pl := range placements {
		if !pl.Packed {
			continue
		}
		label := boxes[pl.Index].Label(pl.Index)
		chart.AddSeries(label, corners(label, pl.Position, pl.Extent, palette[n%len(palette)]))
	}
	return chart.Render(w)
}

func corners(name string, origin, extent geometry.Vec3, color string) []opts.Chart3DData {
	out := make([]opts.Chart3DData, 0, 8)
	for mask := 0; mask < 8; mask++ {
		var p [3]any
		for axis := range 3 {
			v := origin[axis]
			if mask&(1<<axis) != 0 {
				v += extent[axis]
			}
			p[axis] = v
		}
		out = append(out, opts.Chart3DData{
			Name:      name,
			Value:     p[:],
			ItemStyle: &opts.ItemStyle{Color: color},
		})
	}
	return out
}
