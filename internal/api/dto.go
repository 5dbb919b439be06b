package api

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/eugenenazirov/uld-packer/internal/geometry"
	"github.com/eugenenazirov/uld-packer/internal/planner"
)

type containerDTO struct {
	Length float64 `json:"length" validate:"gt=0"`
	Width  float64 `json:"width" validate:"gt=0"`
	Height float64 `json:"height" validate:"gt=0"`
}

func (c containerDTO) toContainer() geometry.Container {
	return geometry.Container{Length: c.Length, Width: c.Width, Height: c.Height}
}

type boxDTO struct {
	ID       string  `json:"id" validate:"max=64"`
	Length   float64 `json:"length" validate:"gt=0"`
	Width    float64 `json:"width" validate:"gt=0"`
	Height   float64 `json:"height" validate:"gt=0"`
	Weight   float64 `json:"weight" validate:"gte=0"`
	MustPack bool    `json:"mustPack"`
}

func (b boxDTO) toBox() geometry.Box {
	return geometry.Box{
		ID:       b.ID,
		Length:   b.Length,
		Width:    b.Width,
		Height:   b.Height,
		Weight:   b.Weight,
		MustPack: b.MustPack,
	}
}

type packRequest struct {
	ULD         string        `json:"uld" validate:"omitempty,max=16"`
	Container   *containerDTO `json:"container" validate:"required_without=ULD"`
	Boxes       []boxDTO      `json:"boxes" validate:"dive"`
	Objective   string        `json:"objective"`
	Formulation string        `json:"formulation"`
}

type placementDTO struct {
	Index       int            `json:"index"`
	ID          string         `json:"id"`
	Packed      bool           `json:"packed"`
	MustPack    bool           `json:"mustPack"`
	Orientation string         `json:"orientation,omitempty"`
	Position    *geometry.Vec3 `json:"position,omitempty"`
	Extent      *geometry.Vec3 `json:"extent,omitempty"`
}

type packResponse struct {
	Status       string             `json:"status"`
	Objective    string             `json:"objective"`
	Value        float64            `json:"value"`
	PackedCount  int                `json:"packedCount"`
	TotalBoxes   int                `json:"totalBoxes"`
	PackedVolume float64            `json:"packedVolume"`
	PackedWeight float64            `json:"packedWeight"`
	FillRatio    float64            `json:"fillRatio"`
	Container    geometry.Container `json:"container"`
	Placements   []placementDTO     `json:"placements"`
	Stats        statsDTO           `json:"stats"`
}

type statsDTO struct {
	Variables   int   `json:"variables"`
	Constraints int   `json:"constraints"`
	Integers    int   `json:"integers"`
	Nodes       int   `json:"nodes"`
	BuildTimeMs int64 `json:"buildTimeMs"`
	SolveTimeMs int64 `json:"solveTimeMs"`
}

func newPackResponse(req planner.Request, res *planner.Result) packResponse {
	resp := packResponse{
		Status:       res.Status.String(),
		Objective:    req.Objective.String(),
		Value:        res.Objective,
		PackedCount:  res.PackedCount,
		TotalBoxes:   len(req.Boxes),
		PackedVolume: res.PackedVolume,
		PackedWeight: res.PackedWeight,
		FillRatio:    res.PackedVolume / req.Container.Volume(),
		Container:    req.Container,
		Placements:   make([]placementDTO, 0, len(res.Placements)),
		Stats: statsDTO{
			Variables:   res.Stats.Variables,
			Constraints: res.Stats.Constraints,
			Integers:    res.Stats.Integers,
			Nodes:       res.Stats.Nodes,
			BuildTimeMs: res.Stats.BuildTime.Milliseconds(),
			SolveTimeMs: res.Stats.SolveTime.Milliseconds(),
		},
	}
	for _, pl := range res.Placements {
		box := req.Boxes[pl.Index]
		dto := placementDTO{
			Index:    pl.Index,
			ID:       box.Label(pl.Index),
			Packed:   pl.Packed,
			MustPack: box.MustPack,
		}
		if pl.Packed {
			pos, ext := pl.Position, pl.Extent
			dto.Orientation = pl.Orientation.String()
			dto.Position = &pos
			dto.Extent = &ext
		}
		resp.Placements = append(resp.Placements, dto)
	}
	return resp
}

// validationMessage flattens validator errors into one readable line.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.TrimPrefix(fe.Namespace(), "packRequest.")
		field = strings.TrimPrefix(field, "containerDTO.")
		switch fe.Tag() {
		case "gt":
			parts = append(parts, fmt.Sprintf("%s must be greater than %s", field, fe.Param()))
		case "gte":
			parts = append(parts, fmt.Sprintf("%s must be at least %s", field, fe.Param()))
		case "required_without":
			parts = append(parts, fmt.Sprintf("%s is required when %s is missing", field, fe.Param()))
		case "max":
			parts = append(parts, fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
		default:
			parts = append(parts, fmt.Sprintf("%s failed %s", field, fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}
