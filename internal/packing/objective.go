package packing

import (
	"fmt"
	"strings"

	"github.com/eugenenazirov/uld-packer/internal/geometry"
)

// Objective selects what the packing maximises.
type Objective int

const (
	// MaximizeCount maximises the number of packed boxes.
	MaximizeCount Objective = iota
	// MaximizeVolume maximises the total volume of packed boxes.
	MaximizeVolume
	// MaximizeWeight maximises the total weight of packed boxes.
	MaximizeWeight
)

var objectiveNames = map[Objective]string{
	MaximizeCount:  "count",
	MaximizeVolume: "volume",
	MaximizeWeight: "weight",
}

// Valid reports whether o is a known objective.
func (o Objective) Valid() bool {
	_, ok := objectiveNames[o]
	return ok
}

func (o Objective) String() string {
	if name, ok := objectiveNames[o]; ok {
		return name
	}
	return fmt.Sprintf("objective(%d)", int(o))
}

// Value is what packing b contributes to the objective.
func (o Objective) Value(b geometry.Box) float64 {
	switch o {
	case MaximizeVolume:
		return b.Volume()
	case MaximizeWeight:
		return b.Weight
	default:
		return 1
	}
}

// ParseObjective accepts "count", "volume" and "weight", optionally with a
// "maximize_" prefix. The empty string selects MaximizeCount.
func ParseObjective(s string) (Objective, error) {
	key := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "maximize_")
	if key == "" {
		return MaximizeCount, nil
	}
	for o, name := range objectiveNames {
		if name == key {
			return o, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownObjective, s)
}

// MarshalText implements encoding.TextMarshaler.
func (o Objective) MarshalText() ([]byte, error) {
	if !o.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownObjective, int(o))
	}
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *Objective) UnmarshalText(text []byte) error {
	parsed, err := ParseObjective(string(text))
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}

// Kind selects how non-overlap is formulated.
type Kind int

const (
	// FormulationPairwise uses six directional separation indicators per box
	// pair, with extents selected through the orientation indicators.
	FormulationPairwise Kind = iota
	// FormulationOrientationPairs uses six separation indicators for every
	// pair of boxes and every pair of their orientations. It is much larger
	// and mainly useful for export to external solvers.
	FormulationOrientationPairs
)

var kindNames = map[Kind]string{
	FormulationPairwise:         "pairwise",
	FormulationOrientationPairs: "orientation-pairs",
}

// Valid reports whether k is a known formulation.
func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind accepts "pairwise" and "orientation-pairs". The empty string
// selects FormulationPairwise.
func ParseKind(s string) (Kind, error) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-")
	if key == "" {
		return FormulationPairwise, nil
	}
	for k, name := range kindNames {
		if name == key {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFormulation, s)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownFormulation, int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
