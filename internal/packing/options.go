package packing

// Option configures Build.
type Option func(*options)

type options struct {
	kind         Kind
	bigM         float64
	explicitBigM bool
	name         string
}

func defaultOptions() options {
	return options{
		kind: FormulationPairwise,
		name: "uld_packing",
	}
}

// WithKind selects the non-overlap formulation.
func WithKind(k Kind) Option {
	return func(o *options) {
		o.kind = k
	}
}

// WithBigM overrides the input-derived big-M on every axis. Values that do
// not exceed container extent plus the largest box dimension cut off
// feasible packings; Build only rejects non-positive values.
func WithBigM(m float64) Option {
	return func(o *options) {
		o.bigM = m
		o.explicitBigM = true
	}
}

// WithName sets the model name used in exports.
func WithName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.name = name
		}
	}
}
