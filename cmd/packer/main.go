package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/eugenenazirov/uld-packer/internal/config"
	"github.com/eugenenazirov/uld-packer/internal/geometry"
	"github.com/eugenenazirov/uld-packer/internal/logging"
	"github.com/eugenenazirov/uld-packer/internal/manifest"
	"github.com/eugenenazirov/uld-packer/internal/packing"
	"github.com/eugenenazirov/uld-packer/internal/planner"
	"github.com/eugenenazirov/uld-packer/internal/report"
	"github.com/eugenenazirov/uld-packer/internal/solver"
	"github.com/eugenenazirov/uld-packer/internal/storage"
)

// Exit codes distinguish the three failure categories for scripts.
const (
	exitOK         = 0
	exitFailure    = 1
	exitInvalid    = 2
	exitInfeasible = 3
	exitSolver     = 4
)

type options struct {
	boxes       string
	uld         string
	container   string
	objective   string
	formulation string
	timeLimit   time.Duration
	nodeLimit   int
	maxBoxes    int
	logLevel    string

	asJSON bool
	out    string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx, os.Args[1:], os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "packer: %v\n", err)
	}
	stop()
	os.Exit(exitCode(err))
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	var opts options

	app := kingpin.New("packer", "Builds and solves 3D ULD packing models from box manifests")
	app.UsageWriter(stdout)
	app.Flag("boxes", "Box manifest (.yaml, .yml, .json or .xlsx)").Short('b').Required().ExistingFileVar(&opts.boxes)
	app.Flag("uld", "Container preset name, e.g. AKE or PMC").StringVar(&opts.uld)
	app.Flag("container", "Container dimensions as LxWxH").StringVar(&opts.container)
	app.Flag("objective", "What to maximise: count, volume or weight").StringVar(&opts.objective)
	app.Flag("formulation", "Non-overlap formulation: pairwise or orientation-pairs").Default("pairwise").StringVar(&opts.formulation)
	app.Flag("time-limit", "Wall-clock limit for the solve").Default("30s").DurationVar(&opts.timeLimit)
	app.Flag("node-limit", "Branch-and-bound node limit (0 for none)").Default("0").IntVar(&opts.nodeLimit)
	app.Flag("max-boxes", "Largest manifest accepted (0 for no limit)").Default("40").IntVar(&opts.maxBoxes)
	app.Flag("log-level", "Minimum log level written to stderr").Default("warn").StringVar(&opts.logLevel)

	solveCmd := app.Command("solve", "Solve the packing and print one row per box")
	solveCmd.Flag("json", "Print the result as JSON").BoolVar(&opts.asJSON)
	solveCmd.Flag("out", "Also write the placements to an .xlsx workbook").StringVar(&opts.out)

	exportCmd := app.Command("export", "Write the packing model in CPLEX LP format")
	exportCmd.Flag("out", "Output file, - for stdout").Default("-").StringVar(&opts.out)

	chartCmd := app.Command("chart", "Solve the packing and render an interactive 3D chart")
	chartCmd.Flag("out", "Output HTML file").Required().StringVar(&opts.out)

	command, err := app.Parse(args)
	if err != nil {
		return fmt.Errorf("%w: %w", planner.ErrInvalidInput, err)
	}

	logger, err := logging.New(logging.WithConsole(), logging.WithLevel(opts.logLevel))
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	req, err := buildRequest(opts)
	if err != nil {
		return err
	}
	p := newPlanner(opts, logger)

	switch command {
	case solveCmd.FullCommand():
		return solve(ctx, p, req, opts, stdout)
	case exportCmd.FullCommand():
		return export(p, req, opts.out, stdout)
	case chartCmd.FullCommand():
		return chart(ctx, p, req, opts.out)
	}
	return fmt.Errorf("unknown command %q", command)
}

func newPlanner(opts options, logger *zap.Logger) planner.Planner {
	bnb := solver.NewBranchAndBound(
		solver.WithTimeLimit(opts.timeLimit),
		solver.WithNodeLimit(opts.nodeLimit),
		solver.WithLogger(logger.Named("solver")),
	)
	return planner.New(bnb,
		planner.WithLogger(logger.Named("planner")),
		planner.WithMaxBoxes(opts.maxBoxes),
	)
}

// buildRequest merges the manifest with command line flags. Flags win over
// the container and objective named inside the manifest.
func buildRequest(opts options) (planner.Request, error) {
	m, err := manifest.Load(opts.boxes)
	if err != nil {
		return planner.Request{}, fmt.Errorf("%w: %w", planner.ErrInvalidInput, err)
	}

	uld, objectiveName := m.ULD, m.Objective
	if opts.uld != "" {
		uld = opts.uld
	}
	if opts.objective != "" {
		objectiveName = opts.objective
	}

	var container geometry.Container
	switch {
	case opts.container != "":
		if container, err = config.ParseDimensions(opts.container); err != nil {
			return planner.Request{}, fmt.Errorf("%w: %w", planner.ErrInvalidInput, err)
		}
	case opts.uld == "" && m.Container != nil:
		container = *m.Container
	case uld != "":
		if container, err = storage.NewMemoryStorage().GetContainer(uld); err != nil {
			return planner.Request{}, fmt.Errorf("%w: %w", planner.ErrInvalidInput, err)
		}
	default:
		return planner.Request{}, fmt.Errorf("%w: no container given; use --uld, --container or set one in the manifest", planner.ErrInvalidInput)
	}

	objective, err := packing.ParseObjective(objectiveName)
	if err != nil {
		return planner.Request{}, fmt.Errorf("%w: %w", planner.ErrInvalidInput, err)
	}
	kind, err := packing.ParseKind(opts.formulation)
	if err != nil {
		return planner.Request{}, fmt.Errorf("%w: %w", planner.ErrInvalidInput, err)
	}

	return planner.Request{
		Container:   container,
		Boxes:       m.Boxes,
		Objective:   objective,
		Formulation: kind,
	}, nil
}

type solveOutput struct {
	Status       string               `json:"status"`
	Objective    string               `json:"objective"`
	Value        float64              `json:"value"`
	PackedCount  int                  `json:"packedCount"`
	PackedVolume float64              `json:"packedVolume"`
	PackedWeight float64              `json:"packedWeight"`
	Container    geometry.Container   `json:"container"`
	Placements   []geometry.Placement `json:"placements"`
	Stats        planner.Stats        `json:"stats"`
}

func solve(ctx context.Context, p planner.Planner, req planner.Request, opts options, stdout io.Writer) error {
	res, err := p.Plan(ctx, req)
	if err != nil {
		return err
	}

	if opts.out != "" {
		if err := writeFile(opts.out, func(w io.Writer) error {
			return report.WriteXLSX(w, req.Boxes, res.Placements)
		}); err != nil {
			return err
		}
	}

	if !opts.asJSON {
		return report.WriteText(stdout, req.Container, req.Boxes, res)
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(solveOutput{
		Status:       res.Status.String(),
		Objective:    req.Objective.String(),
		Value:        res.Objective,
		PackedCount:  res.PackedCount,
		PackedVolume: res.PackedVolume,
		PackedWeight: res.PackedWeight,
		Container:    req.Container,
		Placements:   res.Placements,
		Stats:        res.Stats,
	})
}

func export(p planner.Planner, req planner.Request, out string, stdout io.Writer) error {
	f, err := p.Formulate(req)
	if err != nil {
		return err
	}
	if out == "-" {
		return f.Problem.WriteLP(stdout)
	}
	return writeFile(out, f.Problem.WriteLP)
}

func chart(ctx context.Context, p planner.Planner, req planner.Request, out string) error {
	res, err := p.Plan(ctx, req)
	if err != nil {
		return err
	}
	title := fmt.Sprintf("%d of %d boxes packed (%s)", res.PackedCount, len(req.Boxes), req.Objective)
	return writeFile(out, func(w io.Writer) error {
		return report.WriteChart(w, title, req.Container, req.Boxes, res.Placements)
	})
}

func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
	}()
	return write(f)
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, planner.ErrInvalidInput):
		return exitInvalid
	case errors.Is(err, planner.ErrInfeasible):
		return exitInfeasible
	case errors.Is(err, planner.ErrSolver):
		return exitSolver
	default:
		return exitFailure
	}
}
