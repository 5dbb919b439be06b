package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/eugenenazirov/uld-packer/internal/geometry"
	"github.com/eugenenazirov/uld-packer/internal/packing"
	"github.com/eugenenazirov/uld-packer/internal/planner"
	"github.com/eugenenazirov/uld-packer/internal/report"
	"github.com/eugenenazirov/uld-packer/internal/solver"
	"github.com/eugenenazirov/uld-packer/internal/storage"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

const maxBodyBytes = 1 << 20

// Handler wires planner and storage dependencies into HTTP handlers.
type Handler struct {
	planner  planner.Planner
	storage  storage.Storage
	validate *validator.Validate

	formulation packing.Kind
	clock       func() time.Time

	mu                  sync.RWMutex
	containersUpdatedAt time.Time
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// WithDefaultFormulation sets the non-overlap formulation used when a
// request does not name one.
func WithDefaultFormulation(k packing.Kind) HandlerOption {
	return func(h *Handler) {
		h.formulation = k
	}
}

// NewHandler constructs a Handler with the provided dependencies.
func NewHandler(p planner.Planner, store storage.Storage, opts ...HandlerOption) *Handler {
	h := &Handler{
		planner:     p,
		storage:     store,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		formulation: packing.FormulationPairwise,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	h.containersUpdatedAt = h.clock()
	return h
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = r
	resp := healthResponse{
		Status:    "ok",
		Timestamp: h.clock(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleListContainers(w http.ResponseWriter, r *http.Request) {
	_ = r
	presets, err := h.storage.ListContainers()
	if err != nil {
		writeInternalError(w, err)
		return
	}

	resp := containersResponse{
		Containers: presets,
		UpdatedAt:  h.currentContainersUpdatedAt(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handlePutContainer(w http.ResponseWriter, r *http.Request) {
	var req containerDTO
	if !h.decode(w, r, &req) {
		return
	}

	name := r.PathValue("name")
	if err := h.storage.PutContainer(name, req.toContainer()); err != nil {
		if errors.Is(err, storage.ErrInvalidPreset) {
			writeError(w, http.StatusBadRequest, "Invalid container", err.Error())
			return
		}
		writeInternalError(w, err)
		return
	}

	h.markContainersUpdated()

	presets, err := h.storage.ListContainers()
	if err != nil {
		writeInternalError(w, err)
		return
	}

	resp := containersResponse{
		Containers: presets,
		UpdatedAt:  h.currentContainersUpdatedAt(),
		Message:    fmt.Sprintf("Container %s saved", storage.NormalizeName(name)),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handlePack(w http.ResponseWriter, r *http.Request) {
	req, ok := h.packingRequest(w, r)
	if !ok {
		return
	}

	res, err := h.planner.Plan(r.Context(), req)
	if err != nil {
		writePlanError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newPackResponse(req, res))
}

func (h *Handler) handleModel(w http.ResponseWriter, r *http.Request) {
	req, ok := h.packingRequest(w, r)
	if !ok {
		return
	}

	f, err := h.planner.Formulate(req)
	if err != nil {
		writePlanError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := f.Problem.WriteLP(&buf); err != nil {
		writeInternalError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="packing.lp"`)
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (h *Handler) handleChart(w http.ResponseWriter, r *http.Request) {
	req, ok := h.packingRequest(w, r)
	if !ok {
		return
	}

	res, err := h.planner.Plan(r.Context(), req)
	if err != nil {
		writePlanError(w, err)
		return
	}

	title := fmt.Sprintf("%d of %d boxes packed (%s)", res.PackedCount, len(req.Boxes), req.Objective)
	var buf bytes.Buffer
	if err := report.WriteChart(&buf, title, req.Container, req.Boxes, res.Placements); err != nil {
		writeInternalError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// packingRequest decodes and validates a pack request and resolves its
// container. It writes the error response itself and reports false on
// failure.
func (h *Handler) packingRequest(w http.ResponseWriter, r *http.Request) (planner.Request, bool) {
	var body packRequest
	if !h.decode(w, r, &body) {
		return planner.Request{}, false
	}

	objective, err := packing.ParseObjective(body.Objective)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", err.Error())
		return planner.Request{}, false
	}
	kind := h.formulation
	if body.Formulation != "" {
		if kind, err = packing.ParseKind(body.Formulation); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request", err.Error())
			return planner.Request{}, false
		}
	}

	var container geometry.Container
	if body.Container != nil {
		container = body.Container.toContainer()
	} else {
		container, err = h.storage.GetContainer(body.ULD)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				writeError(w, http.StatusNotFound, "Unknown container", err.Error(), "GET /api/containers lists the available presets")
				return planner.Request{}, false
			}
			writeInternalError(w, err)
			return planner.Request{}, false
		}
	}

	boxes := make([]geometry.Box, len(body.Boxes))
	for i, b := range body.Boxes {
		boxes[i] = b.toBox()
	}

	return planner.Request{
		Container:   container,
		Boxes:       boxes,
		Objective:   objective,
		Formulation: kind,
	}, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", validationMessage(err))
		return false
	}
	return true
}

func writePlanError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, planner.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "Invalid request", err.Error())
	case errors.Is(err, planner.ErrInfeasible):
		writeError(w, http.StatusUnprocessableEntity, "No feasible packing", err.Error(),
			"Mark fewer boxes as must-pack or choose a larger container")
	case errors.Is(err, solver.ErrLimitReached):
		writeError(w, http.StatusInternalServerError, "Solver error", err.Error(),
			"Reduce the number of boxes or raise the solver time limit")
	case errors.Is(err, context.Canceled):
		writeError(w, http.StatusInternalServerError, "Solver error", "request was canceled")
	default:
		writeError(w, http.StatusInternalServerError, "Solver error", err.Error())
	}
}

func (h *Handler) currentContainersUpdatedAt() time.Time {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.containersUpdatedAt
}

func (h *Handler) markContainersUpdated() {
	h.mu.Lock()
	h.containersUpdatedAt = h.clock()
	h.mu.Unlock()
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type containersResponse struct {
	Containers []storage.Preset `json:"containers"`
	UpdatedAt  time.Time        `json:"updatedAt"`
	Message    string           `json:"message,omitempty"`
}

type errorResponse struct {
	Error      string `json:"error"`
	Details    string `json:"details,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message, details string, suggestion ...string) {
	resp := errorResponse{
		Error:   message,
		Details: details,
	}
	if len(suggestion) > 0 {
		resp.Suggestion = suggestion[0]
	}
	writeJSON(w, status, resp)
}

func writeInternalError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusInternalServerError, "Internal error", err.Error())
}
