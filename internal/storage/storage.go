package storage

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/eugenenazirov/uld-packer/internal/geometry"
)

var (
	// ErrInvalidPreset indicates a preset name or container that violates validation rules.
	ErrInvalidPreset = errors.New("container preset must have a name of 1-16 letters, digits or dashes and positive dimensions")
	// ErrNotFound is returned when no preset exists under the requested name.
	ErrNotFound = errors.New("container preset not found")
)

var presetName = regexp.MustCompile(`^[A-Z0-9-]{1,16}$`)

// defaultContainers are nominal internal envelopes of common ULDs in centimetres.
var defaultContainers = map[string]geometry.Container{
	"AKE": {Length: 156, Width: 153, Height: 163},
	"AKH": {Length: 156, Width: 153, Height: 114},
	"ALF": {Length: 317, Width: 153, Height: 163},
	"PAG": {Length: 317.5, Width: 223.5, Height: 162.5},
	"PMC": {Length: 317.5, Width: 243.8, Height: 162.5},
}

// Preset is a named container.
type Preset struct {
	Name      string             `json:"name" yaml:"name"`
	Container geometry.Container `json:"container" yaml:"container"`
}

// Storage provides access to named container presets.
type Storage interface {
	ListContainers() ([]Preset, error)
	GetContainer(name string) (geometry.Container, error)
	PutContainer(name string, c geometry.Container) error
}

// MemoryStorage keeps presets in-memory and guards access with a RWMutex.
type MemoryStorage struct {
	mu         sync.RWMutex
	containers map[string]geometry.Container
}

// NewMemoryStorage initialises storage with a copy of the default presets.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		containers: DefaultContainers(),
	}
}

// DefaultContainers returns a copy of the default presets.
func DefaultContainers() map[string]geometry.Container {
	out := make(map[string]geometry.Container, len(defaultContainers))
	for name, c := range defaultContainers {
		out[name] = c
	}
	return out
}

// ListContainers returns all presets sorted by name.
func (s *MemoryStorage) ListContainers() ([]Preset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Preset, 0, len(s.containers))
	for name, c := range s.containers {
		out = append(out, Preset{Name: name, Container: c})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// GetContainer looks a preset up by case-insensitive name.
func (s *MemoryStorage) GetContainer(name string) (geometry.Container, error) {
	key := NormalizeName(name)

	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.containers[key]
	if !ok {
		return geometry.Container{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return c, nil
}

// PutContainer validates and stores a preset, replacing any existing one.
func (s *MemoryStorage) PutContainer(name string, c geometry.Container) error {
	key := NormalizeName(name)
	if !presetName.MatchString(key) {
		return fmt.Errorf("%w: name %q", ErrInvalidPreset, name)
	}
	if err := geometry.ValidateContainer(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPreset, err)
	}

	s.mu.Lock()
	s.containers[key] = c
	s.mu.Unlock()

	return nil
}

// NormalizeName upper-cases and trims a preset name.
func NormalizeName(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}
