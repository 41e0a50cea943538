package catalog

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/nauticalab/propbind/pkg/coerce"
	"github.com/nauticalab/propbind/pkg/config"
	"github.com/nauticalab/propbind/pkg/problems"
	"github.com/nauticalab/propbind/pkg/properties"
	"github.com/nauticalab/propbind/pkg/validation"
)

// ErrUnknownModule is returned for module names the catalog does not hold.
var ErrUnknownModule = errors.New("unknown module")

// Entry is a named module. New must return a module registering fresh
// targets on every call so concurrent checks never share state.
type Entry struct {
	Name        string
	Description string
	New         func() config.Module
}

// Catalog is a set of modules sharing one coercion registry and validator.
// It is safe for concurrent use.
type Catalog struct {
	mu        sync.RWMutex
	entries   map[string]Entry
	registry  *coerce.Registry
	validator *validation.Validator
}

// New returns a catalog holding the propbind-server modules.
func New() *Catalog {
	c := &Catalog{
		entries:   make(map[string]Entry),
		registry:  Registry(),
		validator: validation.New(),
	}
	for _, e := range builtin() {
		if err := c.Add(e); err != nil {
			panic(err)
		}
	}
	return c
}

func builtin() []Entry {
	class := func(pick func(*Server) any, prefix string) func() config.Module {
		return func() config.Module {
			return config.Class(pick(DefaultServer()), prefix)
		}
	}
	return []Entry{
		{
			Name:        "server",
			Description: "Complete propbind-server configuration",
			New:         func() config.Module { return DefaultServer().Module() },
		},
		{Name: "http", Description: "API listener", New: class(func(s *Server) any { return &s.HTTP }, "http")},
		{Name: "log", Description: "Process logging", New: class(func(s *Server) any { return &s.Log }, "log")},
		{Name: "kubernetes", Description: "Cluster access", New: class(func(s *Server) any { return &s.Kubernetes }, "kubernetes")},
		{Name: "auth", Description: "Request authentication", New: class(func(s *Server) any { return &s.Auth }, "auth")},
		{Name: "metrics", Description: "Prometheus endpoint", New: class(func(s *Server) any { return &s.Metrics }, "metrics")},
	}
}

// Add registers e. Names must be unique.
func (c *Catalog) Add(e Entry) error {
	if e.Name == "" || e.New == nil {
		return fmt.Errorf("module entry needs a name and a constructor")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[e.Name]; ok {
		return fmt.Errorf("module %q is already registered", e.Name)
	}
	c.entries[e.Name] = e
	return nil
}

// Names returns the module names, sorted.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Sorted(maps.Keys(c.entries))
}

// Lookup returns the entry called name.
func (c *Catalog) Lookup(name string) (Entry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[name]
	if !ok {
		return Entry{}, fmt.Errorf("%w %q", ErrUnknownModule, name)
	}
	return e, nil
}

// NewFactory returns a factory over bag with module registered.
func (c *Catalog) NewFactory(module string, bag properties.Bag, monitor config.Monitor) (*config.Factory, error) {
	e, err := c.Lookup(module)
	if err != nil {
		return nil, err
	}
	f := config.NewFactory(bag, monitor, config.WithRegistry(c.registry), config.WithValidator(c.validator))
	if err := f.RegisterModules(e.New()); err != nil {
		return nil, fmt.Errorf("failed to register module %q: %w", module, err)
	}
	return f, nil
}

// Describe lists the properties of module.
func (c *Catalog) Describe(module string) ([]config.PropertyInfo, error) {
	f, err := c.NewFactory(module, properties.Bag{}, nil)
	if err != nil {
		return nil, err
	}
	return f.Describe(), nil
}

// Report is the outcome of checking one property bag against a module.
type Report struct {
	ID               string             `json:"id"`
	Module           string             `json:"module"`
	Source           string             `json:"source,omitempty"`
	Revision         string             `json:"revision,omitempty"`
	Valid            bool               `json:"valid"`
	Errors           []problems.Message `json:"errors"`
	Warnings         []problems.Message `json:"warnings"`
	UsedProperties   []string           `json:"usedProperties"`
	UnusedProperties []string           `json:"unusedProperties"`
}

// Problems returns the report's messages.
func (r *Report) Problems() *problems.Problems {
	return &problems.Problems{Errors: r.Errors, Warnings: r.Warnings}
}

// Check validates bag against module. strict turns unused keys into errors.
func (c *Catalog) Check(module string, bag properties.Bag, strict bool, monitor config.Monitor) (*Report, error) {
	f, err := c.NewFactory(module, bag, monitor)
	if err != nil {
		return nil, err
	}

	var result *problems.Problems
	if strict {
		result = f.ValidateStrict()
	} else {
		result = f.Validate()
	}

	return &Report{
		ID:               uuid.NewString(),
		Module:           module,
		Valid:            result.IsValid(),
		Errors:           nonNil(result.Errors),
		Warnings:         nonNil(result.Warnings),
		UsedProperties:   nonNil(f.UsedProperties()),
		UnusedProperties: nonNil(f.UnusedProperties()),
	}, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
