// Package importers defines producers of complete product type graphs and a
// registry to look them up by name.
package importers

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/yungbote/productgraph/internal/domain/products"
)

var ErrUnknownImporter = errors.New("unknown importer")

// Parameters are the string-keyed arguments of one import run.
type Parameters map[string]string

func (p Parameters) Clone() Parameters {
	out := make(Parameters, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Importer produces fully linked product type graphs. Returned graphs are
// unsaved; the caller persists them.
type Importer interface {
	Name() string
	// Parameters returns the defaults of a fresh import.
	Parameters() Parameters
	// Update completes partial input with defaults and derived values.
	Update(current Parameters) (Parameters, error)
	Import(ctx context.Context, params Parameters) ([]products.ProductType, error)
}

type Registry struct {
	byName map[string]Importer
}

func NewRegistry(importers ...Importer) (*Registry, error) {
	r := &Registry{byName: map[string]Importer{}}
	for _, imp := range importers {
		if imp == nil {
			continue
		}
		if _, exists := r.byName[imp.Name()]; exists {
			return nil, fmt.Errorf("importer %q registered twice", imp.Name())
		}
		r.byName[imp.Name()] = imp
	}
	return r, nil
}

func (r *Registry) Get(name string) (Importer, error) {
	if r != nil {
		if imp, ok := r.byName[name]; ok {
			return imp, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownImporter, name)
}

// Parameters maps every importer name to its default parameters.
func (r *Registry) Parameters() map[string]Parameters {
	out := map[string]Parameters{}
	if r == nil {
		return out
	}
	for name, imp := range r.byName {
		out[name] = imp.Parameters()
	}
	return out
}

func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	out := make([]string, 0, len(r.byName))
	for name := range r.byName {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
