package strategy

import (
	"fmt"
	"sort"
)

// Family names one of the four object families that carry kinds.
type Family string

const (
	FamilyType     Family = "type"
	FamilyLink     Family = "link"
	FamilyInstance Family = "instance"
	FamilyRecipe   Family = "recipe"
)

type kind[O any] struct {
	name  string
	ctor  func() O
	bases []string
}

type binding[M any] struct {
	kind     string
	mapper   M
	seq      int
	strategy string
}

// Binding is the outcome of a resolution. Kind is the registered kind whose
// mapper was chosen, or empty when the family default applied.
type Binding[M any] struct {
	Kind     string
	Strategy string
	Mapper   M
}

// Key identifies the binding. Objects resolving to the same key share a
// mapper.
func (b Binding[M]) Key() string {
	if b.Kind == "" {
		return "<default>"
	}
	return b.Kind
}

// Kinds is the per-family kind catalog plus mapper registry. Declarations and
// registrations happen before Build; afterwards the value is read-only and
// safe for concurrent use.
type Kinds[O any, M any] struct {
	family Family
	root   string

	kinds  map[string]*kind[O]
	order  []string
	bound  map[string]*binding[M]
	named  map[string]M
	seq    int
	def    *M
	frozen bool

	resolved map[string]Binding[M]
	errs     []error
}

func newKinds[O any, M any](family Family, root string, def M) *Kinds[O, M] {
	k := &Kinds[O, M]{
		family: family,
		root:   root,
		kinds:  map[string]*kind[O]{},
		bound:  map[string]*binding[M]{},
		named:  map[string]M{},
		def:    &def,
	}
	k.kinds[root] = &kind[O]{name: root}
	k.order = append(k.order, root)
	return k
}

func (k *Kinds[O, M]) Family() Family { return k.family }

// Declare adds a kind. The first base is the parent kind, further bases are
// capabilities. Bases must already be declared; no bases means the family
// root. A nil ctor declares an abstract kind.
func (k *Kinds[O, M]) Declare(name string, ctor func() O, bases ...string) *Kinds[O, M] {
	if err := k.declare(name, ctor, bases); err != nil {
		k.errs = append(k.errs, err)
	}
	return k
}

func (k *Kinds[O, M]) declare(name string, ctor func() O, bases []string) error {
	if k.frozen {
		return ErrFrozen
	}
	if name == "" {
		return fmt.Errorf("%s kind: empty name", k.family)
	}
	if _, exists := k.kinds[name]; exists {
		return fmt.Errorf("%s kind %q: %w", k.family, name, ErrDuplicate)
	}
	if len(bases) == 0 {
		bases = []string{k.root}
	}
	for _, b := range bases {
		if _, ok := k.kinds[b]; !ok {
			return fmt.Errorf("%s kind %q base %q: %w", k.family, name, b, ErrUnknownKind)
		}
	}
	k.kinds[name] = &kind[O]{name: name, ctor: ctor, bases: append([]string(nil), bases...)}
	k.order = append(k.order, name)
	return nil
}

// Register binds mapper to a declared kind.
func (k *Kinds[O, M]) Register(name string, mapper M) *Kinds[O, M] {
	if err := k.register(name, mapper, ""); err != nil {
		k.errs = append(k.errs, err)
	}
	return k
}

func (k *Kinds[O, M]) register(name string, mapper M, strategy string) error {
	if k.frozen {
		return ErrFrozen
	}
	if _, ok := k.kinds[name]; !ok {
		return fmt.Errorf("%s mapper for %q: %w", k.family, name, ErrUnknownKind)
	}
	if _, exists := k.bound[name]; exists {
		return fmt.Errorf("%s mapper for %q: %w", k.family, name, ErrDuplicate)
	}
	k.seq++
	k.bound[name] = &binding[M]{kind: name, mapper: mapper, seq: k.seq, strategy: strategy}
	return nil
}

// Publish makes mapper available under a strategy name for configured
// bindings.
func (k *Kinds[O, M]) Publish(strategy string, mapper M) *Kinds[O, M] {
	switch {
	case k.frozen:
		k.errs = append(k.errs, ErrFrozen)
	case strategy == "":
		k.errs = append(k.errs, fmt.Errorf("%s strategy: empty name", k.family))
	default:
		if _, exists := k.named[strategy]; exists {
			k.errs = append(k.errs, fmt.Errorf("%s strategy %q: %w", k.family, strategy, ErrDuplicate))
			return k
		}
		k.named[strategy] = mapper
	}
	return k
}

// Bind binds kind to a published strategy. A kind that already has a mapper
// gets it replaced and keeps its registration order.
func (k *Kinds[O, M]) Bind(name, strategy string) error {
	if k.frozen {
		return ErrFrozen
	}
	mapper, ok := k.named[strategy]
	if !ok {
		return &StrategyNotFoundError{Family: k.family, Kind: name, Reason: fmt.Sprintf("unknown strategy %q", strategy)}
	}
	if existing, exists := k.bound[name]; exists {
		existing.mapper = mapper
		existing.strategy = strategy
		return nil
	}
	return k.register(name, mapper, strategy)
}

// Unregister removes the mapper bound to name.
func (k *Kinds[O, M]) Unregister(name string) *Kinds[O, M] {
	if k.frozen {
		k.errs = append(k.errs, ErrFrozen)
		return k
	}
	delete(k.bound, name)
	return k
}

// SetDefault replaces the family default mapper.
func (k *Kinds[O, M]) SetDefault(mapper M) *Kinds[O, M] {
	if k.frozen {
		k.errs = append(k.errs, ErrFrozen)
		return k
	}
	k.def = &mapper
	return k
}

// ClearDefault removes the family default so unresolvable kinds fail.
func (k *Kinds[O, M]) ClearDefault() *Kinds[O, M] {
	if k.frozen {
		k.errs = append(k.errs, ErrFrozen)
		return k
	}
	k.def = nil
	return k
}

func (k *Kinds[O, M]) freeze() error {
	if k.frozen {
		return ErrFrozen
	}
	k.frozen = true
	k.resolved = make(map[string]Binding[M], len(k.kinds))
	for _, name := range k.order {
		if b, ok := k.lookup(name); ok {
			k.resolved[name] = b
		}
	}
	return nil
}

// lookup walks the ancestry breadth first. At the first distance holding any
// registered kind, the earliest registration wins.
func (k *Kinds[O, M]) lookup(name string) (Binding[M], bool) {
	seen := map[string]bool{name: true}
	level := []string{name}
	for len(level) > 0 {
		var best *binding[M]
		var next []string
		for _, n := range level {
			if b, ok := k.bound[n]; ok && (best == nil || b.seq < best.seq) {
				best = b
			}
			if kd, ok := k.kinds[n]; ok {
				for _, base := range kd.bases {
					if !seen[base] {
						seen[base] = true
						next = append(next, base)
					}
				}
			}
		}
		if best != nil {
			return Binding[M]{Kind: best.kind, Strategy: best.strategy, Mapper: best.mapper}, true
		}
		level = next
	}
	if k.def != nil {
		return Binding[M]{Mapper: *k.def}, true
	}
	return Binding[M]{}, false
}

// ResolveBinding returns the mapper responsible for name together with the
// kind it was registered for.
func (k *Kinds[O, M]) ResolveBinding(name string) (Binding[M], error) {
	var (
		b  Binding[M]
		ok bool
	)
	if k.frozen {
		b, ok = k.resolved[name]
		if !ok && k.def != nil {
			b, ok = Binding[M]{Mapper: *k.def}, true
		}
	} else {
		b, ok = k.lookup(name)
	}
	if !ok {
		return Binding[M]{}, &StrategyNotFoundError{Family: k.family, Kind: name, Reason: "no mapper and no default"}
	}
	return b, nil
}

func (k *Kinds[O, M]) Resolve(name string) (M, error) {
	b, err := k.ResolveBinding(name)
	return b.Mapper, err
}

// New constructs an empty object of the named concrete kind.
func (k *Kinds[O, M]) New(name string) (O, error) {
	var zero O
	kd, ok := k.kinds[name]
	if !ok {
		return zero, &StrategyNotFoundError{Family: k.family, Kind: name, Reason: "no constructor for discriminator"}
	}
	if kd.ctor == nil {
		return zero, fmt.Errorf("%s kind %q: %w", k.family, name, ErrAbstractKind)
	}
	return kd.ctor(), nil
}

// IsA reports whether name is base or descends from it.
func (k *Kinds[O, M]) IsA(name, base string) bool {
	seen := map[string]bool{}
	stack := []string{name}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n == base {
			return true
		}
		if seen[n] {
			continue
		}
		seen[n] = true
		if kd, ok := k.kinds[n]; ok {
			stack = append(stack, kd.bases...)
		}
	}
	return false
}

// Declared lists the concrete kinds in name order.
func (k *Kinds[O, M]) Declared() []string {
	out := make([]string, 0, len(k.kinds))
	for name, kd := range k.kinds {
		if kd.ctor != nil {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}
