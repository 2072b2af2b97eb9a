package engine

// Registry holds engines in specialization order: most symbol-specific
// first, generic fallback last. The order is the trial priority the
// orchestrator uses within each variant.
type Registry struct {
	engines []Engine
}

// NewRegistry creates a registry with the given engines in priority order.
func NewRegistry(engines ...Engine) *Registry {
	return &Registry{engines: append([]Engine(nil), engines...)}
}

// Register appends an engine at the end of the priority order.
func (r *Registry) Register(e Engine) {
	if e != nil {
		r.engines = append(r.engines, e)
	}
}

// All returns the engines in priority order.
func (r *Registry) All() []Engine {
	return append([]Engine(nil), r.engines...)
}

// ForFamily returns the engines covering family, preserving priority
// order. FamilyUnknown selects every engine.
func (r *Registry) ForFamily(family Family) []Engine {
	out := make([]Engine, 0, len(r.engines))
	for _, e := range r.engines {
		if Covers(e, family) {
			out = append(out, e)
		}
	}
	return out
}

// Names returns engine names in priority order, for diagnostics and
// configuration validation.
func (r *Registry) Names() []string {
	names := make([]string, len(r.engines))
	for i, e := range r.engines {
		names[i] = e.Name()
	}
	return names
}
