package domain

// SurveyType is a named questionnaire with its canonical, ordered questions.
type SurveyType struct {
	Name      string
	Questions []string
}

// Registry maps survey type names to their canonical question lists.
// It is built once at startup and never mutated afterwards.
type Registry struct {
	version int
	order   []string
	types   map[string][]string
}

// NewRegistry builds a registry from the given survey types. Later entries
// with a duplicate name replace earlier ones.
func NewRegistry(version int, types []SurveyType) *Registry {
	reg := &Registry{
		version: version,
		types:   make(map[string][]string, len(types)),
	}
	for _, t := range types {
		if _, exists := reg.types[t.Name]; !exists {
			reg.order = append(reg.order, t.Name)
		}
		reg.types[t.Name] = append([]string(nil), t.Questions...)
	}
	return reg
}

// Version returns the version of the loaded question table.
func (r *Registry) Version() int {
	return r.version
}

// Questions returns a copy of the canonical questions for name, or nil when
// the survey type is unknown.
func (r *Registry) Questions(name string) []string {
	questions, ok := r.types[name]
	if !ok {
		return nil
	}
	return append([]string(nil), questions...)
}

// Names lists the known survey types in table order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}
