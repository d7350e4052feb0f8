package types

// ClassInfo records the field shape the semantic analyzer derives for
// a class definition: field declaration order (for flat-struct
// emission, spec.md §4.4) plus each field's inferred type.
type ClassInfo struct {
	Name       string
	Fields     []string
	FieldTypes map[string]*Type
}

func NewClassInfo(name string) *ClassInfo {
	return &ClassInfo{Name: name, FieldTypes: map[string]*Type{}}
}

// Declare records field in declaration order the first time it's
// seen, and widens its type on every subsequent assignment — classes
// assign fields from multiple methods, so a field's type is the join
// of every assignment site.
func (c *ClassInfo) Declare(field string, t *Type) {
	if _, ok := c.FieldTypes[field]; !ok {
		c.Fields = append(c.Fields, field)
		c.FieldTypes[field] = t
		return
	}
	c.FieldTypes[field] = Widen(c.FieldTypes[field], t)
}

func (c *ClassInfo) FieldType(field string) *Type {
	if t, ok := c.FieldTypes[field]; ok {
		return t
	}
	return Unknown()
}

// Registry maps class name to its ClassInfo, accumulated by the
// semantic analyzer and consulted by the emitter.
type Registry struct {
	classes map[string]*ClassInfo
}

func NewRegistry() *Registry { return &Registry{classes: map[string]*ClassInfo{}} }

func (r *Registry) Get(name string) (*ClassInfo, bool) {
	ci, ok := r.classes[name]
	return ci, ok
}

func (r *Registry) GetOrCreate(name string) *ClassInfo {
	if ci, ok := r.classes[name]; ok {
		return ci
	}
	ci := NewClassInfo(name)
	r.classes[name] = ci
	return ci
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.classes))
	for n := range r.classes {
		names = append(names, n)
	}
	return names
}
