package schema

import (
	"fmt"

	"entgo.io/ent"
)

// FromEnt adapts an Ent schema definition. Mixin fields come first, then the
// schema's own fields, matching the column order Ent generates.
//
// A field is required when it is neither Optional nor has a Default; Ent
// validators are opaque functions and carry no kind, so only the static flag
// is reported.
func FromEnt(s ent.Interface) Description {
	return entSchema{s: s}
}

type entSchema struct {
	s ent.Interface
}

// Paths implements Description.
func (e entSchema) Paths() ([]Path, error) {
	var fields []ent.Field
	for _, m := range e.s.Mixin() {
		fields = append(fields, m.Fields()...)
	}
	fields = append(fields, e.s.Fields()...)

	paths := make([]Path, 0, len(fields))
	for _, f := range fields {
		d := f.Descriptor()
		if d.Err != nil {
			return nil, fmt.Errorf("ent field %q: %w", d.Name, d.Err)
		}
		p := Path{
			Name:     d.Name,
			Required: !d.Optional && d.Default == nil,
		}
		if d.Info != nil {
			p.Type = d.Info.Type.String()
		}
		paths = append(paths, p)
	}
	return paths, nil
}
