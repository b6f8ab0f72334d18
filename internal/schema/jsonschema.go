package schema

import (
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

// FromJSONSchema adapts the $jsonSchema document of a MongoDB collection
// validator. Top-level "required" is the static flag; "properties" gives
// names and order. Names that are required but not listed under properties
// are appended after them in "required" order.
func FromJSONSchema(doc bson.Raw) Description {
	return jsonSchema{raw: doc}
}

type jsonSchema struct {
	raw bson.Raw
}

// Paths implements Description.
func (j jsonSchema) Paths() ([]Path, error) {
	if err := j.raw.Validate(); err != nil {
		return nil, fmt.Errorf("invalid $jsonSchema document: %w", err)
	}

	required, err := j.requiredNames()
	if err != nil {
		return nil, err
	}
	requiredSet := NewExclusions(required...)

	var paths []Path
	listed := make(map[string]struct{})

	// Lookup errors on a validated document only mean "absent".
	if props, err := j.raw.LookupErr("properties"); err == nil {
		doc, ok := props.DocumentOK()
		if !ok {
			return nil, fmt.Errorf("$jsonSchema properties is %s, want document", props.Type)
		}
		elems, err := doc.Elements()
		if err != nil {
			return nil, fmt.Errorf("read $jsonSchema properties: %w", err)
		}
		for _, el := range elems {
			name := el.Key()
			p := Path{Name: name, Required: requiredSet.Has(name)}
			if def, ok := el.Value().DocumentOK(); ok {
				p.Type = jsonSchemaType(def)
			}
			paths = append(paths, p)
			listed[name] = struct{}{}
		}
	}

	for _, name := range required {
		if _, ok := listed[name]; ok {
			continue
		}
		paths = append(paths, Path{Name: name, Required: true})
		listed[name] = struct{}{}
	}
	return paths, nil
}

func (j jsonSchema) requiredNames() ([]string, error) {
	v, err := j.raw.LookupErr("required")
	if err != nil {
		return nil, nil
	}
	arr, ok := v.ArrayOK()
	if !ok {
		return nil, fmt.Errorf("$jsonSchema required is %s, want array", v.Type)
	}
	values, err := arr.Values()
	if err != nil {
		return nil, fmt.Errorf("read $jsonSchema required: %w", err)
	}
	names := make([]string, 0, len(values))
	for i, rv := range values {
		s, ok := rv.StringValueOK()
		if !ok {
			return nil, fmt.Errorf("$jsonSchema required[%d] is %s, want string", i, rv.Type)
		}
		names = append(names, s)
	}
	return names, nil
}

// jsonSchemaType reads bsonType (MongoDB) or type (JSON Schema); arrays of
// alternatives are joined with "|".
func jsonSchemaType(def bson.Raw) string {
	for _, key := range []string{"bsonType", "type"} {
		v, err := def.LookupErr(key)
		if err != nil {
			continue
		}
		if s, ok := v.StringValueOK(); ok {
			return s
		}
		if arr, ok := v.ArrayOK(); ok {
			values, err := arr.Values()
			if err != nil {
				return ""
			}
			parts := make([]string, 0, len(values))
			for _, rv := range values {
				if s, ok := rv.StringValueOK(); ok {
					parts = append(parts, s)
				}
			}
			return strings.Join(parts, "|")
		}
	}
	return ""
}
