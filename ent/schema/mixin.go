// Package schema contains Ent schema definitions for the admin seeder.
//
// Only the schema descriptors are consumed (no generated client); they
// describe the user entity when the live store carries no schema of its own.
//
// Import Path: kv-shepherd.io/adminseed/ent/schema
package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/mixin"
)

// TimeMixin adds createdAt and updatedAt, maintained by the store.
type TimeMixin struct {
	mixin.Schema
}

// Fields of the TimeMixin.
func (TimeMixin) Fields() []ent.Field {
	return []ent.Field{
		field.Time("createdAt").
			Default(time.Now).
			Immutable(),
		field.Time("updatedAt").
			Default(time.Now).
			UpdateDefault(time.Now),
	}
}
