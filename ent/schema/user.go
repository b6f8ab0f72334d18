package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// User holds the schema definition for the User entity.
// Field names follow the document layout used by the user collection.
// It is the built-in schema the seeder falls back to when the store
// exposes none.
type User struct {
	ent.Schema
}

// Mixin of the User.
func (User) Mixin() []ent.Mixin {
	return []ent.Mixin{
		TimeMixin{},
	}
}

// Fields of the User.
func (User) Fields() []ent.Field {
	return []ent.Field{
		field.String("email").
			NotEmpty().
			MaxLen(255),
		field.String("firstname").
			NotEmpty(),
		field.String("lastname").
			NotEmpty(),
		field.String("mobile").
			NotEmpty().
			MaxLen(32),
		field.String("password").
			NotEmpty().
			Sensitive(),
		field.Enum("role").
			Values("user", "admin").
			Default("user"),
		field.String("passwordResetToken").
			Optional().
			Sensitive(),
		field.Time("passwordResetExpires").
			Optional().
			Nillable(),
	}
}

// Indexes of the User.
func (User) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("email").Unique(),
	}
}
