package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// SessionStep records the symptom set and leading belief after one
// interaction of a session.
type SessionStep struct {
	ent.Schema
}

func (SessionStep) Annotations() []schema.Annotation {
	return []schema.Annotation{
		entsql.Annotation{Table: "session_steps"},
	}
}

func (SessionStep) Mixin() []ent.Mixin {
	return []ent.Mixin{EventMixin{}}
}

func (SessionStep) Fields() []ent.Field {
	return []ent.Field{
		field.String("session_id").
			NotEmpty(),
		field.Int("step").
			Comment("1-based step number within the session"),
		field.String("kind").
			Comment("initial, confirm or deny"),
		field.String("symptoms").
			Comment("JSON array of symptoms touched by the step"),
		field.Int64("top_disease_id").
			Optional(),
		field.Float("top_belief").
			Optional(),
		field.Float("confidence").
			Optional(),
	}
}

func (SessionStep) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("session", Session.Type).
			Ref("steps").
			Field("session_id").
			Unique().
			Required(),
	}
}

func (SessionStep) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("session_id", "step"),
	}
}
