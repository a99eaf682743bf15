package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Session is one diagnosis run, from the first symptom to its verdict.
type Session struct {
	ent.Schema
}

func (Session) Annotations() []schema.Annotation {
	return []schema.Annotation{
		entsql.Annotation{Table: "sessions"},
	}
}

func (Session) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			NotEmpty().
			Immutable().
			Comment("UUID of the session"),
		field.Int64("sequence").
			Unique().
			Immutable().
			Comment("Global sequence number at start"),
		field.Int64("started_at").
			Immutable().
			Comment("Unix milliseconds"),
		field.Int64("ended_at").
			Optional().
			Comment("Unix milliseconds, unset while running"),
		field.String("preset").
			Comment("Threshold preset: fast, balanced or thorough"),
		field.String("status").
			Comment("running or finished"),
		field.String("reason").
			Optional().
			Comment("Stop reason"),
		field.String("outcome").
			Optional().
			Comment("diagnosis, low_confidence or aborted"),
		field.Int64("top_disease_id").
			Optional(),
		field.String("top_disease").
			Optional(),
		field.Float("top_belief").
			Optional(),
		field.Float("confidence").
			Optional(),
		field.Int("steps").
			Default(0).
			Comment("Number of recorded steps"),
	}
}

func (Session) Edges() []ent.Edge {
	return []ent.Edge{
		edge.To("steps", SessionStep.Type).
			Annotations(entsql.OnDelete(entsql.Cascade)),
	}
}

func (Session) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("started_at"),
	}
}
