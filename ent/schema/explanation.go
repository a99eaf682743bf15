package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/field"
)

// Explanation caches the lay explanation of a symptom.
type Explanation struct {
	ent.Schema
}

func (Explanation) Annotations() []schema.Annotation {
	return []schema.Annotation{
		entsql.Annotation{Table: "explanations"},
	}
}

func (Explanation) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			StorageKey("symptom").
			NotEmpty().
			Comment("Canonical symptom name"),
		field.String("text"),
		field.String("source").
			Comment("llm or fallback"),
		field.String("model").
			Optional(),
		field.Int64("created_at").
			Comment("Unix milliseconds"),
	}
}
