package store

import (
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Event tables are migrated by ent's Atlas engine. Columns mirror the
// types declared in ent/schema; tables_test.go keeps the two in step.
var (
	sessionsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "started_at", Type: field.TypeInt64},
		{Name: "ended_at", Type: field.TypeInt64, Nullable: true},
		{Name: "preset", Type: field.TypeString},
		{Name: "status", Type: field.TypeString},
		{Name: "reason", Type: field.TypeString, Nullable: true},
		{Name: "outcome", Type: field.TypeString, Nullable: true},
		{Name: "top_disease_id", Type: field.TypeInt64, Nullable: true},
		{Name: "top_disease", Type: field.TypeString, Nullable: true},
		{Name: "top_belief", Type: field.TypeFloat64, Nullable: true},
		{Name: "confidence", Type: field.TypeFloat64, Nullable: true},
		{Name: "steps", Type: field.TypeInt, Default: 0},
	}
	sessionsTable = &schema.Table{
		Name:       "sessions",
		Columns:    sessionsColumns,
		PrimaryKey: []*schema.Column{sessionsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "session_started_at", Columns: []*schema.Column{sessionsColumns[2]}},
		},
	}

	sessionStepsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "created_at", Type: field.TypeInt64},
		{Name: "step", Type: field.TypeInt},
		{Name: "kind", Type: field.TypeString},
		{Name: "symptoms", Type: field.TypeString},
		{Name: "top_disease_id", Type: field.TypeInt64, Nullable: true},
		{Name: "top_belief", Type: field.TypeFloat64, Nullable: true},
		{Name: "confidence", Type: field.TypeFloat64, Nullable: true},
		{Name: "session_id", Type: field.TypeString},
	}
	sessionStepsTable = &schema.Table{
		Name:       "session_steps",
		Columns:    sessionStepsColumns,
		PrimaryKey: []*schema.Column{sessionStepsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "session_steps_sessions_steps",
				Columns:    []*schema.Column{sessionStepsColumns[9]},
				RefColumns: []*schema.Column{sessionsColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{
				Name:    "sessionstep_session_id_step",
				Columns: []*schema.Column{sessionStepsColumns[9], sessionStepsColumns[3]},
			},
		},
	}

	explanationsColumns = []*schema.Column{
		{Name: "symptom", Type: field.TypeString},
		{Name: "text", Type: field.TypeString},
		{Name: "source", Type: field.TypeString},
		{Name: "model", Type: field.TypeString, Nullable: true},
		{Name: "created_at", Type: field.TypeInt64},
	}
	explanationsTable = &schema.Table{
		Name:       "explanations",
		Columns:    explanationsColumns,
		PrimaryKey: []*schema.Column{explanationsColumns[0]},
	}

	llmRequestEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "created_at", Type: field.TypeInt64},
		{Name: "provider", Type: field.TypeString, Default: ""},
		{Name: "model", Type: field.TypeString, Default: ""},
		{Name: "purpose", Type: field.TypeString, Default: ""},
		{Name: "input_tokens", Type: field.TypeInt, Default: 0},
		{Name: "output_tokens", Type: field.TypeInt, Default: 0},
		{Name: "latency_ms", Type: field.TypeInt64, Default: 0},
		{Name: "success", Type: field.TypeBool},
		{Name: "error_message", Type: field.TypeString, Default: ""},
		{Name: "request_body", Type: field.TypeString, Nullable: true},
		{Name: "response_body", Type: field.TypeString, Nullable: true},
	}
	llmRequestEventsTable = &schema.Table{
		Name:       "llm_request_events",
		Columns:    llmRequestEventsColumns,
		PrimaryKey: []*schema.Column{llmRequestEventsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "llmrequestevent_provider", Columns: []*schema.Column{llmRequestEventsColumns[3]}},
			{Name: "llmrequestevent_purpose", Columns: []*schema.Column{llmRequestEventsColumns[5]}},
			{Name: "llmrequestevent_success", Columns: []*schema.Column{llmRequestEventsColumns[9]}},
		},
	}

	// eventTables lists every ent-managed table in creation order.
	eventTables = []*schema.Table{
		sessionsTable,
		sessionStepsTable,
		explanationsTable,
		llmRequestEventsTable,
	}
)

func init() {
	sessionStepsTable.ForeignKeys[0].RefTable = sessionsTable
	sessionsTable.Annotation = &entsql.Annotation{Table: "sessions"}
	sessionStepsTable.Annotation = &entsql.Annotation{Table: "session_steps"}
	explanationsTable.Annotation = &entsql.Annotation{Table: "explanations"}
	llmRequestEventsTable.Annotation = &entsql.Annotation{Table: "llm_request_events"}
}
