// pkg/registry/schema.go
package registry

// SchemaRegistry lists the JSON schemas model output is checked against.
type SchemaRegistry struct {
	Version     string        `json:"version"`
	LastUpdated string        `json:"lastUpdated"`
	Schemas     []SchemaEntry `json:"schemas"`
}

type SchemaEntry struct {
	ID          string                 `json:"id"`
	Description string                 `json:"description"`
	Schema      map[string]interface{} `json:"schema"`
}

// Well-known schema IDs.
const (
	PlanResponse  = "plan.response"
	PlanQuestions = "plan.questions"
	PolicySlots   = "policy.slots"
	AnswerFields  = "answer.fields"
)
