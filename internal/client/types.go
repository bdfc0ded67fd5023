package client

import (
	"encoding/json"
	"strings"
)

// QueryResponse is returned by the natural-language and direct SQL
// endpoints. Result is kept raw: its shape depends on the query and is
// worked out later by the result package.
type QueryResponse struct {
	Success       bool            `json:"success"`
	Command       string          `json:"command,omitempty"`
	SQLQuery      string          `json:"sql_query,omitempty"`
	Result        json.RawMessage `json:"result,omitempty"`
	Error         string          `json:"error,omitempty"`
	ExecutionTime *float64        `json:"execution_time,omitempty"`
}

// TableInfo lists the tables together with the service's schema summary.
type TableInfo struct {
	TableNames []string `json:"table_names"`
	SchemaInfo string   `json:"schema_info"`
}

type TableNames struct {
	TableNames []string `json:"table_names"`
	Count      int      `json:"count"`
}

// TableSchema describes one table. Schema is free-form.
type TableSchema struct {
	TableName string          `json:"table_name"`
	Schema    json.RawMessage `json:"schema"`
}

// HealthStatus is the full or quick health document. TablesCount is only
// filled by the full check.
type HealthStatus struct {
	Status            string `json:"status"`
	DatabaseConnected bool   `json:"database_connected"`
	TablesCount       *int   `json:"tables_count,omitempty"`
	Error             string `json:"error,omitempty"`
}

// Healthy reports whether the service said it was healthy.
func (h *HealthStatus) Healthy() bool {
	return h != nil && h.Status == "healthy"
}

type ServiceStatus struct {
	Status   string          `json:"status"`
	Error    string          `json:"error,omitempty"`
	Services json.RawMessage `json:"services,omitempty"`
}

type ExampleCategory struct {
	Category string   `json:"category"`
	Queries  []string `json:"queries"`
}

// Examples is the catalogue of sample questions served by the service.
type Examples struct {
	Examples []ExampleCategory `json:"examples"`
	Tips     []string          `json:"tips,omitempty"`
	Workflow []string          `json:"workflow,omitempty"`
	Note     string            `json:"note,omitempty"`
}

// Validation is the service's advisory syntax check of a SQL string.
type Validation struct {
	Valid       bool     `json:"valid"`
	Message     string   `json:"message,omitempty"`
	Error       string   `json:"error,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

type Variation struct {
	Variation     int             `json:"variation"`
	SQLQuery      json.RawMessage `json:"sql_query"`
	PromptHint    string          `json:"prompt_hint,omitempty"`
	ExecutionTime *float64        `json:"execution_time,omitempty"`
}

// SQL returns the variation's query text. Non-string payloads are returned
// as their JSON text.
func (v Variation) SQL() string {
	var s string
	if err := json.Unmarshal(v.SQLQuery, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(v.SQLQuery))
}

type Variations struct {
	OriginalQuery   string      `json:"original_query"`
	Variations      []Variation `json:"variations"`
	TotalVariations int         `json:"total_variations"`
	Note            string      `json:"note,omitempty"`
}

type queryRequest struct {
	Command    string `json:"command"`
	IncludeSQL bool   `json:"include_sql"`
}

type sqlRequest struct {
	SQLQuery string `json:"sql_query"`
}
