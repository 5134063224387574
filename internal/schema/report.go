package schema

// Status: исход обработки одной версии анкеты.
type Status string

const (
	StatusLoaded           Status = "loaded"
	StatusTableMissing     Status = "table_missing"
	StatusParseError       Status = "parse_error"
	StatusUnknownValueType Status = "unknown_value_type"
	StatusInvalidMetadata  Status = "invalid_metadata"
	StatusStoreError       Status = "store_error"
)

// Outcome: одна строка отчёта bootstrap.
type Outcome struct {
	Workspace string `json:"workspace"`
	Key       string `json:"questionnaire"`
	Entity    string `json:"entity,omitempty"`
	Schema    string `json:"schema,omitempty"`
	Table     string `json:"table,omitempty"`
	Status    Status `json:"status"`
	Error     string `json:"error,omitempty"`
	Fields    int    `json:"fields,omitempty"`
	Rosters   int    `json:"rosters,omitempty"`
}

func (o Outcome) fail(s Status, err error) Outcome {
	o.Status = s
	o.Error = err.Error()
	return o
}

type WorkspaceOutcome struct {
	Workspace      string `json:"workspace"`
	Questionnaires int    `json:"questionnaires"`
	Error          string `json:"error,omitempty"`
}

// Report: итог bootstrap по пространствам и сущностям.
type Report struct {
	Workspaces []WorkspaceOutcome `json:"workspaces"`
	Entities   []Outcome          `json:"entities"`
}

// Count: число сущностей с данным исходом.
func (r *Report) Count(s Status) int {
	n := 0
	for _, o := range r.Entities {
		if o.Status == s {
			n++
		}
	}
	return n
}

// Summary: счётчики по всем исходам.
func (r *Report) Summary() map[Status]int {
	out := make(map[Status]int)
	for _, o := range r.Entities {
		out[o.Status]++
	}
	return out
}
