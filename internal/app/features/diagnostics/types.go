// internal/app/features/diagnostics/types.go
package diagnostics

import (
	"time"

	"github.com/dalemusser/aboutadmin/internal/app/system/viewdata"
)

// listItem is one diagnostic event row.
type listItem struct {
	Timestamp  time.Time
	Operation  string
	Success    bool
	Message    string
	RecordID   string
	RequestID  string
	StatusCode int
}

type option struct {
	Value string
	Label string
}

type listData struct {
	viewdata.BaseVM

	Persisted bool
	Mode      string

	Items []listItem

	Operation  string
	Outcome    string
	Operations []option
	Outcomes   []option

	FailuresLastDay int64
}

func allOperations() []option {
	return []option{
		{Value: "", Label: "All operations"},
		{Value: "load", Label: "Load"},
		{Value: "submit", Label: "Submit"},
		{Value: "preview", Label: "Preview"},
	}
}

func allOutcomes() []option {
	return []option{
		{Value: "", Label: "Any outcome"},
		{Value: "ok", Label: "Succeeded"},
		{Value: "failed", Label: "Failed"},
	}
}
