package operation

import (
	"github.com/pterm/pterm"

	zerrors "zentaoctl/cli/internal/errors"
	"zentaoctl/cli/internal/portal"
)

// RecordHeaders are the column titles of a rendered record table.
var RecordHeaders = []string{"BUG ID", "Bug标题", "严重程度", "创建人", "指派给", "解决方案"}

// Renderer renders operation events to the console.
type Renderer struct {
	// Verbose shows every progress line instead of errors only.
	Verbose bool
}

// NewRenderer creates a renderer instance.
func NewRenderer(verbose bool) *Renderer { return &Renderer{Verbose: verbose} }

// Render processes a single event.
func (r *Renderer) Render(ev Event) {
	switch ev.Type {
	case EventLog:
		if ev.IsError {
			pterm.Warning.Println(ev.Message)
		} else if r.Verbose {
			pterm.Info.Println(ev.Message)
		}
	case EventRecords:
		_ = pterm.DefaultTable.WithHasHeader().WithData(RecordTable(ev.Records)).Render()
	case EventResult:
		// The finished event carries the same outcome.
	case EventFinished:
		switch {
		case ev.Success:
			pterm.Success.Println(ev.Message)
		case ev.Kind == zerrors.EmptyResult:
			pterm.Warning.Println(ev.Message)
		default:
			pterm.Error.Println(ev.Message)
		}
	}
}

// RecordTable converts records into pterm table data with a header row.
func RecordTable(records []portal.Record) pterm.TableData {
	data := pterm.TableData{RecordHeaders}
	for _, rec := range records {
		data = append(data, []string{rec.ID, rec.Title, rec.Status, rec.OpenedBy, rec.AssignedTo, rec.Solution})
	}
	return data
}

// Drain feeds every event of h to handle and returns the operation result
// along with the records of a query, if any.
func Drain(h *Handle, handle func(Event)) (Result, []portal.Record) {
	var records []portal.Record
	for ev := range h.Events() {
		if ev.Type == EventRecords {
			records = ev.Records
		}
		if handle != nil {
			handle(ev)
		}
	}
	return h.Wait(), records
}
