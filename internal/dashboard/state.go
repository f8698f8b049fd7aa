package dashboard

import "expensetracker/internal/core"

// View is the screen the dashboard shows.
type View string

const (
	ViewCreate  View = "create"
	ViewSummary View = "summary"
	ViewDetail  View = "detail"
	ViewUpdate  View = "update"
	ViewDelete  View = "delete"
)

// Views lists every view in menu order.
var Views = []View{ViewCreate, ViewSummary, ViewDetail, ViewUpdate, ViewDelete}

func (v View) Valid() bool {
	for _, known := range Views {
		if v == known {
			return true
		}
	}
	return false
}

// State is the whole dashboard state. It is passed around explicitly.
type State struct {
	View     View
	TargetID string
	Fetched  *core.Expense
}

// InitialState opens on the summary.
func InitialState() State {
	return State{View: ViewSummary}
}

// ActionKind enumerates state transitions.
type ActionKind int

const (
	// Navigate switches View and forgets the selected record.
	Navigate ActionKind = iota
	// Target sets the record id typed into the update or delete form.
	Target
	// Loaded stores a fetched record for the update form.
	Loaded
	// Done clears the form after a successful write.
	Done
)

type Action struct {
	Kind    ActionKind
	View    View
	ID      string
	Expense *core.Expense
}

// Select applies action to s and returns the new state. Unknown views and
// records that do not match the target are ignored.
func Select(s State, a Action) State {
	switch a.Kind {
	case Navigate:
		if !a.View.Valid() || a.View == s.View {
			return s
		}
		return State{View: a.View}
	case Target:
		if a.ID == s.TargetID {
			return s
		}
		s.TargetID = a.ID
		s.Fetched = nil
	case Loaded:
		if a.Expense == nil || a.Expense.ID != s.TargetID {
			return s
		}
		e := *a.Expense
		s.Fetched = &e
	case Done:
		s.TargetID = ""
		s.Fetched = nil
	}
	return s
}
