package domain

// Status names with partitioning semantics. All other statuses are
// catalog-defined and fall into the current view.
const (
	StatusBacklog   = "Backlog"
	StatusCompleted = "Completed"
)

// View identifies one of the three disjoint status-based task partitions.
type View int

const (
	ViewCurrent View = iota
	ViewBacklog
	ViewCompleted
)

// AllViews lists the partitions in tab order.
var AllViews = []View{ViewCurrent, ViewBacklog, ViewCompleted}

// String returns the view's display name.
func (v View) String() string {
	switch v {
	case ViewBacklog:
		return "backlog"
	case ViewCompleted:
		return "completed"
	default:
		return "current"
	}
}

// Title returns the view's tab label.
func (v View) Title() string {
	switch v {
	case ViewBacklog:
		return "Backlog"
	case ViewCompleted:
		return "Completed"
	default:
		return "Current Tasks"
	}
}

// UsesPriorityHeaders reports whether the view groups top-level tasks under
// priority headers. Only the current view does; backlog and completed are
// flat hierarchies.
func (v View) UsesPriorityHeaders() bool {
	return v == ViewCurrent
}

// ViewForStatus maps a status name onto its partition. Every task belongs
// to exactly one view, determined solely by status.
func ViewForStatus(status string) View {
	switch status {
	case StatusCompleted:
		return ViewCompleted
	case StatusBacklog:
		return ViewBacklog
	default:
		return ViewCurrent
	}
}

// CrossesPartition reports whether changing a task from oldStatus to
// newStatus moves it between views.
func CrossesPartition(oldStatus, newStatus string) bool {
	return ViewForStatus(oldStatus) != ViewForStatus(newStatus)
}
