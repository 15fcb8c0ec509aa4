package annotation

import "fmt"

// Reason describes why an Annotation was released.
type Reason string

const (
	ReasonReplace Reason = "replace"
	ReasonDelete  Reason = "delete"
	ReasonDestroy Reason = "destroy"
)

// Event describes a change to a Group's bindings.
type Event struct {
	GroupID string
	Node    string
	Reason  Reason // empty for OnSet
}

// Hooks defines optional callbacks for Group observability.
// They run synchronously and must not call back into the Group.
type Hooks struct {
	OnSet     func(Event)
	OnRelease func(Event)
}

// nodeLabel renders a node key for logs and events.
func nodeLabel(node any) string {
	if s, ok := node.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%v", node)
}
