package reconcile

import "sort"

// ActionType classifies one change a sync made.
type ActionType string

// Action types.
const (
	ActionCreate ActionType = "create"
	ActionUpdate ActionType = "update"
	ActionDelete ActionType = "delete"
)

// Action is a single applied change.
type Action struct {
	Kind string
	ID   string
	Type ActionType
}

// Report is the outcome of one sync. Rows removed by a cascading delete are
// not listed individually; only the deleted ancestor is.
type Report struct {
	RunID       string
	OrganizerID string
	DryRun      bool
	Actions     []Action
	// Unchanged counts entities that were present and already up to date.
	Unchanged int
}

// HasChanges reports whether the sync created, updated or deleted anything.
func (r *Report) HasChanges() bool {
	return len(r.Actions) > 0
}

// Count returns the number of actions of type t.
func (r *Report) Count(t ActionType) int {
	n := 0
	for _, a := range r.Actions {
		if a.Type == t {
			n++
		}
	}
	return n
}

// KindCount is the number of actions of one type on one entity kind.
type KindCount struct {
	Kind   string
	Type   ActionType
	Number int
}

// ByKind groups actions by entity kind and type, sorted by kind then type.
func (r *Report) ByKind() []KindCount {
	type key struct {
		kind string
		typ  ActionType
	}
	counts := make(map[key]int)
	for _, a := range r.Actions {
		counts[key{a.Kind, a.Type}]++
	}
	out := make([]KindCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, KindCount{Kind: k.kind, Type: k.typ, Number: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return out[i].Type < out[j].Type
	})
	return out
}

func (r *Report) add(kind, id string, t ActionType) {
	r.Actions = append(r.Actions, Action{Kind: kind, ID: id, Type: t})
}
