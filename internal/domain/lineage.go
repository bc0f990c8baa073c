package domain

import (
	"fmt"
	"sort"
)

// Lineage is an arena of tasks addressed by identifier. Edit edges are
// stored as ids only, so a malformed (cyclic) graph cannot produce an
// unbounded structure in memory; walks refuse cycles instead.
type Lineage struct {
	tasks    map[string]*VideoTask
	versions map[string][]string
}

// NewLineage indexes the given tasks. Tasks are copied; the arena does
// not alias the caller's slice.
func NewLineage(tasks []VideoTask) *Lineage {
	l := &Lineage{
		tasks:    make(map[string]*VideoTask, len(tasks)),
		versions: make(map[string][]string),
	}
	for i := range tasks {
		t := tasks[i]
		t.Project = nil
		t.EditedVersions = nil
		t.EditedFrom = nil
		l.tasks[t.ID] = &t
	}
	for id, t := range l.tasks {
		if t.OriginalTaskID == "" {
			continue
		}
		if _, ok := l.tasks[t.OriginalTaskID]; !ok {
			continue
		}
		l.versions[t.OriginalTaskID] = append(l.versions[t.OriginalTaskID], id)
	}
	for _, ids := range l.versions {
		sort.Slice(ids, func(i, j int) bool {
			a, b := l.tasks[ids[i]], l.tasks[ids[j]]
			if a.CreatedAt.Equal(b.CreatedAt) {
				return a.ID < b.ID
			}
			return a.CreatedAt.Before(b.CreatedAt)
		})
	}
	return l
}

// Get returns a copy of the task with the given id.
func (l *Lineage) Get(id string) (VideoTask, bool) {
	t, ok := l.tasks[id]
	if !ok {
		return VideoTask{}, false
	}
	return *t, true
}

// Versions returns copies of the tasks directly derived from id, ordered
// by creation time.
func (l *Lineage) Versions(id string) []VideoTask {
	ids := l.versions[id]
	if len(ids) == 0 {
		return nil
	}
	out := make([]VideoTask, 0, len(ids))
	for _, vid := range ids {
		out = append(out, *l.tasks[vid])
	}
	return out
}

// Chain walks originalTaskId edges from id back to the root task. The
// returned slice starts at id and ends at the root. A cycle yields
// ErrLineageCycle.
func (l *Lineage) Chain(id string) ([]VideoTask, error) {
	cur, ok := l.tasks[id]
	if !ok {
		return nil, fmt.Errorf("%w: task %s", ErrNotFound, id)
	}
	seen := map[string]struct{}{}
	var out []VideoTask
	for {
		if _, dup := seen[cur.ID]; dup {
			return nil, fmt.Errorf("%w: via task %s", ErrLineageCycle, cur.ID)
		}
		seen[cur.ID] = struct{}{}
		out = append(out, *cur)
		if cur.OriginalTaskID == "" {
			return out, nil
		}
		next, ok := l.tasks[cur.OriginalTaskID]
		if !ok {
			// Origin lives outside the arena; the chain ends here.
			return out, nil
		}
		cur = next
	}
}

// Resolve returns a copy of the task with its denormalized lineage views
// attached: editedFrom points one step back, editedVersions one step
// forward. Nested copies carry no further references, keeping the result
// finite regardless of graph shape.
func (l *Lineage) Resolve(id string) (VideoTask, error) {
	t, ok := l.Get(id)
	if !ok {
		return VideoTask{}, fmt.Errorf("%w: task %s", ErrNotFound, id)
	}
	if _, err := l.Chain(id); err != nil {
		return VideoTask{}, err
	}
	if t.OriginalTaskID != "" {
		if from, ok := l.Get(t.OriginalTaskID); ok {
			t.EditedFrom = &from
		}
	}
	t.EditedVersions = l.Versions(id)
	return t, nil
}

// Roots lists the ids of tasks that are not derived from another task in
// the arena, ordered by creation time.
func (l *Lineage) Roots() []string {
	var roots []string
	for id, t := range l.tasks {
		if t.OriginalTaskID == "" {
			roots = append(roots, id)
		} else if _, ok := l.tasks[t.OriginalTaskID]; !ok {
			roots = append(roots, id)
		}
	}
	sort.Slice(roots, func(i, j int) bool {
		a, b := l.tasks[roots[i]], l.tasks[roots[j]]
		if a.CreatedAt.Equal(b.CreatedAt) {
			return a.ID < b.ID
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
	return roots
}
