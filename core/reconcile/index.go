package reconcile

// ReadSourceRef returns the source identifier carried by a mirror event.
// The metadata slot wins; the description is read as a fallback for events
// created before metadata support existed.
func ReadSourceRef(ev MirrorEvent) (string, bool) {
	if ev.SourceRef != "" {
		return ev.SourceRef, true
	}
	if ev.Description != "" {
		return ev.Description, true
	}
	return "", false
}

// Index maps source references to the mirror events that carry them.
type Index struct {
	byRef map[string]MirrorEvent
	// order keeps references in order of first appearance.
	order []string
	// Duplicates lists references seen more than once, in order of first repeat.
	Duplicates []string
	// Total is the number of mirror events inspected, indexed or not.
	Total int
}

// BuildIndex indexes mirror events by source reference.
// Events without a reference are left out. When two events share a reference
// the later one wins and the reference is recorded in Duplicates.
func BuildIndex(events []MirrorEvent) *Index {
	idx := &Index{
		byRef: make(map[string]MirrorEvent, len(events)),
		order: make([]string, 0, len(events)),
		Total: len(events),
	}

	seenDup := make(map[string]struct{})
	for _, ev := range events {
		ref, ok := ReadSourceRef(ev)
		if !ok {
			continue
		}
		if _, exists := idx.byRef[ref]; exists {
			if _, reported := seenDup[ref]; !reported {
				idx.Duplicates = append(idx.Duplicates, ref)
				seenDup[ref] = struct{}{}
			}
		} else {
			idx.order = append(idx.order, ref)
		}
		idx.byRef[ref] = ev
	}

	return idx
}

// Lookup returns the mirror event indexed under ref.
func (i *Index) Lookup(ref string) (MirrorEvent, bool) {
	ev, ok := i.byRef[ref]
	return ev, ok
}

// Len returns the number of indexed references.
func (i *Index) Len() int {
	return len(i.order)
}

// Refs returns the indexed references in iteration order.
func (i *Index) Refs() []string {
	out := make([]string, len(i.order))
	copy(out, i.order)
	return out
}
