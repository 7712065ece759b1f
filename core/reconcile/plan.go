package reconcile

import (
	"fmt"
	"strings"
)

// BuildPlan derives the create, update and delete actions for one pass.
// It does NOT execute actions; use ApplyPlan for that.
//
// Source events are walked in fetch order: unseen ones are created, changed ones
// updated. Orphaned mirror events are then walked in index order and deleted only
// when their start is strictly after now. Past orphans are never touched.
func BuildPlan(sources []SourceEvent, index *Index, opts Options) (*Plan, error) {
	if index == nil {
		index = BuildIndex(nil)
	}

	plan := &Plan{}
	summary := &plan.Summary
	summary.SourceEvents = len(sources)
	summary.MirrorEvents = index.Total
	summary.Indexed = index.Len()
	summary.DuplicateRefs = len(index.Duplicates)

	if opts.FailOnDuplicateRefs && len(index.Duplicates) > 0 {
		return plan, fmt.Errorf("%w: %d source references carried by more than one mirror event: %s",
			ErrConsistency, len(index.Duplicates), strings.Join(index.Duplicates, ", "))
	}

	sourceIDs := make(map[string]struct{}, len(sources))
	for i := range sources {
		src := &sources[i]

		// A repeated id would target the same mirror event twice.
		if _, seen := sourceIDs[src.ID]; seen {
			summary.DuplicateSourceIDs++
			continue
		}
		sourceIDs[src.ID] = struct{}{}

		mirror, ok := index.Lookup(src.ID)
		if !ok {
			plan.Actions = append(plan.Actions, Action{
				Type:      ActionCreate,
				SourceRef: src.ID,
				Title:     src.Title,
				Start:     src.Start,
				Reason:    "not in mirror",
				Source:    src,
			})
			summary.Creates++
			continue
		}

		changes := DetectChanges(mirror, *src, opts)
		if len(changes) == 0 {
			summary.Unchanged++
			continue
		}

		plan.Actions = append(plan.Actions, Action{
			Type:      ActionUpdate,
			MirrorID:  mirror.ID,
			SourceRef: src.ID,
			Title:     src.Title,
			Start:     src.Start,
			Changes:   changes,
			Reason:    fmt.Sprintf("changed: %s", joinFields(changes)),
			Source:    src,
		})
		summary.Updates++
	}

	now := opts.now()
	for _, ref := range index.Refs() {
		if _, present := sourceIDs[ref]; present {
			continue
		}

		mirror, _ := index.Lookup(ref)
		start, _, ok := ToInstant(mirror.Start)
		if !ok {
			summary.Unparseable++
			continue
		}
		if !start.After(now) {
			summary.ProtectedPast++
			continue
		}

		plan.Actions = append(plan.Actions, Action{
			Type:      ActionDelete,
			MirrorID:  mirror.ID,
			SourceRef: ref,
			Title:     mirror.Title,
			Start:     start,
			Reason:    "source event no longer exists",
		})
		summary.Deletes++
	}

	return plan, nil
}

// joinFields renders changed fields for logs, e.g. "start, summary".
func joinFields(fields []Field) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = string(f)
	}
	return strings.Join(parts, ", ")
}
