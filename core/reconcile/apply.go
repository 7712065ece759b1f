package reconcile

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// ApplyPlan executes the actions of a plan against the mirror, in plan order.
//
// In dry-run no mutating call is issued: creates and updates are counted as in
// live mode and deletes only as WouldDelete.
//
// In live mode a failed create or update aborts the remaining actions and is
// returned as an *ActionError. A failed delete is logged, counted in DeleteFailed
// and skipped.
func ApplyPlan(ctx context.Context, mirror Mirror, plan *Plan, opts Options, logger *zap.Logger) (*Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	result := &Result{DryRun: opts.DryRun}
	if plan == nil {
		return result, nil
	}

	for _, action := range plan.Actions {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		l := logger.With(
			zap.String("action", string(action.Type)),
			zap.String("title", action.Title),
			zap.String("source_ref", action.SourceRef),
		)

		switch action.Type {
		case ActionCreate:
			if !opts.DryRun {
				id, err := mirror.CreateEvent(ctx, BuildPayload(*action.Source, opts))
				if err != nil {
					return result, &ActionError{Type: action.Type, SourceRef: action.SourceRef, Err: err}
				}
				l = l.With(zap.String("mirror_id", id))
			}
			result.Created++
			l.Info("Created event", zap.Bool("dry_run", opts.DryRun))

		case ActionUpdate:
			if !opts.DryRun {
				if err := mirror.UpdateEvent(ctx, action.MirrorID, BuildPayload(*action.Source, opts)); err != nil {
					return result, &ActionError{Type: action.Type, MirrorID: action.MirrorID, SourceRef: action.SourceRef, Err: err}
				}
			}
			result.Updated++
			l.Info("Updated event",
				zap.String("mirror_id", action.MirrorID),
				zap.String("changes", joinFields(action.Changes)),
				zap.Bool("dry_run", opts.DryRun),
			)

		case ActionDelete:
			l = l.With(zap.String("mirror_id", action.MirrorID), zap.Time("start", action.Start))
			if opts.DryRun {
				result.WouldDelete++
				l.Info("Would delete event")
				continue
			}
			if err := mirror.DeleteEvent(ctx, action.MirrorID); err != nil {
				actionErr := &ActionError{Type: action.Type, MirrorID: action.MirrorID, SourceRef: action.SourceRef, Err: err}
				result.DeleteFailed++
				result.Failures = append(result.Failures, actionErr.Error())
				l.Warn("Failed to delete event, continuing", zap.Error(err))
				continue
			}
			result.Deleted++
			l.Info("Deleted event")

		default:
			return result, fmt.Errorf("unknown action type %q", action.Type)
		}
	}

	return result, nil
}
