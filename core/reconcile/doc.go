// Package reconcile implements one-way reconciliation of a source calendar into a mirror calendar.
//
// A pass fetches both calendars over [now, now+horizon], matches events by the source
// identifier stored on each mirror event, and derives a plan of create, update and
// delete actions which is then executed (or only logged in dry-run).
//
// # Architecture
//
// The engine is split into small pure steps, leaves first:
//
// 1. Normalizer: NormalizeTitle, NormalizeText and ToInstant turn heterogeneous titles and
//    date/time representations into a canonical form (UTC instant + all-day flag).
//
// 2. Identity Index: BuildIndex maps source references to mirror events. ReadSourceRef reads
//    the metadata slot first and the description as a legacy fallback.
//
// 3. Change Detector: DetectChanges reports the changed fields of a matched pair, in a
//    fixed order, with a 60 second tolerance on instants.
//
// 4. Action Planner: BuildPlan classifies source events as create, update or no-op and
//    orphaned mirror events as delete-eligible or protected because they already started.
//
// 5. Executor: ApplyPlan applies the plan. Creates and updates fail fast, deletes are
//    isolated per item.
//
// Collaborators are reached through the Source and Mirror interfaces. The engine holds no
// state across passes and performs no retries.
//
// # Usage Example
//
//	spec := &reconcile.Spec{
//	    Source:  exchangeClient,
//	    Mirror:  googleClient,
//	    Options: reconcile.Options{HorizonDays: 60, Timezone: "Europe/Paris"},
//	    Logger:  logger,
//	}
//
//	report, err := reconcile.Run(ctx, spec)
//	created, updated, deleted := report.Counts()
package reconcile
