// Package loader provides the plugin-like feature loading system.
//
// Each feature implements the Feature interface, which defines its name, whether it is
// enabled and its route registration. Features that also implement RunHook are notified
// before and after every reconciliation pass (history, archive, health pings, metrics,
// notifications).
//
// # Manager
//
// The Manager holds the registry of features. It handles:
//   - Registration of features via Register()
//   - Loading the routes of enabled features via LoadAll()
//   - Collecting run hooks via Hooks()
package loader
