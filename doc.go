// Package reactive implements the session and widget state reconciliation
// engine behind a rerun-per-interaction web UI runtime: scripts declare
// widgets on every run, and the engine gives each widget a stable
// content-derived identity, stores old-vs-new values across the rerun
// boundary, dispatches callbacks exactly once per changed key, and resets
// one-shot trigger values after the rerun they caused.
//
// Responsibilities:
//   - Envelope keeps "never set" distinct from "set to nil" in both state
//     maps.
//   - Metadata + the per-session registry describe each widget: codec
//     pair, value category, callbacks, presenter, fragment association.
//   - Session owns the dual-state store (committed vs incoming) and the
//     user-key alias table; Rerun tracks declaration order and stages
//     programmatic writes so cancellation leaves no trace.
//   - Dispatch diffs incoming against committed state per category (whole
//     value, per sub-key, or batched {event, value} records), fires each
//     callback at most once per rerun, then the trigger reset protocol
//     returns one-shot values to neutral before commit.
//   - View is the filtered user-facing read surface: internal bookkeeping
//     ids never leak, and presenters transform values at read time with
//     full fault isolation.
//
// Data flow:
//
//	client batch -> Session.ApplyClientUpdate -> incoming state
//	Rerun.RegisterWidget -> incoming -> committed -> default lookup
//	Rerun.Finish -> dispatch -> trigger reset -> commit -> prune
//	Session.State() -> View (aliases + committed state, presented)
//
// Subpackages supply the surrounding plumbing: pkg/query is the pure URL
// codec, pkg/sessions the TTL/LRU session manager, pkg/snapshot the
// persistence bridge, pkg/activity the lifecycle event fan-out.
package reactive
