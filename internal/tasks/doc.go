// Package tasks implements the task lifecycle and media-set completion engine.
//
// # Components
//
// The package separates pure decision logic from orchestration:
//
//  1. Authorization policy (policy.go)
//     - Table-driven role checks for every workflow edge
//     - [CanTransition], [CanDelete], [CanDeleteMedia], [AllowedTransitions]
//
//  2. Media-set tracker (tracker.go)
//     - Pure completeness computation, no side effects
//     - [IsSetComplete], [RecomputeCompletedSets]
//
//  3. Lifecycle engine (lifecycle.go)
//     - The finite-state machine over task status
//     - [Transition] handles archive bookkeeping and doneBy attribution
//     - [Restore] returns an archived task to its pre-archive status
//
//  4. Media registry (registry.go)
//     - Validated media mutation: [AddPhoto], [AddVideo], [DeleteMedia]
//     - Protects the originating photo, rejects duplicates, triggers recomputation
//
// # Façade
//
// [TaskService] (service.go) is the only entry point external callers use.
// Every public operation loads the aggregate, mutates a clone, and persists
// it as a single versioned write; version conflicts are retried a bounded
// number of times with backoff. Events are published to a
// [services.Notifier] after a successful persist.
//
// The pure components never retry and never touch storage: they return a
// typed failure immediately and leave all I/O to the façade.
package tasks
