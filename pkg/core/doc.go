// Package core holds the job bookkeeping shared by every display mode:
// counters, lifecycle status, retry accounting, dependencies and the
// record persisted between runs.
//
// Values in this package carry no locks. A BaseConfig belongs to exactly
// one goroutine at a time, which in practice is the coordinator.
package core
