// Package coordinator owns every task's display state. One goroutine
// reads the fan-in of all task channels plus a control channel and is the
// only code that ever touches a task's mode or bookkeeping. Everything
// else, the renderer included, sees immutable snapshots.
package coordinator
