// Package probe spawns a chain of process generations that deliberately leave
// their descendants unreaped, producing zombie and orphan processes on demand.
//
// Go cannot fork(2) a multithreaded runtime without exec, so every fork is a
// re-exec of the current executable. The new process learns its generation
// index and the probe configuration from its environment and resumes through
// Resume. Callers must make sure the executable routes such processes to
// Resume before doing anything else; the forkprobe CLI does this with a hidden
// command and tests do it from TestMain.
//
// The probe relies on Unix process semantics. On Windows the package compiles
// but process-group signalling and subreaping are unavailable.
package probe
