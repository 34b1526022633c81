// Package orchestrator wires the loader → adapter → engine pipeline: it
// fetches a schema document, picks the adapter that understands it, binds a
// value of the requested type and returns a MessageWidget with the requested
// view applied.
package orchestrator
