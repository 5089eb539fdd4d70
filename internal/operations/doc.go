// Package operations runs the fetch pipeline: ingest rows from a source,
// build the windowed summary and persist it.
//
// A Pipeline executes its Steps in order against one OperationState. The
// first failing step stops the run, so a failed ingest never reaches the
// store. Each run and step gets a span, and the run outcome is recorded in
// the pipeline metrics.
package operations
