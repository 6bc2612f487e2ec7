// Package scanner drives playbook scans from a target path to a finished
// report.
//
// A scan enumerates the playbook files beneath a target, parses each one,
// extracts module invocations, resolves module names through the
// documentation oracle, attributes each file to its enclosing role, and
// folds everything into a model.ScanReport for the renderers.
//
// Design decision: We run the per-file stages (parse, extract, resolve,
// attribute) inside the scanner rather than as injectable pipeline steps
// because:
// 1. The stages are fixed and cheap; there is nothing to reorder or skip
// 2. Per-file failures are data (recorded on the file result), not control
//    flow, so step-level error policies add nothing
// 3. It keeps the concurrency boundary in one place: whole files are the
//    unit of parallel work, never individual stages
package scanner
