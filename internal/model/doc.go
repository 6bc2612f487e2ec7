// Package model defines the core data structures used throughout modscan.
//
// This package contains the following main types:
//   - Mapping: An order-preserving mapping decoded from YAML
//   - ModuleUsage: One recognized module invocation with its parameters
//   - FileResult: All usages extracted from a single playbook file
//   - ScanReport: The main scan result structure with derived summary views
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (playbook, scanner, report, history) need to
// use these types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for report output and
// database storage. Mapping carries its own JSON marshaling so that parameter
// order from the source file survives serialization.
package model
