// Package playbook recognizes module invocations inside playbook documents.
//
// This package contains the ambiguity-resolution core of modscan:
//   - Extractor: Walks YAML node trees and finds task mappings whose single
//     non-reserved key names the invoked module
//   - Reserved keywords: The closed set of task and play directives that can
//     never be module names
//   - RoleFromPath: Path-structural role attribution
//
// Design decision: A mapping is recognized as a module invocation only when
// exactly one key survives keyword filtering because:
//  1. Task mappings mix the action key with directives (name, when, loop)
//  2. A closed keyword set plus a unique-survivor rule needs no reflection
//     over playbook dialects
//  3. Ambiguous mappings are silently skipped instead of producing noise
package playbook
