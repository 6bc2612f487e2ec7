// Package document loads playbook files as YAML node trees.
//
// This package contains the YAML mechanics shared by the rest of modscan:
//   - Load/Parse: Multi-document decoding into yaml.Node roots
//   - Entries: Order-preserving mapping iteration with alias and merge-key
//     handling
//   - Value: Conversion of node trees into the report value model
//
// Design decision: We work on yaml.Node trees rather than decoding into
// map[string]any because:
//  1. Go maps randomize iteration order; reports must follow document order
//  2. Unknown tags such as !vault would fail a typed decode; as nodes they
//     degrade gracefully to their raw scalar text
//  3. Anchors, aliases, and merge keys can be resolved explicitly
package document
