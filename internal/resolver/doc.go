// Package resolver normalizes module names through the documentation oracle.
//
// This package contains:
//   - Oracle: The interface to an external module-documentation source
//   - AnsibleDocClient: The production oracle shelling out to ansible-doc
//   - Resolver: A memoizing, concurrency-safe layer that degrades
//     gracefully when the oracle is missing or broken
//
// Design decision: The resolver never fails a scan. When ansible-doc is not
// installed or stops working, every candidate degrades to "unresolved" and
// the scan carries on, because:
//  1. Module usage listings are still useful without canonical names
//  2. CI containers frequently lack the ansible toolchain
//  3. A single warning beats aborting a long directory walk
package resolver
