// Package history provides SQLite-based storage for scan reports.
//
// Every completed scan can be saved here, keyed by its target path, so
// later runs can diff the module footprint of a playbook tree against
// earlier states of the same tree.
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of flat
// JSON files because:
// 1. No external dependencies - the database is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. Indexed queries over targets and timestamps stay fast as history grows
// 4. WAL mode provides good concurrent read performance
package history
